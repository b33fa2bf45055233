package billing

import (
	"fmt"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// Column names produced by the window queries.
const (
	colCurrency = "currency"
	colGross    = "gross_cost"
	colCredits  = "credits"
	colNet      = "net_cost"
)

// creditsExpr sums a row's credits; credits are recorded as negative amounts.
const creditsExpr = "IFNULL((SELECT SUM(c.amount) FROM UNNEST(credits) AS c), 0)"

// Table identifies a billing export table.
type Table struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// Validate rejects identifiers that could not be embedded in a query safely.
func (t Table) Validate() error {
	if !models.IsProjectID(t.ProjectID) {
		return fmt.Errorf("invalid project id %q", t.ProjectID)
	}
	if !models.IsDatasetID(t.DatasetID) {
		return fmt.Errorf("invalid dataset id %q", t.DatasetID)
	}
	if !models.IsTableID(t.TableID) {
		return fmt.Errorf("invalid table id %q", t.TableID)
	}
	return nil
}

// String returns the quoted, fully qualified table reference.
func (t Table) String() string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.DatasetID, t.TableID)
}

// currentMonthSQL sums gross cost and credits separately per currency.
func currentMonthSQL(t Table, w Window) string {
	return fmt.Sprintf(`SELECT
  %s,
  SUM(cost) AS %s,
  SUM(%s) AS %s
FROM %s
WHERE %s
GROUP BY %s`, colCurrency, colGross, creditsExpr, colCredits, t, w.Predicate(), colCurrency)
}

// netCostSQL sums cost after credits per currency.
func netCostSQL(t Table, w Window) string {
	return fmt.Sprintf(`SELECT
  %s,
  SUM(cost) + SUM(%s) AS %s
FROM %s
WHERE %s
GROUP BY %s`, colCurrency, creditsExpr, colNet, t, w.Predicate(), colCurrency)
}

// windowSQL returns the query for w.
func windowSQL(t Table, w Window) string {
	if w.Name == models.WindowCurrentMonth {
		return currentMonthSQL(t, w)
	}
	return netCostSQL(t, w)
}
