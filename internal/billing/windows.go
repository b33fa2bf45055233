package billing

import (
	"fmt"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// invoiceMonthLayout is the format of the export's invoice.month column.
const invoiceMonthLayout = "200601"

// Window is a named date range over the billing export. Start is
// inclusive and End exclusive; both are UTC.
type Window struct {
	Name  models.WindowName
	Start time.Time
	End   time.Time
}

// FromMonth returns the first invoice month covered, as YYYYMM.
func (w Window) FromMonth() string {
	return w.Start.Format(invoiceMonthLayout)
}

// ToMonth returns the last invoice month covered, as YYYYMM.
func (w Window) ToMonth() string {
	return w.End.Add(-time.Nanosecond).Format(invoiceMonthLayout)
}

// Predicate renders the inclusive invoice month filter for w.
func (w Window) Predicate() string {
	return fmt.Sprintf("invoice.month BETWEEN '%s' AND '%s'", w.FromMonth(), w.ToMonth())
}

// Windows computes the four query windows for now, in the order of
// models.AllWindows. Month boundaries are taken in UTC.
func Windows(now time.Time) []Window {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(time.Nanosecond)

	return []Window{
		{Name: models.WindowCurrentMonth, Start: monthStart, End: end},
		{Name: models.WindowLastMonth, Start: monthStart.AddDate(0, -1, 0), End: monthStart},
		{Name: models.WindowLast3Months, Start: monthStart.AddDate(0, -2, 0), End: end},
		{Name: models.WindowYearToDate, Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: end},
	}
}
