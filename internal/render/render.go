// Package render turns a refresh status into the status bar summary and
// the detail lines, with alert levels and locale-aware formatting.
package render

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// Rule separates tooltip sections.
const Rule = "─────────────────"

const summaryLabel = "GCP"

var levelIcons = map[models.AlertLevel]string{
	models.AlertNormal:       "✓",
	models.AlertWarning:      "⚠",
	models.AlertCritical:     "✖",
	models.AlertUnconfigured: "⚙",
	models.AlertError:        "✗",
}

// LoadingIcon is shown while a fetch is in flight.
const LoadingIcon = "⟳"

// Output is the rendered form of one status.
type Output struct {
	Summary string            `json:"summary"`
	Tooltip []string          `json:"tooltip"`
	Level   models.AlertLevel `json:"level"`
}

// Icon returns the status bar icon for level.
func Icon(level models.AlertLevel) string {
	return levelIcons[level]
}

// Renderer renders with one resolved catalog.
type Renderer struct {
	cat i18n.Catalog
	loc *time.Location
}

// NewRenderer creates a renderer. Timestamps are shown in loc.
func NewRenderer(cat i18n.Catalog, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{cat: cat, loc: loc}
}

// Render renders status in lang using the local time zone.
func Render(status Status, budget float64, lang i18n.Language) Output {
	return NewRenderer(i18n.Messages(lang), time.Local).Render(status, budget)
}

// Catalog returns the catalog the renderer uses.
func (r *Renderer) Catalog() i18n.Catalog {
	return r.cat
}

// Render produces the summary and detail lines for status.
func (r *Renderer) Render(status Status, budget float64) Output {
	level := AlertLevel(status, budget)
	icon := Icon(level)

	switch {
	case status.IsLoading():
		return Output{
			Summary: r.LoadingSummary(),
			Tooltip: []string{r.cat.Title},
			Level:   level,
		}
	case status.IsUnconfigured():
		return Output{
			Summary: r.summary(icon, r.cat.NotConfigured),
			Tooltip: []string{r.cat.NotConfiguredTooltip},
			Level:   level,
		}
	case !status.IsSuccess():
		return Output{
			Summary: r.summary(icon, r.cat.ErrorShort),
			Tooltip: []string{r.cat.ErrorPrefix + status.Err().Error()},
			Level:   level,
		}
	}

	m := status.Metrics()
	return Output{
		Summary: r.summary(icon, r.money(m.Amount, m.Currency)+" / "+r.money(m.YearlyAmount, m.Currency)),
		Tooltip: r.tooltip(m, budget),
		Level:   level,
	}
}

// LoadingSummary is the summary shown while a refresh runs.
func (r *Renderer) LoadingSummary() string {
	return r.summary(LoadingIcon, r.cat.Loading)
}

func (r *Renderer) summary(icon, text string) string {
	return fmt.Sprintf("%s %s: %s", icon, summaryLabel, text)
}

func (r *Renderer) money(amount float64, code string) string {
	return FormatCurrency(amount, code, r.cat.Language)
}

func (r *Renderer) tooltip(m *models.CostMetrics, budget float64) []string {
	captured := m.LastUpdated.UTC()
	monthStart := time.Date(captured.Year(), captured.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonth := monthStart.AddDate(0, -1, 0).Month()

	lines := []string{
		r.cat.Title,
		Rule,
		r.cat.CurrentCost,
		r.line(r.cat.BeforeCredits, r.money(m.AmountBeforeCredits, m.Currency)),
		r.line(r.cat.Credits, r.money(-m.CreditsAmount, m.Currency)),
		r.line(r.cat.Total, r.money(m.Amount, m.Currency)),
	}
	if budget > 0 {
		pct := strconv.FormatFloat(m.Amount/budget*100, 'f', 1, 64)
		lines = append(lines, r.line(r.cat.Budget,
			fmt.Sprintf("%s / %s (%s%%)", r.money(m.Amount, m.Currency), r.money(budget, m.Currency), pct)))
	}
	lines = append(lines,
		Rule,
		r.line(i18n.Format(r.cat.LastMonthFormat, strconv.Itoa(int(prevMonth))), r.money(m.LastMonthAmount, m.Currency)),
		r.line(r.cat.Last3Months, r.money(m.Last3MonthsAmount, m.Currency)),
		r.line(i18n.Format(r.cat.YearlyFormat, strconv.Itoa(captured.Year())), r.money(m.YearlyAmount, m.Currency)),
		Rule,
		r.line(r.cat.LastUpdated, FormatTimestamp(m.LastUpdated, r.cat.Language, r.loc)),
		Rule,
		r.cat.ClickMenu,
	)
	return lines
}

func (r *Renderer) line(label, value string) string {
	return label + ": " + value
}
