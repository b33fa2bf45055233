package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// DefaultGaugeWidth is the bar width used when none is given.
const DefaultGaugeWidth = 30

// BudgetGauge renders month-to-date spend against the monthly budget.
type BudgetGauge struct {
	width int
}

// NewBudgetGauge creates a gauge with the given bar width.
func NewBudgetGauge(width int) BudgetGauge {
	if width <= 0 {
		width = DefaultGaugeWidth
	}
	return BudgetGauge{width: width}
}

// Ratio returns spent/budget, or 0 when no budget is set. Values above 1
// are kept so overspend can be reported.
func Ratio(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spent / budget
}

// View renders the bar colored by level followed by the percentage.
func (g BudgetGauge) View(spent, budget float64, level models.AlertLevel) string {
	ratio := Ratio(spent, budget)

	bar := progress.New(
		progress.WithSolidFill(string(styles.AlertColor(level))),
		progress.WithWidth(g.width),
		progress.WithoutPercentage(),
	)

	percent := lipgloss.NewStyle().
		Width(8).
		Align(lipgloss.Right).
		Foreground(styles.AlertColor(level)).
		Render(fmt.Sprintf("%.1f%%", ratio*100))

	return bar.ViewAs(min(max(ratio, 0), 1)) + percent
}

// Width returns the bar width.
func (g BudgetGauge) Width() int {
	return g.width
}
