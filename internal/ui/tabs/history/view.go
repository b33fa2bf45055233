package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/ui/components"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

const (
	chartHeight    = 10
	maxLogRows     = 20
	maxErrorLength = 48
)

// View renders the history tab.
func (m *Model) View() string {
	sections := []string{
		styles.TitleStyle.Render("Session History"),
		m.renderChart(),
		m.renderSpendRate(),
		"",
		m.renderRefreshLog(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) renderChart() string {
	samples := m.state.Samples()

	values := lo.Map(samples, func(s models.CostSample, _ int) float64 {
		if m.series == SeriesGross {
			return s.AmountBeforeCredits
		}
		return s.Amount
	})

	caption := "current month, net"
	if m.series == SeriesGross {
		caption = "current month, before credits"
	}
	if len(samples) > 0 {
		last := samples[len(samples)-1]
		caption = fmt.Sprintf("%s (%s), %d samples", caption, last.Currency, len(samples))
	}

	width := max(m.width-20, 20)
	return components.RenderLineChart(values, width, chartHeight, caption,
		"No samples yet. Each successful refresh adds one.")
}

func (m *Model) renderSpendRate() string {
	rate, ok := m.state.SpendRate()
	if !ok {
		return ""
	}

	line := fmt.Sprintf("Session change: %+.2f %s over %s", rate.Change(), rate.Currency,
		rate.Span().Round(time.Minute))
	if perHour, ok := rate.PerHour(); ok {
		line += fmt.Sprintf(" (%+.2f %s/h)", perHour, rate.Currency)
	}

	style := styles.InfoTextStyle
	if rate.Change() < 0 {
		style = styles.SuccessTextStyle
	}
	return style.Render(line)
}

func (m *Model) renderRefreshLog() string {
	records := m.state.Refreshes()
	if len(records) == 0 {
		return styles.HelpStyle.Render("No refreshes yet.")
	}
	if len(records) > maxLogRows {
		records = records[:maxLogRows]
	}

	header := styles.TableHeaderStyle.Render(
		fmt.Sprintf("%-20s %-10s %-13s %9s  %s", "Started", "Trigger", "Outcome", "Duration", "Detail"))

	rows := []string{header}
	for _, r := range records {
		outcome := outcomeStyle(r.Outcome).Render(fmt.Sprintf("%-13s", r.Outcome))
		rows = append(rows, fmt.Sprintf("%-20s %-10s %s %9s  %s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Trigger,
			outcome,
			r.Duration.Round(time.Millisecond),
			truncate(r.Error, maxErrorLength),
		))
	}
	return strings.Join(rows, "\n")
}

func outcomeStyle(o models.RefreshOutcome) lipgloss.Style {
	switch o {
	case models.OutcomeSuccess:
		return styles.SuccessTextStyle
	case models.OutcomeFailed:
		return styles.ErrorTextStyle
	default:
		return styles.WarningTextStyle
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
