package dashboard

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/render"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/ui/components"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// sparklineWidth is the number of samples shown in the session trend.
const sparklineWidth = 40

// View renders the dashboard tab.
func (m *Model) View() string {
	snap, ok := m.state.Snapshot()
	if !ok {
		return styles.DocStyle.Render(styles.HelpStyle.Render(i18n.Messages(i18n.English).Starting))
	}

	sections := []string{m.renderTitle(snap), m.renderSummaryCard(snap)}

	if snap.Status.Metrics() != nil && snap.Budget > 0 {
		sections = append(sections, m.renderBudgetCard(snap))
	}
	if snap.Status.Err() != nil && snap.Metrics != nil {
		sections = append(sections, m.renderLastKnownCard(snap))
	}
	if trend := m.renderTrend(); trend != "" {
		sections = append(sections, trend)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) renderTitle(snap services.Snapshot) string {
	title := styles.TitleStyle.Render(snap.Catalog.Title)
	if snap.ProjectID == "" {
		return title
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.HelpStyle.Render(snap.Catalog.ProjectIDLabel+snap.ProjectID),
		"",
	)
}

// renderSummaryCard shows the summary line and the detail lines produced
// by the renderer.
func (m *Model) renderSummaryCard(snap services.Snapshot) string {
	level := snap.Output.Level
	rows := []string{styles.AlertStyle(level).Render(snap.Output.Summary), ""}
	rows = append(rows, snap.Output.Tooltip...)

	if !snap.NextRefreshTime().IsZero() {
		rows = append(rows, "", styles.HelpStyle.Render(
			"Next refresh: "+render.FormatTimestamp(snap.NextRefreshTime(), snap.Language, time.Local)))
	}

	return styles.CardStyle.
		BorderForeground(styles.AlertColor(level)).
		Width(styles.CardWidth(m.width)).
		Render(strings.Join(rows, "\n"))
}

func (m *Model) renderBudgetCard(snap services.Snapshot) string {
	metrics := snap.Status.Metrics()
	cat := snap.Catalog

	gauge := components.NewBudgetGauge(styles.CardWidth(m.width) - 16)
	spent := render.FormatCurrency(metrics.Amount, metrics.Currency, snap.Language)
	budget := render.FormatCurrency(snap.Budget, metrics.Currency, snap.Language)

	rows := []string{
		styles.CardTitleStyle.Render(cat.Budget),
		gauge.View(metrics.Amount, snap.Budget, snap.Output.Level),
		styles.HelpStyle.Render(spent + " / " + budget),
	}
	return styles.CardStyle.Width(styles.CardWidth(m.width)).Render(strings.Join(rows, "\n"))
}

// renderLastKnownCard shows the record kept from the previous successful
// fetch while the current status is an error.
func (m *Model) renderLastKnownCard(snap services.Snapshot) string {
	out := render.NewRenderer(snap.Catalog, time.Local).Render(render.Success(snap.Metrics), snap.Budget)

	// Drop the title and the trailing menu hint already shown above.
	lines := out.Tooltip
	if len(lines) > 2 {
		lines = lines[2 : len(lines)-2]
	}
	return styles.CardStyle.
		BorderForeground(styles.Subtle).
		Width(styles.CardWidth(m.width)).
		Render(styles.HelpStyle.Render(strings.Join(lines, "\n")))
}

// renderTrend shows the net current-month cost of this session's samples.
func (m *Model) renderTrend() string {
	samples := m.state.Samples()
	if len(samples) < 2 {
		return ""
	}
	amounts := lo.Map(samples, func(s models.CostSample, _ int) float64 { return s.Amount })
	return styles.HelpStyle.Render("Session trend ") +
		styles.InfoTextStyle.Render(components.RenderSparkline(amounts, sparklineWidth))
}
