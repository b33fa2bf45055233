package info

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
	"github.com/aculich/gcp-billing-watcher/internal/version"
)

const notSet = "(not set)"

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		styles.TitleStyle.Render("Info"),
		m.renderSettingsCard(),
		m.renderPathsCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) renderSettingsCard() string {
	st := m.state.Settings()
	snap, _ := m.state.Snapshot()

	budget := "none (fixed yearly thresholds)"
	if st.MonthlyBudget > 0 {
		budget = strconv.FormatFloat(st.MonthlyBudget, 'f', -1, 64)
	}
	language := st.Language
	if snap.Language != "" {
		language = fmt.Sprintf("%s (%s)", st.Language, snap.Language)
	}

	rows := []string{
		styles.CardTitleStyle.Render("Billing Settings"),
		row("Project ID", orNotSet(st.ProjectID)),
		row("Billing table", tablePath(st)),
		row("Credentials", orDefault(st.CredentialsPath, "application default credentials")),
		row("Refresh interval", st.RefreshInterval().String()),
		row("Monthly budget", budget),
		row("Language", language),
		row("Verify TLS", strconv.FormatBool(!st.SkipSSLVerification)),
	}
	if url := m.state.ConsoleURL(); url != "" {
		rows = append(rows, row("Console", url))
	}

	return card(m.width, rows)
}

func (m *Model) renderPathsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Files")}
	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return card(m.width, rows)
	}

	rows = append(rows,
		row("Settings file", m.config.SettingsPath),
		row("Log file", m.config.LogPath),
		row("Metrics endpoint", orDefault(m.config.MetricsAddr, "disabled")),
		row("Desktop alerts", strconv.FormatBool(m.config.Notifications)),
		"",
		styles.HelpStyle.Render("Edit the settings file to change dataset, table, budget or language."),
		styles.HelpStyle.Render("Press 'y' to copy its path."),
	)
	return card(m.width, rows)
}

func (m *Model) renderAboutCard() string {
	rows := []string{styles.CardTitleStyle.Render("About")}
	for _, f := range version.Fields() {
		rows = append(rows, row(f[0], f[1]))
	}
	return card(m.width, rows)
}

func card(width int, rows []string) string {
	return styles.CardStyle.Width(styles.CardWidth(width)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func tablePath(st settings.Settings) string {
	if st.ProjectID == "" {
		return st.DatasetID + "." + st.TableID
	}
	return st.ProjectID + "." + st.DatasetID + "." + st.TableID
}

func orNotSet(s string) string {
	return orDefault(s, notSet)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
