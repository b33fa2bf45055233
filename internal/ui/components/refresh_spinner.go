package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// RefreshSpinner animates in the status bar while a billing refresh runs
// and names what started it.
type RefreshSpinner struct {
	spinner    spinner.Model
	labelStyle lipgloss.Style
	label      string
}

// NewRefreshSpinner creates an idle spinner.
func NewRefreshSpinner() RefreshSpinner {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return RefreshSpinner{
		spinner:    s,
		labelStyle: lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true),
	}
}

// Init starts the animation.
func (r RefreshSpinner) Init() tea.Cmd {
	return r.spinner.Tick
}

// Update advances the animation on tick messages.
func (r RefreshSpinner) Update(msg tea.Msg) (RefreshSpinner, tea.Cmd) {
	var cmd tea.Cmd
	r.spinner, cmd = r.spinner.Update(msg)
	return r, cmd
}

// Begin labels the refresh in flight.
func (r *RefreshSpinner) Begin(label string) {
	r.label = label
}

// Done clears the label once the refresh has finished.
func (r *RefreshSpinner) Done() {
	r.label = ""
}

// Label returns the label of the refresh in flight, if any.
func (r RefreshSpinner) Label() string {
	return r.label
}

// View renders the spinner in front of text, followed by the label.
func (r RefreshSpinner) View(text string) string {
	out := r.spinner.View() + " " + text
	if r.label != "" {
		out += "  " + r.labelStyle.Render(r.label)
	}
	return out
}
