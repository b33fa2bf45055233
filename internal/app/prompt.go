package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// projectIDMaxLength is the longest valid project id.
const projectIDMaxLength = 30

// Prompt is the modal project id input.
type Prompt struct {
	input textinput.Model
	cat   i18n.Catalog
	err   string
	open  bool
	warn  bool
}

// NewPrompt creates a closed prompt.
func NewPrompt() Prompt {
	ti := textinput.New()
	ti.CharLimit = projectIDMaxLength
	ti.Width = projectIDMaxLength + 2
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Primary)
	return Prompt{input: ti, cat: i18n.Messages(i18n.English)}
}

// Open shows the prompt prefilled with current.
func (p *Prompt) Open(cat i18n.Catalog, current string) tea.Cmd {
	p.cat = cat
	p.err = ""
	p.open = true
	p.warn = strings.TrimSpace(current) == ""
	p.input.Placeholder = cat.ProjectIDPlaceholder
	p.input.SetValue(current)
	p.input.CursorEnd()
	return p.input.Focus()
}

// Close hides the prompt.
func (p *Prompt) Close() {
	p.open = false
	p.err = ""
	p.input.Blur()
}

// IsOpen reports whether the prompt is shown.
func (p Prompt) IsOpen() bool {
	return p.open
}

// Value returns the trimmed input.
func (p Prompt) Value() string {
	return strings.TrimSpace(p.input.Value())
}

// Err returns the message shown under the input.
func (p Prompt) Err() string {
	return p.err
}

// Submit validates the input. It returns the project id and true when it
// can be saved; otherwise the prompt shows the validation message.
func (p *Prompt) Submit() (string, bool) {
	id := p.Value()
	if err := settings.ValidateProjectID(id); err != nil {
		p.SetError(err)
		return "", false
	}
	p.err = ""
	return id, true
}

// SetError shows err in the catalog language when it is a known
// validation error.
func (p *Prompt) SetError(err error) {
	switch {
	case err == nil:
		p.err = ""
	case errors.Is(err, settings.ErrProjectIDRequired):
		p.err = p.cat.ProjectIDRequired
	case errors.Is(err, settings.ErrProjectIDInvalid):
		p.err = p.cat.ProjectIDInvalid
	default:
		p.err = p.cat.ErrorPrefix + err.Error()
	}
}

// Update forwards input messages to the text field.
func (p *Prompt) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// View renders the modal.
func (p Prompt) View() string {
	var lines []string
	if p.warn {
		lines = append(lines, styles.WarningTextStyle.Render(p.cat.ProjectIDNotSetWarning), "")
	}
	lines = append(lines, styles.TitleStyle.Render(p.cat.ProjectIDPrompt), p.input.View())
	if p.err != "" {
		lines = append(lines, "", styles.ErrorTextStyle.Render(p.err))
	}
	lines = append(lines, "",
		styles.HelpStyle.Render("enter: "+p.cat.ProjectIDConfigure+"   esc: "+p.cat.ProjectIDLater))

	return styles.ModalContentStyle.Render(strings.Join(lines, "\n"))
}
