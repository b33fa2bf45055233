package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/render"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

type stubTab struct {
	updates int
	width   int
	height  int
}

func (s *stubTab) Init() tea.Cmd                 { return nil }
func (s *stubTab) Update(tea.Msg) (Tab, tea.Cmd) { s.updates++; return s, nil }
func (s *stubTab) View() string                  { return "stub" }
func (s *stubTab) SetSize(w, h int)              { s.width, s.height = w, h }
func (s *stubTab) ShortHelp() []key.Binding      { return nil }

func newTestModel() (*Model, []*stubTab) {
	m := NewModel(nil)
	stubs := []*stubTab{{}, {}, {}}
	m.SetTabs([]Tab{stubs[0], stubs[1], stubs[2]})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, stubs
}

func configuredSnapshot() SnapshotLoadedMsg {
	cat := i18n.Messages(i18n.English)
	m := models.NewCostMetrics("USD", 120, 20, models.WindowAmounts{Yearly: 50}, testTime)
	status := render.Success(m)
	st := settings.Defaults()
	st.ProjectID = "my-project-123"
	return SnapshotLoadedMsg{
		Snapshot: services.Snapshot{
			Output:     render.NewRenderer(cat, nil).Render(status, 0),
			Metrics:    m,
			ProjectID:  st.ProjectID,
			Language:   i18n.English,
			Configured: true,
			Loaded:     true,
			Status:     status,
			Catalog:    cat,
		},
		Settings:   st,
		ConsoleURL: "https://console.cloud.google.com/billing/reports?project=my-project-123",
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		id   TabID
		want string
	}{
		{TabDashboard, "Dashboard"},
		{TabHistory, "History"},
		{TabInfo, "Info"},
		{TabID(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestModel_WindowSizeSetsTabSizes(t *testing.T) {
	_, stubs := newTestModel()
	for i, s := range stubs {
		if s.width != 100 || s.height != 30-chromeHeight {
			t.Errorf("tab %d size = %dx%d", i, s.width, s.height)
		}
	}
}

func TestModel_TabNavigation(t *testing.T) {
	m, _ := newTestModel()

	tests := []struct {
		key  tea.KeyMsg
		want TabID
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")}, TabHistory},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")}, TabInfo},
		{tea.KeyMsg{Type: tea.KeyTab}, TabDashboard},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabInfo},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")}, TabDashboard},
	}
	for _, tt := range tests {
		m.Update(tt.key)
		if m.ActiveTab() != tt.want {
			t.Errorf("after %q ActiveTab = %v, want %v", tt.key.String(), m.ActiveTab(), tt.want)
		}
	}
}

func TestModel_StatusLine(t *testing.T) {
	m, _ := newTestModel()

	if got := m.StatusLine(); !strings.HasPrefix(got, render.LoadingIcon) {
		t.Errorf("StatusLine before snapshot = %q", got)
	}

	msg := configuredSnapshot()
	m.Update(msg)
	if got := m.StatusLine(); got != msg.Snapshot.Output.Summary {
		t.Errorf("StatusLine = %q, want %q", got, msg.Snapshot.Output.Summary)
	}
	if !strings.Contains(m.View(), "GCP: $100.00") {
		t.Error("status bar should show the current cost")
	}

	msg.Snapshot.Refreshing = true
	m.Update(msg)
	if got := m.StatusLine(); !strings.HasPrefix(got, render.LoadingIcon) {
		t.Errorf("StatusLine while refreshing = %q", got)
	}
}

func TestModel_RefreshSpinnerLabel(t *testing.T) {
	m, _ := newTestModel()
	m.Update(configuredSnapshot())
	cat := i18n.Messages(i18n.English)

	tests := []struct {
		trigger models.RefreshTrigger
		want    string
	}{
		{models.TriggerScheduled, cat.ScheduledRefresh},
		{models.TriggerManual, cat.RefreshRequested},
		{models.TriggerSettings, cat.ConfigChanged},
		{models.TriggerStartup, cat.Starting},
	}
	for _, tt := range tests {
		m.Update(ServiceEventMsg{Event: services.RefreshStartedEvent{RefreshID: "r", Trigger: tt.trigger}})
		if got := m.spinner.Label(); got != tt.want {
			t.Errorf("label for %s = %q, want %q", tt.trigger, got, tt.want)
		}
	}

	m.Update(ServiceEventMsg{Event: services.MetricsUpdatedEvent{RefreshID: "r"}})
	if got := m.spinner.Label(); got != "" {
		t.Errorf("label after completion = %q, want empty", got)
	}

	m.Update(ServiceEventMsg{Event: services.RefreshStartedEvent{Trigger: models.TriggerManual}})
	m.Update(ServiceEventMsg{Event: services.FetchFailedEvent{Error: errors.New("boom")}})
	if got := m.spinner.Label(); got != "" {
		t.Errorf("label after failure = %q, want empty", got)
	}
}

func TestModel_UnconfiguredOpensPromptOnce(t *testing.T) {
	m, _ := newTestModel()
	cat := i18n.Messages(i18n.English)

	msg := SnapshotLoadedMsg{Snapshot: services.Snapshot{
		Output:  render.NewRenderer(cat, nil).Render(render.Unconfigured(), 0),
		Status:  render.Unconfigured(),
		Catalog: cat,
	}}
	m.Update(msg)
	if !m.PromptOpen() {
		t.Fatal("prompt should open when unconfigured")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.PromptOpen() {
		t.Fatal("esc should close the prompt")
	}

	m.Update(msg)
	if m.PromptOpen() {
		t.Error("prompt should be offered only once")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if !m.PromptOpen() {
		t.Error("c should reopen the prompt")
	}
}

func TestModel_PromptCapturesKeys(t *testing.T) {
	m, stubs := newTestModel()
	m.Update(OpenPromptMsg{})
	before := stubs[0].updates

	for _, r := range "q12" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.ActiveTab() != TabDashboard {
		t.Error("digits should not switch tabs while the prompt is open")
	}
	if stubs[0].updates != before {
		t.Error("tabs should not receive keys while the prompt is open")
	}
	if m.prompt.Value() != "q12" {
		t.Errorf("prompt value = %q", m.prompt.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.PromptOpen() || m.prompt.Err() == "" {
		t.Error("invalid input should keep the prompt open with an error")
	}
}

func TestModel_ProjectIDSaved(t *testing.T) {
	m, _ := newTestModel()
	m.Update(OpenPromptMsg{})

	m.Update(ProjectIDSavedMsg{ProjectID: "my-project-123", Error: settings.ErrProjectIDInvalid})
	if !m.PromptOpen() {
		t.Fatal("prompt should stay open on save error")
	}

	_, cmd := m.Update(ProjectIDSavedMsg{ProjectID: "my-project-123"})
	if m.PromptOpen() {
		t.Error("prompt should close after saving")
	}
	if cmd == nil {
		t.Fatal("expected a notification command")
	}
}

func TestModel_Notifications(t *testing.T) {
	m, _ := newTestModel()

	m.Update(AddNotificationMsg{Type: NotificationError, Message: "boom", Duration: DefaultNotificationDuration})
	if n := m.State().Notifications(); len(n) != 1 {
		t.Fatalf("notifications = %+v", n)
	}
	if !strings.Contains(m.View(), "[ERR] boom") {
		t.Error("toast should be rendered")
	}

	_, cmd := m.Update(ClipboardResultMsg{Label: "Console", Text: "https://x", Error: errors.New("no clipboard")})
	var got []string
	for _, msg := range collectMsgs(cmd) {
		if n, ok := msg.(AddNotificationMsg); ok {
			got = append(got, n.Message)
		}
	}
	if len(got) != 1 || got[0] != "Console: https://x" {
		t.Errorf("clipboard fallback notifications = %v", got)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !m.showHelp {
		t.Fatal("? should show the menu")
	}
	if !strings.Contains(m.View(), i18n.Messages(i18n.English).MenuRefreshNow) {
		t.Error("menu should list refresh now")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should hide the menu")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	quit := false
	for _, msg := range collectMsgs(cmd) {
		_, ok := msg.(tea.QuitMsg)
		quit = quit || ok
	}
	if !quit {
		t.Error("q should quit")
	}
}

// collectMsgs runs cmd and flattens batched messages.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collectMsgs(c)...)
	}
	return out
}
