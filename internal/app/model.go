// Package app implements the main Bubble Tea application with tab-based
// navigation and a persistent billing status bar.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/render"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/ui/components"
	"github.com/aculich/gcp-billing-watcher/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabHistory is the ID for the history tab.
	TabHistory
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabHistory:
		return "History"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Configure key.Binding
	Console   key.Binding
	Settings  key.Binding
	Logs      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Enter     key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		Tab2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		Tab3:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info")),
		NextTab:   key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab")),
		Refresh:   key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh now")),
		Configure: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "set project id")),
		Console:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "console url")),
		Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings path")),
		Logs:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log path")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle menu")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content   lipgloss.Style
	Toast     lipgloss.Style
	StatusBar lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#1A73E8", Dark: "#8AB4F8"}

	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(subtle).Padding(0, 2),

		NotificationSuccess: lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1),
		NotificationError:   lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1),
		NotificationWarning: lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1),
		NotificationInfo:    lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1),

		Content:   lipgloss.NewStyle().Padding(1, 2),
		Toast:     styles.ToastStyle,
		StatusBar: styles.StatusBarStyle,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(highlight),
		Subtle:    lipgloss.NewStyle().Foreground(subtle),
		Highlight: lipgloss.NewStyle().Foreground(highlight),
	}
}

// chromeHeight is the number of lines used by the tab bar and status bar.
const chromeHeight = 4

// Model is the main application model.
type Model struct {
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	state    *State
	services *services.Manager
	keymap   KeyMap
	styles   Styles
	spinner  components.RefreshSpinner
	prompt   Prompt

	width  int
	height int

	showHelp      bool
	ready         bool
	promptOffered bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager) *Model {
	return &Model{
		activeTab: TabDashboard,
		tabNames:  []string{TabDashboard.String(), TabHistory.String(), TabInfo.String()},
		tabs:      make([]Tab, 3),
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   components.NewRefreshSpinner(),
		prompt:    NewPrompt(),
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// State returns the shared application state.
func (m *Model) State() *State {
	return m.state
}

// ActiveTab returns the currently active tab ID.
func (m *Model) ActiveTab() TabID {
	return m.activeTab
}

// PromptOpen reports whether the project id prompt is shown.
func (m *Model) PromptOpen() bool {
	return m.prompt.IsOpen()
}

// catalog returns the catalog of the latest snapshot.
func (m *Model) catalog() i18n.Catalog {
	if snap, ok := m.state.Snapshot(); ok {
		return snap.Catalog
	}
	return i18n.Messages(i18n.English)
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Init(),
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds,
			subscribeToServicesCmd(m.services),
			loadSnapshotCmd(m.services),
			loadHistoryCmd(m.services),
		)
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		if m.prompt.IsOpen() {
			return m, m.handlePromptKey(msg)
		}
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())

	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))

	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event)...)
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}

	case SnapshotLoadedMsg:
		m.state.SetSnapshot(msg.Snapshot, msg.Settings, msg.ConsoleURL)
		if !msg.Snapshot.Configured && !m.promptOffered {
			m.promptOffered = true
			cmds = append(cmds, m.prompt.Open(msg.Snapshot.Catalog, ""))
		}

	case HistoryLoadedMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(m.catalog().ErrorPrefix+msg.Error.Error()))
		} else {
			m.state.SetHistory(msg.Samples, msg.Refreshes)
			m.state.SetSpendRate(msg.Rate)
		}

	case ProjectIDSavedMsg:
		if msg.Error != nil {
			m.prompt.SetError(msg.Error)
			break
		}
		m.prompt.Close()
		cmds = append(cmds, notifySuccessCmd(m.catalog().ProjectIDSet+msg.ProjectID))

	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyInfoCmd(msg.Label+": "+msg.Text))
		} else {
			cmds = append(cmds, notifySuccessCmd(fmt.Sprintf("Copied %s: %s", strings.ToLower(msg.Label), msg.Text)))
		}

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}

	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)

	case TabSwitchMsg:
		m.switchTab(msg.Tab)

	case OpenPromptMsg:
		cmds = append(cmds, m.openPrompt())
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) []tea.Cmd {
	m.trackRefresh(event)
	if m.services == nil {
		return nil
	}
	cat := m.catalog()

	switch e := event.(type) {
	case services.RefreshStartedEvent, services.AlertChangedEvent:
		return []tea.Cmd{loadSnapshotCmd(m.services)}

	case services.MetricsUpdatedEvent:
		return []tea.Cmd{loadSnapshotCmd(m.services), loadHistoryCmd(m.services)}

	case services.FetchFailedEvent:
		return []tea.Cmd{
			loadSnapshotCmd(m.services),
			loadHistoryCmd(m.services),
			notifyErrorCmd(cat.ErrorPrefix + e.Error.Error()),
		}

	case services.SettingsChangedEvent:
		return []tea.Cmd{
			loadSnapshotCmd(m.services),
			loadHistoryCmd(m.services),
			notifyInfoCmd(cat.ConfigChanged),
		}

	case services.ErrorEvent:
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))}
	}
	return nil
}

// trackRefresh labels the status bar spinner with what started the refresh.
func (m *Model) trackRefresh(event services.ServiceEvent) {
	switch e := event.(type) {
	case services.RefreshStartedEvent:
		m.spinner.Begin(refreshLabel(m.catalog(), e.Trigger))
	case services.MetricsUpdatedEvent, services.FetchFailedEvent:
		m.spinner.Done()
	}
}

func refreshLabel(cat i18n.Catalog, trigger models.RefreshTrigger) string {
	switch trigger {
	case models.TriggerScheduled:
		return cat.ScheduledRefresh
	case models.TriggerManual:
		return cat.RefreshRequested
	case models.TriggerSettings:
		return cat.ConfigChanged
	default:
		return cat.Starting
	}
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Escape):
		m.prompt.Close()
		return nil

	case key.Matches(msg, m.keymap.Enter):
		id, ok := m.prompt.Submit()
		if !ok || m.services == nil {
			return nil
		}
		return saveProjectIDCmd(m.services, id)
	}
	return m.prompt.Update(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDashboard)

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabHistory)

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabInfo)

	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))

	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))

	case key.Matches(msg, m.keymap.Refresh):
		m.showHelp = false
		if m.services != nil {
			return refreshCmd(m.services)
		}

	case key.Matches(msg, m.keymap.Configure):
		m.showHelp = false
		return m.openPrompt()

	case key.Matches(msg, m.keymap.Console):
		m.showHelp = false
		return copyToClipboardCmd(m.catalog().MenuOpenConsole, m.state.ConsoleURL())

	case key.Matches(msg, m.keymap.Settings):
		m.showHelp = false
		if m.services != nil {
			return notifyInfoCmd(m.catalog().MenuOpenSettings + ": " + m.services.SettingsPath())
		}

	case key.Matches(msg, m.keymap.Logs):
		m.showHelp = false
		if m.services != nil {
			return notifyInfoCmd(m.catalog().MenuShowLogs + ": " + m.services.LogPath())
		}
	}
	return nil
}

func (m *Model) openPrompt() tea.Cmd {
	return m.prompt.Open(m.catalog(), m.state.Settings().ProjectID)
}

func (m *Model) switchTab(id TabID) {
	if int(id) < 0 || int(id) >= len(m.tabs) {
		return
	}
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if _, isKey := msg.(tea.KeyMsg); isKey && m.prompt.IsOpen() {
		return nil
	}
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-chromeHeight)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// View renders the application UI.
func (m *Model) View() string {
	if !m.ready {
		return m.styles.Content.Render(m.spinner.View(m.catalog().Starting))
	}

	var b strings.Builder
	b.WriteString(m.renderNavbar())
	b.WriteString("\n")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		body := m.tabs[m.activeTab].View()
		b.WriteString(lipgloss.NewStyle().Height(max(0, m.height-chromeHeight)).MaxHeight(max(0, m.height-chromeHeight)).Render(body))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	mainView := b.String()

	switch {
	case m.prompt.IsOpen():
		mainView = m.overlayCentered(mainView, m.prompt.View())
	case m.showHelp:
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}
	return mainView
}

// StatusLine returns the unstyled status bar text.
func (m *Model) StatusLine() string {
	snap, ok := m.state.Snapshot()
	if !ok {
		return render.LoadingIcon + " GCP: " + i18n.Messages(i18n.English).Loading
	}
	if snap.Refreshing {
		return render.LoadingIcon + " GCP: " + snap.Catalog.Loading
	}
	return snap.Output.Summary
}

func (m *Model) renderStatusBar() string {
	snap, ok := m.state.Snapshot()
	level := models.AlertNormal
	if ok && !snap.Refreshing {
		level = snap.Output.Level
	}

	left := styles.AlertStyle(level).Render(m.StatusLine())
	if ok && snap.Refreshing {
		left = m.spinner.View(left)
	}
	right := m.styles.Subtle.Render(m.catalog().ClickMenu)

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return m.styles.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderNavbar() string {
	var tabs []string
	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	return m.styles.TabBar.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m *Model) renderHelp() string {
	cat := m.catalog()
	lines := []string{
		m.styles.Title.Render(cat.Title),
		"",
		m.styles.Highlight.Render("Menu"),
		fmt.Sprintf("  %-10s %s", "r", cat.MenuRefreshNow),
		fmt.Sprintf("  %-10s %s", "o", cat.MenuOpenConsole),
		fmt.Sprintf("  %-10s %s", "s", cat.MenuOpenSettings),
		fmt.Sprintf("  %-10s %s", "L", cat.MenuShowLogs),
		fmt.Sprintf("  %-10s %s", "c", cat.ProjectIDPrompt),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-3        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"  q/Ctrl+C   Quit",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, "", m.styles.Highlight.Render(m.tabNames[m.activeTab]+" Tab"))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.Notifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		default:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		}

		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)
	y := max(0, (m.height-len(overlayLines))/2)
	x := max(0, (m.width-overlayWidth)/2)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}
