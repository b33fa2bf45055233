package app

import (
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// SnapshotLoadedMsg carries a fresh manager snapshot.
type SnapshotLoadedMsg struct {
	Snapshot   services.Snapshot
	Settings   settings.Settings
	ConsoleURL string
}

// HistoryLoadedMsg carries the session samples and refresh log.
type HistoryLoadedMsg struct {
	Samples   []models.CostSample
	Refreshes []models.RefreshRecord
	Rate      *models.SpendRate
	Error     error
}

// ProjectIDSavedMsg is the result of saving a project id.
type ProjectIDSavedMsg struct {
	ProjectID string
	Error     error
}

// ClipboardResultMsg is the result of copying text to the clipboard.
type ClipboardResultMsg struct {
	Label string
	Text  string
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// OpenPromptMsg opens the project id prompt.
type OpenPromptMsg struct{}
