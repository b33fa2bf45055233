// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
)

// maxNotifications caps the toast stack.
const maxNotifications = 5

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification is a toast shown in the top right corner.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is shared between the root model and the tabs.
type State struct {
	mu sync.RWMutex

	snapshot    services.Snapshot
	hasSnapshot bool
	settings    settings.Settings
	consoleURL  string
	samples     []models.CostSample
	refreshes   []models.RefreshRecord
	rate        *models.SpendRate
	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state.
func NewState() *State {
	return &State{}
}

// SetSnapshot stores the latest manager snapshot.
func (s *State) SetSnapshot(snap services.Snapshot, st settings.Settings, consoleURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.hasSnapshot = true
	s.settings = st
	s.consoleURL = consoleURL
	s.lastUpdated = time.Now()
}

// Snapshot returns the latest snapshot and whether one was received.
func (s *State) Snapshot() (services.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.hasSnapshot
}

// Settings returns the effective settings of the latest snapshot.
func (s *State) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ConsoleURL returns the Cloud Console billing URL for the project.
func (s *State) ConsoleURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consoleURL
}

// SetHistory replaces the session samples and refresh log.
func (s *State) SetHistory(samples []models.CostSample, refreshes []models.RefreshRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
	s.refreshes = refreshes
}

// SetSpendRate stores the session spend rate; nil clears it.
func (s *State) SetSpendRate(rate *models.SpendRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
}

// SpendRate returns the session spend rate, if enough samples exist.
func (s *State) SpendRate() (models.SpendRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rate == nil {
		return models.SpendRate{}, false
	}
	return *s.rate, true
}

// Samples returns a copy of the session samples, oldest first.
func (s *State) Samples() []models.CostSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CostSample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Refreshes returns a copy of the refresh log, newest first.
func (s *State) Refreshes() []models.RefreshRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RefreshRecord, len(s.refreshes))
	copy(out, s.refreshes)
	return out
}

// LastUpdated returns when the snapshot was last replaced.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.notifications[:0]
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// Notifications returns a copy of the active notifications.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}
