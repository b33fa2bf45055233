package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// LongNotificationDuration is for notifications carrying paths or URLs.
	LongNotificationDuration = 10 * time.Second

	// historyLimit bounds the samples and refresh records loaded per update.
	historyLimit = 500
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadSnapshotCmd reads the manager state.
func loadSnapshotCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return SnapshotLoadedMsg{
			Snapshot:   mgr.Snapshot(),
			Settings:   mgr.Settings(),
			ConsoleURL: mgr.ConsoleURL(),
		}
	}
}

// loadHistoryCmd reads the session samples and refresh log.
func loadHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		samples, err := mgr.History(ctx, historyLimit)
		if err != nil {
			return HistoryLoadedMsg{Error: err}
		}
		refreshes, err := mgr.Refreshes(ctx, historyLimit)
		if err != nil {
			return HistoryLoadedMsg{Error: err}
		}
		rate, err := mgr.SpendRate(ctx)
		return HistoryLoadedMsg{Samples: samples, Refreshes: refreshes, Rate: rate, Error: err}
	}
}

// refreshCmd starts a manual refresh; progress arrives as service events.
func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.RefreshAsync(models.TriggerManual)
		return nil
	}
}

// saveProjectIDCmd persists a project id through the settings service.
func saveProjectIDCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return ProjectIDSavedMsg{ProjectID: id, Error: mgr.SetProjectID(id)}
	}
}

// copyToClipboardCmd copies text and reports the outcome.
func copyToClipboardCmd(label, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Label: label, Text: text, Error: clipboard.WriteAll(text)}
	}
}

// subscribeToServicesCmd subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ch, _ := mgr.Subscribe()
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd waits for the next event on a subscription.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, DefaultNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, LongNotificationDuration)
}

// CopyToClipboard lets tabs copy text with the same feedback as the
// global shortcuts.
func CopyToClipboard(label, text string) tea.Cmd {
	return copyToClipboardCmd(label, text)
}
