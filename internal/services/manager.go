// Package services provides service orchestration for the TUI and the
// headless commands.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/aculich/gcp-billing-watcher/internal/config"
	"github.com/aculich/gcp-billing-watcher/internal/db"
	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/metrics"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/render"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

type (
	// RefreshStartedEvent is emitted when a fetch begins.
	RefreshStartedEvent struct {
		RefreshID string
		Trigger   models.RefreshTrigger
	}

	// MetricsUpdatedEvent is emitted after a successful fetch.
	MetricsUpdatedEvent struct {
		RefreshID string
		Metrics   *models.CostMetrics
	}

	// FetchFailedEvent is emitted when a fetch fails.
	FetchFailedEvent struct {
		RefreshID string
		Error     error
	}

	// SettingsChangedEvent is emitted after the settings were reloaded
	// and the manager re-initialized.
	SettingsChangedEvent struct {
		Settings settings.Settings
	}

	// AlertChangedEvent is emitted when the alert level changes.
	AlertChangedEvent struct {
		From models.AlertLevel
		To   models.AlertLevel
	}

	// ErrorEvent is emitted when a background service reports an error.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RefreshStartedEvent) isServiceEvent()  {}
func (MetricsUpdatedEvent) isServiceEvent()  {}
func (FetchFailedEvent) isServiceEvent()     {}
func (SettingsChangedEvent) isServiceEvent() {}
func (AlertChangedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()           {}

const (
	eventChanSize      = 100
	subscriberChanSize = 50
)

// consoleBillingURL is the Cloud Console billing reports page.
const consoleBillingURL = "https://console.cloud.google.com/billing/reports"

// Manager orchestrates settings, fetching, scheduling and the last-known
// record, and routes events to subscribers.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	deps        deps
	settings    *settings.Service
	database    *db.DB
	collector   *metrics.Collector
	scheduler   *cron.Cron
	entryID     cron.EntryID
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	closed      bool

	// Guarded by mu. generation increases on every re-initialization so
	// results of fetches started under older settings are discarded.
	generation uint64
	current    settings.Settings
	fetcher    Fetcher
	last       *models.CostMetrics
	lastErr    error
	level      models.AlertLevel
	hasLevel   bool
	inflight   int
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	return newManager(cfg, defaultDeps(cfg))
}

func newManager(cfg *config.Config, d deps) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:       cfg,
		deps:      d,
		collector: d.collector,
		scheduler: cron.New(),
		ctx:       ctx,
		cancel:    cancel,
		eventChan: make(chan ServiceEvent, eventChanSize),
		stopChan:  make(chan struct{}),
	}
	if m.collector == nil {
		m.collector = metrics.NewCollector(nil)
	}

	var err error
	m.settings, err = settings.New(cfg.SettingsPath)
	if err != nil {
		cancel()
		return nil, err
	}

	m.database, err = db.New()
	if err != nil {
		cancel()
		_ = m.settings.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.initialize()

	go m.routeEvents()

	return m, nil
}

// Start schedules periodic refreshes and runs the first fetch.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.RefreshAsync(models.TriggerStartup)
}

// routeEvents turns settings service events into re-initializations.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.settings.Events():
			m.handleSettingsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSettingsEvent(event settings.Event) {
	switch event.Type {
	case settings.EventChanged:
		logger.Info(m.catalog().ConfigChanged)
		m.initialize()
		m.broadcast(SettingsChangedEvent{Settings: event.Settings})
		m.RefreshAsync(models.TriggerSettings)

	case settings.EventError:
		m.broadcast(ErrorEvent{Service: "settings", Error: event.Error})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.eventChan <- event:
	default:
	}

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Events returns the manager's own event channel.
func (m *Manager) Events() <-chan ServiceEvent {
	return m.eventChan
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, subscriberChanSize)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SetProjectID validates and saves a project id. The settings watcher
// re-initializes the manager.
func (m *Manager) SetProjectID(id string) error {
	return m.settings.SetProjectID(id)
}

// Settings returns the effective settings.
func (m *Manager) Settings() settings.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SettingsPath returns the settings file path.
func (m *Manager) SettingsPath() string {
	return m.settings.Path()
}

// LogPath returns the log file path.
func (m *Manager) LogPath() string {
	return m.cfg.LogPath
}

// ConsoleURL returns the Cloud Console billing page for the project.
func (m *Manager) ConsoleURL() string {
	id := m.Settings().ProjectID
	if id == "" {
		return consoleBillingURL
	}
	return consoleBillingURL + "?project=" + url.QueryEscape(id)
}

// Collector returns the metrics collector.
func (m *Manager) Collector() *metrics.Collector {
	return m.collector
}

// History returns up to limit session samples, oldest first.
func (m *Manager) History(ctx context.Context, limit int) ([]models.CostSample, error) {
	return m.database.RecentSamples(ctx, limit)
}

// Refreshes returns up to limit refresh log entries, newest first.
func (m *Manager) Refreshes(ctx context.Context, limit int) ([]models.RefreshRecord, error) {
	return m.database.RecentRefreshes(ctx, limit)
}

// SpendRate summarizes how the net cost moved over this session's samples.
// It returns nil until two samples in the same currency exist.
func (m *Manager) SpendRate(ctx context.Context) (*models.SpendRate, error) {
	return m.database.SessionSpendRate(ctx)
}

// NextRefresh returns the next scheduled refresh, or the zero time.
func (m *Manager) NextRefresh() time.Time {
	m.mu.RLock()
	id := m.entryID
	m.mu.RUnlock()
	if id == 0 {
		return time.Time{}
	}
	return m.scheduler.Entry(id).Next
}

// Close stops scheduling, waits for running fetches and releases resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	close(m.stopChan)
	m.cancel()
	<-m.scheduler.Stop().Done()
	m.wg.Wait()

	var errs []error
	if err := m.settings.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.database.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// resultLabel maps a status to the fetch result label.
func resultLabel(status render.Status) string {
	switch {
	case status.IsUnconfigured():
		return metrics.ResultUnconfigured
	case status.IsSuccess():
		return metrics.ResultSuccess
	default:
		return metrics.ResultError
	}
}
