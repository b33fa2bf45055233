package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/render"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

const notificationTitle = "Google Cloud Billing Watcher"

// initialize applies the current settings: it clears the last-known
// record, rebuilds the fetcher and reschedules the periodic refresh.
func (m *Manager) initialize() {
	st := m.settings.Current()
	cat := i18n.Messages(m.language(st))

	var (
		fetcher Fetcher
		err     error
	)
	if st.Configured() {
		fetcher, err = m.deps.newFetcher(st)
	}

	m.mu.Lock()
	m.generation++
	m.current = st
	m.fetcher = fetcher
	m.last = nil
	m.lastErr = err
	if m.entryID != 0 {
		m.scheduler.Remove(m.entryID)
		m.entryID = 0
	}
	m.mu.Unlock()

	m.collector.Clear()
	m.collector.SetBudget(st.MonthlyBudget)

	if !st.Configured() {
		logger.Warn(cat.ProjectIDNotSet, "settings", m.settings.Path())
		m.collector.SetAlertLevel(models.AlertUnconfigured)
		return
	}
	if err != nil {
		logger.Error("Failed to create billing client", "error", err)
	}

	logger.Info(cat.ProjectIDLabel+st.ProjectID, "project", st.ProjectID)
	logger.Info(cat.DatasetIDLabel+st.DatasetID+"."+st.TableID, "project", st.ProjectID)
	logger.Info(fmt.Sprintf("%s%d%s", cat.RefreshLabel, st.RefreshIntervalMinutes, cat.RefreshUnit), "project", st.ProjectID)
	if st.SkipSSLVerification {
		logger.Warn(cat.SSLSkipWarning)
	}

	spec := fmt.Sprintf("@every %s", st.RefreshInterval())
	id, err := m.scheduler.AddFunc(spec, func() {
		logger.Info(cat.ScheduledRefresh)
		m.RefreshAsync(models.TriggerScheduled)
	})
	if err != nil {
		logger.Error("Failed to schedule refresh", "spec", spec, "error", err)
		return
	}

	m.mu.Lock()
	m.entryID = id
	m.mu.Unlock()
}

// RefreshAsync starts a fetch in the background. Concurrent triggers are
// not coalesced; the result that completes last wins.
func (m *Manager) RefreshAsync(trigger models.RefreshTrigger) {
	if !m.acquire() {
		return
	}

	if trigger == models.TriggerManual {
		logger.Info(m.catalog().RefreshRequested)
	}

	go func() {
		defer m.wg.Done()
		m.runRefresh(m.ctx, trigger)
	}()
}

// Refresh fetches synchronously and returns the resulting snapshot. After
// Close it returns the final snapshot without fetching.
func (m *Manager) Refresh(ctx context.Context, trigger models.RefreshTrigger) Snapshot {
	if m.acquire() {
		m.runRefresh(ctx, trigger)
		m.wg.Done()
	}
	return m.Snapshot()
}

// acquire registers a refresh with the wait group unless the manager is
// closed. Close waits for every refresh registered before it took the lock.
func (m *Manager) acquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.wg.Add(1)
	return true
}

func (m *Manager) runRefresh(ctx context.Context, trigger models.RefreshTrigger) {
	refreshID := uuid.NewString()
	started := m.deps.now()

	m.mu.Lock()
	gen := m.generation
	fetcher := m.fetcher
	st := m.current
	initErr := m.lastErr
	if fetcher != nil {
		m.inflight++
	}
	m.mu.Unlock()

	record := &models.RefreshRecord{
		StartedAt: started,
		RefreshID: refreshID,
		Trigger:   trigger,
	}

	if fetcher == nil {
		record.Outcome = models.OutcomeUnconfigured
		result := render.Unconfigured()
		if st.Configured() {
			if initErr == nil {
				initErr = settings.ErrNotConfigured
			}
			record.Outcome = models.OutcomeFailed
			record.Error = initErr.Error()
			result = render.Failed(initErr)
		}
		m.collector.RecordFetch(resultLabel(result), 0)
		m.logRefresh(ctx, record)
		m.applyLevel(render.AlertLevel(result, st.MonthlyBudget), st)
		return
	}

	m.broadcast(RefreshStartedEvent{RefreshID: refreshID, Trigger: trigger})

	metrics, err := fetcher.Fetch(ctx, started)
	elapsed := m.deps.now().Sub(started)
	record.Duration = elapsed

	m.mu.Lock()
	m.inflight--
	stale := gen != m.generation
	if !stale {
		if err != nil {
			m.lastErr = err
		} else {
			m.last = metrics
			m.lastErr = nil
		}
	}
	m.mu.Unlock()

	if err != nil {
		record.Outcome = models.OutcomeFailed
		record.Error = err.Error()
	} else {
		record.Outcome = models.OutcomeSuccess
	}
	m.logRefresh(ctx, record)

	if stale {
		logger.Debug("Discarding refresh result from previous settings", "refresh_id", refreshID)
		return
	}

	cat := i18n.Messages(m.language(st))
	if err != nil {
		logger.Error(cat.ErrorPrefix+err.Error(), "refresh_id", refreshID, "trigger", trigger)
		m.collector.RecordFetch(resultLabel(render.Failed(err)), elapsed)
		m.broadcast(FetchFailedEvent{RefreshID: refreshID, Error: err})
		m.applyLevel(models.AlertError, st)
		return
	}

	status := render.Success(metrics)
	level := render.AlertLevel(status, st.MonthlyBudget)
	logger.Info(cat.FetchSuccess+render.FormatCurrency(metrics.Amount, metrics.Currency, cat.Language),
		"refresh_id", refreshID,
		"trigger", trigger,
		"duration", elapsed,
	)

	m.collector.RecordFetch(resultLabel(status), elapsed)
	m.collector.RecordMetrics(metrics)

	sample := models.SampleFromMetrics(metrics, level)
	sample.RefreshID = refreshID
	if err := m.database.InsertSample(context.WithoutCancel(ctx), &sample); err != nil {
		logger.Error("Failed to record cost sample", "error", err)
	}

	m.broadcast(MetricsUpdatedEvent{RefreshID: refreshID, Metrics: metrics})
	m.applyLevel(level, st)
}

func (m *Manager) logRefresh(ctx context.Context, record *models.RefreshRecord) {
	// Recorded even after cancellation so shutdown fetches are not lost.
	ctx = context.WithoutCancel(ctx)
	if err := m.database.InsertRefresh(ctx, record); err != nil {
		logger.Error("Failed to record refresh", "error", err)
	}
}

// applyLevel records a new alert level, emits AlertChangedEvent on change
// and notifies on spend escalation.
func (m *Manager) applyLevel(level models.AlertLevel, st settings.Settings) {
	m.mu.Lock()
	prev, had := m.level, m.hasLevel
	m.level = level
	m.hasLevel = true
	m.mu.Unlock()

	m.collector.SetAlertLevel(level)

	if had && prev == level {
		return
	}
	m.broadcast(AlertChangedEvent{From: prev, To: level})

	if !had || level.Severity() <= prev.Severity() || m.deps.notifier == nil {
		return
	}
	out := m.Snapshot().Output
	if err := m.deps.notifier.Notify(notificationTitle, out.Summary); err != nil {
		logger.Warn("Failed to send notification", "error", err)
		return
	}
	logger.Info("Sent alert notification", "level", level, "project", st.ProjectID)
}

func (m *Manager) language(st settings.Settings) i18n.Language {
	return i18n.ResolveLanguage(st.Language, m.cfg.LanguageTag)
}

func (m *Manager) catalog() i18n.Catalog {
	return i18n.Messages(m.language(m.Settings()))
}

// Snapshot is the manager state shown by the TUI and the status endpoint.
type Snapshot struct {
	Output      render.Output       `json:"output"`
	Metrics     *models.CostMetrics `json:"metrics,omitempty"`
	LastError   string              `json:"lastError,omitempty"`
	ProjectID   string              `json:"projectId,omitempty"`
	Language    i18n.Language       `json:"language"`
	Budget      float64             `json:"monthlyBudget"`
	Configured  bool                `json:"configured"`
	Refreshing  bool                `json:"refreshing"`
	Loaded      bool                `json:"loaded"`
	NextRefresh *time.Time          `json:"nextRefresh,omitempty"`

	Status  render.Status `json:"-"`
	Catalog i18n.Catalog  `json:"-"`
}

// Snapshot renders the current state. Metrics keeps the last successful
// record even while the status reports a failure.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	st := m.current
	last := m.last
	lastErr := m.lastErr
	inflight := m.inflight
	m.mu.RUnlock()

	lang := m.language(st)
	r := render.NewRenderer(i18n.Messages(lang), time.Local)

	snap := Snapshot{
		Metrics:    last,
		ProjectID:  st.ProjectID,
		Language:   lang,
		Budget:     st.MonthlyBudget,
		Configured: st.Configured(),
		Refreshing: inflight > 0,
		Catalog:    r.Catalog(),
	}
	if lastErr != nil {
		snap.LastError = lastErr.Error()
	}
	if next := m.NextRefresh(); !next.IsZero() {
		snap.NextRefresh = &next
	}

	switch {
	case !st.Configured():
		snap.Status = render.Unconfigured()
	case lastErr != nil:
		snap.Status = render.Failed(lastErr)
	case last != nil:
		snap.Status = render.Success(last)
	default:
		snap.Status = render.Loading()
	}

	snap.Loaded = !snap.Status.IsLoading()
	snap.Output = r.Render(snap.Status, st.MonthlyBudget)
	return snap
}

// StatusView adapts Snapshot for the metrics server status endpoint.
func (m *Manager) StatusView() any {
	return m.Snapshot()
}

// NextRefreshTime returns the next scheduled refresh, or the zero time.
func (s Snapshot) NextRefreshTime() time.Time {
	if s.NextRefresh == nil {
		return time.Time{}
	}
	return *s.NextRefresh
}
