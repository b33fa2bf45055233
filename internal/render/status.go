package render

import (
	"errors"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// ErrNoMetrics is reported when a success status carries no record.
var ErrNoMetrics = errors.New("no cost metrics available")

type statusKind int

const (
	kindLoading statusKind = iota
	kindSuccess
	kindUnconfigured
	kindFailed
)

// Status is the outcome of a refresh cycle as seen by the renderer.
// Exactly one of Loading, Success, Unconfigured or Failed. The zero value
// is Loading.
type Status struct {
	kind    statusKind
	metrics *models.CostMetrics
	err     error
}

// Loading reports that no fetch has completed for the current settings.
func Loading() Status {
	return Status{kind: kindLoading}
}

// Success wraps a fetched record.
func Success(m *models.CostMetrics) Status {
	if m == nil {
		return Failed(ErrNoMetrics)
	}
	return Status{kind: kindSuccess, metrics: m}
}

// Unconfigured reports that no project id is set.
func Unconfigured() Status {
	return Status{kind: kindUnconfigured}
}

// Failed wraps a fetch error.
func Failed(err error) Status {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Status{kind: kindFailed, err: err}
}

// Metrics returns the record of a success status, or nil.
func (s Status) Metrics() *models.CostMetrics { return s.metrics }

// Err returns the error of a failed status, or nil.
func (s Status) Err() error { return s.err }

// IsSuccess reports whether s carries metrics.
func (s Status) IsSuccess() bool { return s.kind == kindSuccess }

// IsLoading reports whether s is waiting for its first record.
func (s Status) IsLoading() bool { return s.kind == kindLoading }

// IsUnconfigured reports whether s is the unconfigured status.
func (s Status) IsUnconfigured() bool { return s.kind == kindUnconfigured }

// Fixed thresholds applied to the yearly amount when no budget is set.
// They are plain numbers in the record currency.
const (
	FixedWarningThreshold  = 100
	FixedCriticalThreshold = 500
)

// Budget ratios.
const (
	BudgetWarningRatio  = 0.8
	BudgetCriticalRatio = 1.0
)

// AlertLevel derives the alert level for status. The first matching rule
// wins: unconfigured, error, budget ratio when budget > 0, else the fixed
// yearly thresholds.
func AlertLevel(status Status, budget float64) models.AlertLevel {
	switch status.kind {
	case kindUnconfigured:
		return models.AlertUnconfigured
	case kindFailed:
		return models.AlertError
	case kindLoading:
		return models.AlertNormal
	}

	m := status.metrics
	if budget > 0 {
		ratio := m.Amount / budget
		switch {
		case ratio >= BudgetCriticalRatio:
			return models.AlertCritical
		case ratio >= BudgetWarningRatio:
			return models.AlertWarning
		default:
			return models.AlertNormal
		}
	}

	switch {
	case m.YearlyAmount > FixedCriticalThreshold:
		return models.AlertCritical
	case m.YearlyAmount > FixedWarningThreshold:
		return models.AlertWarning
	default:
		return models.AlertNormal
	}
}
