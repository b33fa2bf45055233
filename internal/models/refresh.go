package models

import "time"

// RefreshTrigger says what started a refresh.
type RefreshTrigger string

const (
	TriggerStartup   RefreshTrigger = "startup"
	TriggerScheduled RefreshTrigger = "scheduled"
	TriggerManual    RefreshTrigger = "manual"
	TriggerSettings  RefreshTrigger = "settings"
)

// RefreshOutcome is the result of one refresh.
type RefreshOutcome string

const (
	OutcomeSuccess      RefreshOutcome = "success"
	OutcomeFailed       RefreshOutcome = "failed"
	OutcomeUnconfigured RefreshOutcome = "unconfigured"
)

// RefreshRecord is one entry of the session refresh log.
type RefreshRecord struct {
	StartedAt time.Time
	RefreshID string
	Trigger   RefreshTrigger
	Outcome   RefreshOutcome
	Error     string
	ID        int64
	Duration  time.Duration
}
