package models

// AlertLevel is the display urgency derived from metrics and budget.
type AlertLevel int

const (
	// AlertNormal means spend is below every threshold.
	AlertNormal AlertLevel = iota
	// AlertWarning means spend crossed the warning threshold.
	AlertWarning
	// AlertCritical means spend crossed the critical threshold.
	AlertCritical
	// AlertUnconfigured means no project is configured.
	AlertUnconfigured
	// AlertError means the most recent fetch failed.
	AlertError
)

// String returns the string representation of an AlertLevel.
func (l AlertLevel) String() string {
	switch l {
	case AlertNormal:
		return "normal"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	case AlertUnconfigured:
		return "unconfigured"
	case AlertError:
		return "error"
	default:
		return "unknown"
	}
}

// Severity orders the spend levels so escalations can be detected.
// Unconfigured and error states have no spend severity.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertCritical:
		return 2
	default:
		return 0
	}
}

// MarshalText encodes the level by name.
func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
