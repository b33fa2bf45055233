package models

import "time"

// minRateSpan is the shortest window an hourly rate is reported for.
const minRateSpan = time.Minute

// SpendRate summarizes how the current month's net cost moved over the
// samples taken in this session, in a single currency.
type SpendRate struct {
	Since       time.Time
	Until       time.Time
	Currency    string
	DataPoints  int
	FirstAmount float64
	LastAmount  float64
}

// Change is the net cost difference between the first and last sample.
func (r SpendRate) Change() float64 {
	return r.LastAmount - r.FirstAmount
}

// Span is the time between the first and last sample.
func (r SpendRate) Span() time.Duration {
	return r.Until.Sub(r.Since)
}

// PerHour extrapolates Change to an hourly rate. It returns false when the
// samples are too close together for the rate to mean anything.
func (r SpendRate) PerHour() (float64, bool) {
	span := r.Span()
	if r.DataPoints < 2 || span < minRateSpan {
		return 0, false
	}
	return r.Change() / span.Hours(), true
}
