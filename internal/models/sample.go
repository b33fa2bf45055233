package models

import "time"

// CostSample is a point-in-time reading kept in the session sample log.
type CostSample struct {
	CapturedAt          time.Time
	RefreshID           string
	Currency            string
	AlertLevel          string
	ID                  int64
	Amount              float64
	AmountBeforeCredits float64
	CreditsAmount       float64
	LastMonthAmount     float64
	Last3MonthsAmount   float64
	YearlyAmount        float64
}

// SampleFromMetrics converts a fetched record into a sample.
func SampleFromMetrics(m *CostMetrics, level AlertLevel) CostSample {
	return CostSample{
		CapturedAt:          m.LastUpdated,
		Currency:            m.Currency,
		AlertLevel:          level.String(),
		Amount:              m.Amount,
		AmountBeforeCredits: m.AmountBeforeCredits,
		CreditsAmount:       m.CreditsAmount,
		LastMonthAmount:     m.LastMonthAmount,
		Last3MonthsAmount:   m.Last3MonthsAmount,
		YearlyAmount:        m.YearlyAmount,
	}
}
