// Package models defines data structures and domain types.
package models

import "time"

// DefaultCurrency is used when the billing export reports no currency for any window.
const DefaultCurrency = "USD"

// WindowName identifies one of the time windows the billing export is summed over.
type WindowName string

const (
	// WindowCurrentMonth is the current calendar month to date.
	WindowCurrentMonth WindowName = "current_month"
	// WindowLastMonth is the previous calendar month.
	WindowLastMonth WindowName = "last_month"
	// WindowLast3Months is the trailing three calendar months including the current one.
	WindowLast3Months WindowName = "last_3_months"
	// WindowYearToDate is the current calendar year to date.
	WindowYearToDate WindowName = "year_to_date"
)

// AllWindows lists the windows in display order.
var AllWindows = []WindowName{
	WindowCurrentMonth,
	WindowLastMonth,
	WindowLast3Months,
	WindowYearToDate,
}

// CostMetrics is the result of one successful billing fetch.
// All amounts share Currency. Amount is always AmountBeforeCredits - CreditsAmount.
type CostMetrics struct {
	LastUpdated         time.Time `json:"lastUpdated"`
	Currency            string    `json:"currency"`
	AmountBeforeCredits float64   `json:"amountBeforeCredits"`
	CreditsAmount       float64   `json:"creditsAmount"`
	Amount              float64   `json:"amount"`
	LastMonthAmount     float64   `json:"lastMonthAmount"`
	Last3MonthsAmount   float64   `json:"last3MonthsAmount"`
	YearlyAmount        float64   `json:"yearlyAmount"`
}

// WindowAmounts holds the net amounts of the windows other than the current month.
type WindowAmounts struct {
	LastMonth   float64
	Last3Months float64
	Yearly      float64
}

// NewCostMetrics assembles a record and derives the net current-month amount.
func NewCostMetrics(currency string, beforeCredits, credits float64, windows WindowAmounts, capturedAt time.Time) *CostMetrics {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &CostMetrics{
		LastUpdated:         capturedAt,
		Currency:            currency,
		AmountBeforeCredits: beforeCredits,
		CreditsAmount:       credits,
		Amount:              beforeCredits - credits,
		LastMonthAmount:     windows.LastMonth,
		Last3MonthsAmount:   windows.Last3Months,
		YearlyAmount:        windows.Yearly,
	}
}

// WindowAmount returns the net amount reported for a window.
func (m *CostMetrics) WindowAmount(w WindowName) float64 {
	switch w {
	case WindowCurrentMonth:
		return m.Amount
	case WindowLastMonth:
		return m.LastMonthAmount
	case WindowLast3Months:
		return m.Last3MonthsAmount
	case WindowYearToDate:
		return m.YearlyAmount
	default:
		return 0
	}
}
