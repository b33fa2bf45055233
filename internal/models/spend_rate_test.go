package models

import (
	"math"
	"testing"
	"time"
)

func TestSpendRate_PerHour(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		rate   SpendRate
		want   float64
		wantOK bool
	}{
		{
			name:   "two hours",
			rate:   SpendRate{Since: start, Until: start.Add(2 * time.Hour), DataPoints: 3, FirstAmount: 10, LastAmount: 14},
			want:   2,
			wantOK: true,
		},
		{
			name:   "month rollover is negative",
			rate:   SpendRate{Since: start, Until: start.Add(time.Hour), DataPoints: 2, FirstAmount: 50, LastAmount: 1},
			want:   -49,
			wantOK: true,
		},
		{
			name: "single sample",
			rate: SpendRate{Since: start, Until: start, DataPoints: 1, FirstAmount: 5, LastAmount: 5},
		},
		{
			name: "too short",
			rate: SpendRate{Since: start, Until: start.Add(30 * time.Second), DataPoints: 2, FirstAmount: 5, LastAmount: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rate.PerHour()
			if ok != tt.wantOK {
				t.Fatalf("PerHour() ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PerHour() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpendRate_Change(t *testing.T) {
	r := SpendRate{FirstAmount: 1.25, LastAmount: 3.75}
	if got := r.Change(); got != 2.5 {
		t.Errorf("Change() = %v, want 2.5", got)
	}
}
