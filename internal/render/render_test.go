package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
	"github.com/aculich/gcp-billing-watcher/internal/models"
)

var captured = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

func sampleMetrics(currency string) *models.CostMetrics {
	return models.NewCostMetrics(currency, 120, 20, models.WindowAmounts{
		LastMonth:   80,
		Last3Months: 250,
		Yearly:      612.5,
	}, captured)
}

func metricsWith(amount, yearly float64) *models.CostMetrics {
	return models.NewCostMetrics("USD", amount, 0, models.WindowAmounts{Yearly: yearly}, captured)
}

func TestAlertLevel(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		budget float64
		want   models.AlertLevel
	}{
		{"Unconfigured", Unconfigured(), 100, models.AlertUnconfigured},
		{"Failed", Failed(errors.New("x")), 100, models.AlertError},
		{"BudgetNormal", Success(metricsWith(79.99, 0)), 100, models.AlertNormal},
		{"BudgetWarningAtEightyPercent", Success(metricsWith(80, 0)), 100, models.AlertWarning},
		{"BudgetCriticalAtBudget", Success(metricsWith(100, 0)), 100, models.AlertCritical},
		{"BudgetCriticalOver", Success(metricsWith(150, 0)), 100, models.AlertCritical},
		{"BudgetIgnoresYearly", Success(metricsWith(1, 10000)), 100, models.AlertNormal},
		{"FixedNormalAtHundred", Success(metricsWith(0, 100)), 0, models.AlertNormal},
		{"FixedWarning", Success(metricsWith(0, 100.01)), 0, models.AlertWarning},
		{"FixedWarningAtFiveHundred", Success(metricsWith(0, 500)), 0, models.AlertWarning},
		{"FixedCritical", Success(metricsWith(0, 500.01)), 0, models.AlertCritical},
		{"NilMetricsIsError", Success(nil), 0, models.AlertError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlertLevel(tt.status, tt.budget); got != tt.want {
				t.Errorf("AlertLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		lang   i18n.Language
		want   string
	}{
		{1234.5, "USD", i18n.English, "$1,234.50"},
		{1234.5, "USD", i18n.Japanese, "$1,234.50"},
		{1234.5, "JPY", i18n.Japanese, "¥1,235"},
		{1234.4, "JPY", i18n.English, "¥1,234"},
		{-2.5, "JPY", i18n.Japanese, "-¥3"},
		{0.125, "USD", i18n.English, "$0.13"},
		{1000000, "EUR", i18n.Japanese, "€1,000,000.00"},
		{12, "CHF", i18n.English, "CHF 12.00"},
		{-20, "GBP", i18n.English, "-£20.00"},
		{-0.001, "USD", i18n.English, "$0.00"},
		{0, "JPY", i18n.Japanese, "¥0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.code, tt.lang); got != tt.want {
				t.Errorf("FormatCurrency(%v, %s, %s) = %q, want %q", tt.amount, tt.code, tt.lang, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, time.May, 15, 21, 4, 5, 0, time.UTC)
	jst := time.FixedZone("JST", 9*60*60)

	if got := FormatTimestamp(ts, i18n.English, time.UTC); got != "May 15, 2025, 9:04:05 PM" {
		t.Errorf("en = %q", got)
	}
	if got := FormatTimestamp(ts, i18n.Japanese, jst); got != "2025/5/16 06:04:05" {
		t.Errorf("ja = %q", got)
	}
}

func TestRender_Success(t *testing.T) {
	r := NewRenderer(i18n.Messages(i18n.English), time.UTC)
	out := r.Render(Success(sampleMetrics("USD")), 0)

	if out.Level != models.AlertCritical {
		t.Errorf("Level = %v, want critical (yearly over 500)", out.Level)
	}
	if out.Summary != "✖ GCP: $100.00 / $612.50" {
		t.Errorf("Summary = %q", out.Summary)
	}

	want := []string{
		"Google Cloud Billing Watcher",
		Rule,
		"Current Cost",
		"Before Credits: $120.00",
		"Credits: -$20.00",
		"Subtotal: $100.00",
		Rule,
		"Last Month (4): $80.00",
		"Last 3 Months: $250.00",
		"Yearly (2025): $612.50",
		Rule,
		"Last Updated: May 15, 2025, 12:00:00 PM",
		Rule,
		"Press ? to show menu",
	}
	if strings.Join(out.Tooltip, "\n") != strings.Join(want, "\n") {
		t.Errorf("Tooltip =\n%s\nwant\n%s", strings.Join(out.Tooltip, "\n"), strings.Join(want, "\n"))
	}
}

func TestRender_BudgetLine(t *testing.T) {
	r := NewRenderer(i18n.Messages(i18n.English), time.UTC)

	without := r.Render(Success(sampleMetrics("USD")), 0)
	for _, line := range without.Tooltip {
		if strings.HasPrefix(line, "Budget") {
			t.Errorf("budget line present without a budget: %q", line)
		}
	}

	with := r.Render(Success(sampleMetrics("USD")), 1000)
	if with.Level != models.AlertNormal {
		t.Errorf("Level = %v, want normal", with.Level)
	}
	if len(with.Tooltip) != len(without.Tooltip)+1 {
		t.Fatalf("tooltip has %d lines, want %d", len(with.Tooltip), len(without.Tooltip)+1)
	}
	if got := with.Tooltip[6]; got != "Budget: $100.00 / $1,000.00 (10.0%)" {
		t.Errorf("budget line = %q", got)
	}
	if with.Tooltip[7] != Rule {
		t.Errorf("budget line should precede the rule, got %q", with.Tooltip[7])
	}
}

func TestRender_Japanese(t *testing.T) {
	m := models.NewCostMetrics("JPY", 12000, 2000.4, models.WindowAmounts{
		LastMonth:   9000,
		Last3Months: 30000,
		Yearly:      45000,
	}, time.Date(2026, time.January, 10, 3, 0, 0, 0, time.UTC))

	r := NewRenderer(i18n.Messages(i18n.Japanese), time.UTC)
	out := r.Render(Success(m), 20000)

	if out.Summary != "✓ GCP: ¥10,000 / ¥45,000" {
		t.Errorf("Summary = %q", out.Summary)
	}
	for _, want := range []string{
		"現在のコスト",
		"割引前: ¥12,000",
		"割引額: -¥2,000",
		"予算: ¥10,000 / ¥20,000 (50.0%)",
		"12月 (確定): ¥9,000",
		"過去3ヶ月: ¥30,000",
		"2026年間: ¥45,000",
		"最終更新: 2026/1/10 03:00:00",
	} {
		if !containsLine(out.Tooltip, want) {
			t.Errorf("tooltip missing %q:\n%s", want, strings.Join(out.Tooltip, "\n"))
		}
	}
}

func TestRender_Unconfigured(t *testing.T) {
	out := Render(Unconfigured(), 100, i18n.English)
	if out.Level != models.AlertUnconfigured {
		t.Errorf("Level = %v", out.Level)
	}
	if out.Summary != "⚙ GCP: Not Configured" {
		t.Errorf("Summary = %q", out.Summary)
	}
	if len(out.Tooltip) != 1 || out.Tooltip[0] != i18n.Messages(i18n.English).NotConfiguredTooltip {
		t.Errorf("Tooltip = %q", out.Tooltip)
	}
}

func TestRender_Failed(t *testing.T) {
	out := Render(Failed(errors.New("bigquery query failed: status 403")), 0, i18n.Japanese)
	if out.Level != models.AlertError {
		t.Errorf("Level = %v", out.Level)
	}
	if out.Summary != "✗ GCP: エラー" {
		t.Errorf("Summary = %q", out.Summary)
	}
	want := "エラー: bigquery query failed: status 403"
	if len(out.Tooltip) != 1 || out.Tooltip[0] != want {
		t.Errorf("Tooltip = %q, want [%q]", out.Tooltip, want)
	}
}

func TestRender_Loading(t *testing.T) {
	for name, status := range map[string]Status{"Loading": Loading(), "ZeroValue": {}} {
		t.Run(name, func(t *testing.T) {
			if status.IsSuccess() || !status.IsLoading() {
				t.Fatalf("IsSuccess = %v, IsLoading = %v", status.IsSuccess(), status.IsLoading())
			}
			if status.Metrics() != nil || status.Err() != nil {
				t.Errorf("loading status should carry neither metrics nor an error")
			}

			out := Render(status, 50, i18n.English)
			if out.Level != models.AlertNormal {
				t.Errorf("Level = %v, want normal", out.Level)
			}
			if out.Summary != "⟳ GCP: ..." {
				t.Errorf("Summary = %q", out.Summary)
			}
			if len(out.Tooltip) != 1 || out.Tooltip[0] != i18n.Messages(i18n.English).Title {
				t.Errorf("Tooltip = %q", out.Tooltip)
			}
		})
	}
}

func TestLoadingSummary(t *testing.T) {
	r := NewRenderer(i18n.Messages(i18n.English), nil)
	if got := r.LoadingSummary(); got != "⟳ GCP: ..." {
		t.Errorf("LoadingSummary() = %q", got)
	}
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
