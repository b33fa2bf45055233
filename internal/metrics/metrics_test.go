package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

func sample() *models.CostMetrics {
	return models.NewCostMetrics("JPY", 12000, 2000, models.WindowAmounts{
		LastMonth:   9000,
		Last3Months: 30000,
		Yearly:      45000,
	}, time.Unix(1_750_000_000, 0))
}

func TestRecordMetrics(t *testing.T) {
	c := NewCollector(nil)
	c.RecordMetrics(sample())

	tests := map[string]float64{
		"current_month":                10000,
		"last_month":                   9000,
		"last_3_months":                30000,
		"year_to_date":                 45000,
		"current_month_before_credits": 12000,
	}
	for window, want := range tests {
		if got := testutil.ToFloat64(c.cost.WithLabelValues(window, "JPY")); got != want {
			t.Errorf("cost{%s} = %v, want %v", window, got, want)
		}
	}
	if got := testutil.ToFloat64(c.lastSuccess); got != 1_750_000_000 {
		t.Errorf("last success = %v", got)
	}

	// A currency switch must not leave stale series behind.
	usd := models.NewCostMetrics("USD", 1, 0, models.WindowAmounts{}, time.Now())
	c.RecordMetrics(usd)
	if n := testutil.CollectAndCount(c.cost); n != 5 {
		t.Errorf("cost series = %d, want 5", n)
	}
}

func TestRecordFetch(t *testing.T) {
	c := NewCollector(nil)
	c.RecordFetch(ResultSuccess, 2*time.Second)
	c.RecordFetch(ResultSuccess, time.Second)
	c.RecordFetch(ResultError, time.Second)
	c.RecordFetch(ResultUnconfigured, 0)

	if got := testutil.ToFloat64(c.fetches.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetches.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.fetchDuration); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestAlertLevelAndBudget(t *testing.T) {
	c := NewCollector(nil)
	c.SetAlertLevel(models.AlertCritical)
	c.SetBudget(250)

	if got := testutil.ToFloat64(c.alertLevel); got != 2 {
		t.Errorf("alert level = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.budget); got != 250 {
		t.Errorf("budget = %v, want 250", got)
	}

	c.RecordMetrics(sample())
	c.Clear()
	if n := testutil.CollectAndCount(c.cost); n != 0 {
		t.Errorf("cost series after Clear = %d, want 0", n)
	}
}

func TestServerRoutes(t *testing.T) {
	c := NewCollector(nil)
	c.RecordMetrics(sample())

	srv := NewServer(":0", c, func() any {
		return map[string]string{"summary": "✓ GCP: ¥10,000 / ¥45,000"}
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := get(t, ts.URL+"/healthz", http.StatusOK)
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("/healthz = %q", body)
	}

	body = get(t, ts.URL+"/metrics", http.StatusOK)
	if !strings.Contains(body, `gcp_billing_cost_amount{currency="JPY",window="year_to_date"} 45000`) {
		t.Errorf("/metrics missing cost gauge:\n%s", body)
	}

	body = get(t, ts.URL+"/status", http.StatusOK)
	var status map[string]string
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("/status is not JSON: %v", err)
	}
	if status["summary"] != "✓ GCP: ¥10,000 / ¥45,000" {
		t.Errorf("/status summary = %q", status["summary"])
	}
}

func TestServerStatusUnavailable(t *testing.T) {
	ts := httptest.NewServer(NewServer(":0", NewCollector(nil), nil).Handler())
	defer ts.Close()

	get(t, ts.URL+"/status", http.StatusServiceUnavailable)
}

func get(t *testing.T, url string, wantStatus int) string {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Errorf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
