// Package metrics exposes billing readings as Prometheus metrics and serves
// them, together with the rendered status, over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

const namespace = "gcp_billing"

// Fetch results used as the "result" label.
const (
	ResultSuccess      = "success"
	ResultError        = "error"
	ResultUnconfigured = "unconfigured"
)

// Collector holds the watcher's metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	cost          *prometheus.GaugeVec
	budget        prometheus.Gauge
	alertLevel    prometheus.Gauge
	lastSuccess   prometheus.Gauge
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewCollector creates and registers the metrics. A nil registry gets a
// fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		cost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cost_amount",
				Help:      "Net cost per window in the export currency",
			},
			[]string{"window", "currency"},
		),
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_budget",
			Help:      "Configured monthly budget, 0 when unset",
		}),
		alertLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_level",
			Help:      "Current alert level (0 normal, 1 warning, 2 critical, 3 unconfigured, 4 error)",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch",
		}),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Billing fetches by result",
			},
			[]string{"result"},
		),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of billing fetches",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}

	registry.MustRegister(
		c.cost,
		c.budget,
		c.alertLevel,
		c.lastSuccess,
		c.fetches,
		c.fetchDuration,
	)

	return c
}

// RecordMetrics publishes a successful record. Gauges from a previous
// currency are dropped.
func (c *Collector) RecordMetrics(m *models.CostMetrics) {
	c.cost.Reset()
	for _, w := range models.AllWindows {
		c.cost.WithLabelValues(string(w), m.Currency).Set(m.WindowAmount(w))
	}
	c.cost.WithLabelValues("current_month_before_credits", m.Currency).Set(m.AmountBeforeCredits)
	c.lastSuccess.Set(float64(m.LastUpdated.Unix()))
}

// RecordFetch counts a fetch and observes its duration.
func (c *Collector) RecordFetch(result string, d time.Duration) {
	c.fetches.WithLabelValues(result).Inc()
	if result != ResultUnconfigured {
		c.fetchDuration.Observe(d.Seconds())
	}
}

// SetAlertLevel publishes the current alert level.
func (c *Collector) SetAlertLevel(l models.AlertLevel) {
	c.alertLevel.Set(float64(l))
}

// SetBudget publishes the configured budget.
func (c *Collector) SetBudget(b float64) {
	c.budget.Set(b)
}

// Clear drops the cost gauges, e.g. after the project changed.
func (c *Collector) Clear() {
	c.cost.Reset()
	c.lastSuccess.Set(0)
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
