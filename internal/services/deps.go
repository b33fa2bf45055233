package services

import (
	"context"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/aculich/gcp-billing-watcher/internal/billing"
	"github.com/aculich/gcp-billing-watcher/internal/config"
	"github.com/aculich/gcp-billing-watcher/internal/metrics"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
)

// queriesPerSecond caps BigQuery requests across the four window queries.
const queriesPerSecond = 4

// Fetcher produces one cost record.
type Fetcher interface {
	Fetch(ctx context.Context, now time.Time) (*models.CostMetrics, error)
}

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

type deps struct {
	newFetcher func(settings.Settings) (Fetcher, error)
	notifier   Notifier
	collector  *metrics.Collector
	now        func() time.Time
}

func defaultDeps(cfg *config.Config) deps {
	d := deps{
		newFetcher: func(st settings.Settings) (Fetcher, error) {
			return newAggregator(cfg, st)
		},
		now: time.Now,
	}
	if cfg.Notifications {
		d.notifier = beeepNotifier{}
	}
	return d
}

func newAggregator(cfg *config.Config, st settings.Settings) (*billing.Aggregator, error) {
	verify := !st.SkipSSLVerification
	transport := billing.NewBigQueryTransport(billing.TransportOptions{
		VerifyCertificates: verify,
		Timeout:            cfg.QueryTimeout,
		RequestsPerSecond:  queriesPerSecond,
	})
	tokens := billing.NewGoogleTokenProvider(st.CredentialsPath, verify)
	table := billing.Table{
		ProjectID: st.ProjectID,
		DatasetID: st.DatasetID,
		TableID:   st.TableID,
	}
	return billing.NewAggregator(table, transport, tokens)
}
