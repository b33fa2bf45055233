// Package billing queries the BigQuery billing export and reduces the
// results into cost metrics.
package billing

import (
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"

	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// Aggregator fetches all windows for one billing export table.
type Aggregator struct {
	table     Table
	transport Transport
	tokens    TokenProvider

	// clock stamps records once every window has answered.
	clock func() time.Time

	mu   sync.RWMutex
	last *models.CostMetrics
}

// NewAggregator validates the table identifiers and returns an aggregator.
func NewAggregator(table Table, transport Transport, tokens TokenProvider) (*Aggregator, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if transport == nil || tokens == nil {
		return nil, errors.New("transport and token provider are required")
	}
	return &Aggregator{table: table, transport: transport, tokens: tokens, clock: time.Now}, nil
}

// Table returns the export table this aggregator reads.
func (a *Aggregator) Table() Table {
	return a.table
}

// Last returns the most recent successful record, or nil.
func (a *Aggregator) Last() *models.CostMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// currencyTotals is the current-month gross and credit sum for one currency.
type currencyTotals struct {
	gross   float64
	credits float64
}

// Fetch queries every window concurrently and assembles a record. Windows
// are computed from now; the record is stamped when the last window
// answers. Any window failure fails the whole fetch; no partial record is
// returned.
func (a *Aggregator) Fetch(ctx context.Context, now time.Time) (*models.CostMetrics, error) {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &AuthError{Err: err}
	}

	windows := Windows(now)
	results := make([]*Result, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			start := time.Now()
			res, err := a.transport.Query(gctx, a.table.ProjectID, windowSQL(a.table, w), token)
			if err != nil {
				return windowError(w.Name, err)
			}
			logger.Debug("window query complete",
				"window", w.Name, "rows", len(res.Rows), "duration", time.Since(start))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	capturedAt := a.clock()

	current := reduceCurrentMonth(results[0])
	nets := make([]map[string]float64, 0, len(results)-1)
	for _, res := range results[1:] {
		nets = append(nets, reduceNet(res))
	}

	cur := pickCurrency(current, nets)
	totals := current[cur]
	// Credits are summed negative; reversals can leave the total positive.
	metrics := models.NewCostMetrics(cur, totals.gross, -totals.credits, models.WindowAmounts{
		LastMonth:   nets[0][cur],
		Last3Months: nets[1][cur],
		Yearly:      nets[2][cur],
	}, capturedAt)

	a.mu.Lock()
	a.last = metrics
	a.mu.Unlock()

	return metrics, nil
}

// windowError tags err with the window it came from as a *QueryError.
func windowError(name models.WindowName, err error) error {
	var qe *QueryError
	if !errors.As(err, &qe) {
		qe = &QueryError{Err: err}
	}
	qe.Window = name
	return qe
}

func reduceCurrentMonth(res *Result) map[string]currencyTotals {
	out := make(map[string]currencyTotals)
	if res == nil {
		return out
	}
	ci, gi, ki := res.Index(colCurrency), res.Index(colGross), res.Index(colCredits)
	for _, row := range res.Rows {
		cur := normalizeCurrency(cell(row, ci))
		t := out[cur]
		t.gross += parseAmount(cell(row, gi))
		t.credits += parseAmount(cell(row, ki))
		out[cur] = t
	}
	return out
}

func reduceNet(res *Result) map[string]float64 {
	out := make(map[string]float64)
	if res == nil {
		return out
	}
	ci, ni := res.Index(colCurrency), res.Index(colNet)
	for _, row := range res.Rows {
		out[normalizeCurrency(cell(row, ci))] += parseAmount(cell(row, ni))
	}
	return out
}

// pickCurrency chooses the record currency: the current-month currency with
// the largest gross cost, else the first currency seen in any other window,
// else the default.
func pickCurrency(current map[string]currencyTotals, nets []map[string]float64) string {
	if len(current) > 0 {
		keys := lo.Keys(current)
		slices.Sort(keys)
		return lo.MaxBy(keys, func(a, b string) bool {
			return current[a].gross > current[b].gross
		})
	}
	for _, m := range nets {
		if len(m) > 0 {
			keys := lo.Keys(m)
			slices.Sort(keys)
			return keys[0]
		}
	}
	return models.DefaultCurrency
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

// parseAmount converts a BigQuery cell to a number. Anything that does not
// parse as a finite number is 0.
func parseAmount(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// normalizeCurrency canonicalizes ISO 4217 codes and falls back to the
// default currency for missing values.
func normalizeCurrency(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return models.DefaultCurrency
	}
	if unit, err := currency.ParseISO(s); err == nil {
		return unit.String()
	}
	return strings.ToUpper(s)
}
