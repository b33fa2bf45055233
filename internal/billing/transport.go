package billing

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aculich/gcp-billing-watcher/internal/logger"
)

// DefaultEndpoint is the BigQuery REST API root.
const DefaultEndpoint = "https://bigquery.googleapis.com/bigquery/v2"

const (
	defaultTimeout   = 60 * time.Second
	maxErrorBodySize = 512
)

// Result is a decoded query result: column names and positional rows.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Index returns the position of column name, or -1.
func (r *Result) Index(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Transport runs a single SQL query for a project.
type Transport interface {
	Query(ctx context.Context, projectID, sql, token string) (*Result, error)
}

// TransportOptions configures a BigQueryTransport.
type TransportOptions struct {
	Endpoint string
	// VerifyCertificates disables TLS verification when false.
	VerifyCertificates bool
	Timeout            time.Duration
	// RequestsPerSecond paces outgoing queries; zero means unlimited.
	RequestsPerSecond float64
	// HTTPClient overrides the client built from the options above.
	HTTPClient *http.Client
}

// BigQueryTransport executes queries through the jobs.query REST endpoint.
type BigQueryTransport struct {
	client    *http.Client
	endpoint  string
	timeoutMs int64
	limiter   *rate.Limiter
}

// NewBigQueryTransport creates a transport from opts.
func NewBigQueryTransport(opts TransportOptions) *BigQueryTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}

	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(opts.VerifyCertificates, opts.Timeout)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &BigQueryTransport{
		client:    client,
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		timeoutMs: opts.Timeout.Milliseconds(),
		limiter:   rate.NewLimiter(limit, 4),
	}
}

// NewHTTPClient returns a client whose TLS verification follows verify.
func NewHTTPClient(verify bool, timeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if !verify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user opt-in
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

type queryRequest struct {
	Query        string `json:"query"`
	UseLegacySQL bool   `json:"useLegacySql"`
	TimeoutMs    int64  `json:"timeoutMs,omitempty"`
}

type queryResponse struct {
	JobComplete bool `json:"jobComplete"`
	Schema      struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	} `json:"schema"`
	Rows []struct {
		F []struct {
			V any `json:"v"`
		} `json:"f"`
	} `json:"rows"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Query implements Transport.
func (t *BigQueryTransport) Query(ctx context.Context, projectID, sql, token string) (*Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &QueryError{Err: err}
	}

	payload, err := json.Marshal(queryRequest{Query: sql, UseLegacySQL: false, TimeoutMs: t.timeoutMs})
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/projects/%s/queries", t.endpoint, url.PathEscape(projectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &QueryError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Status, body)}
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, &QueryError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if len(qr.Errors) > 0 {
		return nil, &QueryError{StatusCode: resp.StatusCode, Message: qr.Errors[0].Message}
	}
	if !qr.JobComplete {
		return nil, &QueryError{StatusCode: resp.StatusCode, Message: "query did not complete before timeout"}
	}

	result := &Result{
		Columns: make([]string, len(qr.Schema.Fields)),
		Rows:    make([][]any, 0, len(qr.Rows)),
	}
	for i, f := range qr.Schema.Fields {
		result.Columns[i] = f.Name
	}
	for _, row := range qr.Rows {
		values := make([]any, len(row.F))
		for i, cell := range row.F {
			values[i] = cell.V
		}
		result.Rows = append(result.Rows, values)
	}
	return result, nil
}

// errorMessage extracts the API error message, falling back to the
// truncated body or the HTTP status text.
func errorMessage(status string, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if len(text) > maxErrorBodySize {
		text = text[:maxErrorBodySize] + "..."
	}
	return text
}
