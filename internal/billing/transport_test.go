package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

const sampleResponse = `{
	"jobComplete": true,
	"schema": {"fields": [{"name": "currency", "type": "STRING"}, {"name": "net_cost", "type": "FLOAT"}]},
	"rows": [{"f": [{"v": "USD"}, {"v": "42.5"}]}, {"f": [{"v": "EUR"}, {"v": null}]}]
}`

func TestBigQueryTransport_Query(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody queryRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	tr := NewBigQueryTransport(TransportOptions{Endpoint: srv.URL, VerifyCertificates: true, Timeout: 5 * time.Second})
	res, err := tr.Query(context.Background(), "my-project", "SELECT 1", "tok-123")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	if gotPath != "/projects/my-project/queries" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Query != "SELECT 1" || gotBody.UseLegacySQL {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.TimeoutMs != 5000 {
		t.Errorf("timeoutMs = %d, want 5000", gotBody.TimeoutMs)
	}

	if res.Index("net_cost") != 1 || res.Index("missing") != -1 {
		t.Errorf("Columns = %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	if res.Rows[0][1] != "42.5" || res.Rows[1][1] != nil {
		t.Errorf("Rows = %v", res.Rows)
	}
}

func TestBigQueryTransport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "Forbidden",
			status:     http.StatusForbidden,
			body:       `{"error": {"code": 403, "message": "Access Denied: Table my-project:billing_export.x"}}`,
			wantStatus: http.StatusForbidden,
			wantMsg:    "Access Denied",
		},
		{
			name:       "PlainTextError",
			status:     http.StatusBadGateway,
			body:       "upstream unavailable",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "upstream unavailable",
		},
		{
			name:       "EmptyErrorBody",
			status:     http.StatusInternalServerError,
			body:       "",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "500",
		},
		{
			name:       "Incomplete",
			status:     http.StatusOK,
			body:       `{"jobComplete": false}`,
			wantStatus: http.StatusOK,
			wantMsg:    "did not complete",
		},
		{
			name:       "QueryErrors",
			status:     http.StatusOK,
			body:       `{"jobComplete": true, "errors": [{"message": "Unrecognized name: cost"}]}`,
			wantStatus: http.StatusOK,
			wantMsg:    "Unrecognized name",
		},
		{
			name:       "MalformedJSON",
			status:     http.StatusOK,
			body:       "not json",
			wantStatus: http.StatusOK,
			wantMsg:    "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &http.Client{Transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tt.status,
						Status:     http.StatusText(tt.status),
						Body:       io.NopCloser(strings.NewReader(tt.body)),
					}, nil
				},
			}}
			tr := NewBigQueryTransport(TransportOptions{HTTPClient: client})

			_, err := tr.Query(context.Background(), "my-project", "SELECT 1", "tok")
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("Query() error = %v, want *QueryError", err)
			}
			if qe.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", qe.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(qe.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", qe.Error(), tt.wantMsg)
			}
		})
	}
}

func TestBigQueryTransport_NetworkError(t *testing.T) {
	netErr := errors.New("connection refused")
	client := &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			return nil, netErr
		},
	}}
	tr := NewBigQueryTransport(TransportOptions{HTTPClient: client})

	_, err := tr.Query(context.Background(), "my-project", "SELECT 1", "tok")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("Query() error = %v, want *QueryError", err)
	}
	if !errors.Is(err, netErr) {
		t.Errorf("error should wrap the network error: %v", err)
	}
}

func TestBigQueryTransport_CanceledContext(t *testing.T) {
	tr := NewBigQueryTransport(TransportOptions{RequestsPerSecond: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.Query(ctx, "my-project", "SELECT 1", "tok"); err == nil {
		t.Error("Query() should fail with a canceled context")
	}
}

func TestBigQueryTransport_CertificateVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	strict := NewBigQueryTransport(TransportOptions{Endpoint: srv.URL, VerifyCertificates: true, Timeout: 5 * time.Second})
	if _, err := strict.Query(context.Background(), "my-project", "SELECT 1", "tok"); err == nil {
		t.Error("self-signed certificate should be rejected when verification is on")
	}

	lax := NewBigQueryTransport(TransportOptions{Endpoint: srv.URL, VerifyCertificates: false, Timeout: 5 * time.Second})
	if _, err := lax.Query(context.Background(), "my-project", "SELECT 1", "tok"); err != nil {
		t.Errorf("Query() with verification off failed: %v", err)
	}
}

func TestErrorMessage_Truncates(t *testing.T) {
	body := strings.Repeat("x", maxErrorBodySize+100)
	got := errorMessage("500 Internal Server Error", []byte(body))
	if len(got) != maxErrorBodySize+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("errorMessage() length = %d", len(got))
	}
}
