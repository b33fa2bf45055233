package billing

import (
	"fmt"
	"strings"

	"github.com/aculich/gcp-billing-watcher/internal/models"
)

// AuthError reports a failure to acquire an access token.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to acquire access token: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError reports a failed or malformed BigQuery response.
type QueryError struct {
	Window     models.WindowName
	StatusCode int
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString("bigquery query failed")
	if e.Window != "" {
		fmt.Fprintf(&b, " (%s)", e.Window)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *QueryError) Unwrap() error { return e.Err }
