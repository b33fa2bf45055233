package billing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CloudPlatformScope is the OAuth scope used for BigQuery access.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// TokenProvider supplies bearer tokens for the query transport.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// GoogleTokenProvider resolves credentials from a service account key
// file, or application default credentials when no path is set. Tokens
// are cached until shortly before expiry.
type GoogleTokenProvider struct {
	credentialsPath    string
	verifyCertificates bool

	mu  sync.Mutex
	src oauth2.TokenSource
}

// NewGoogleTokenProvider creates a provider. Credentials are resolved on
// the first call to Token.
func NewGoogleTokenProvider(credentialsPath string, verifyCertificates bool) *GoogleTokenProvider {
	return &GoogleTokenProvider{
		credentialsPath:    credentialsPath,
		verifyCertificates: verifyCertificates,
	}
}

// Token implements TokenProvider. Failures are returned as *AuthError.
func (p *GoogleTokenProvider) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &AuthError{Err: err}
	}

	src, err := p.source()
	if err != nil {
		return "", &AuthError{Err: err}
	}

	tok, err := src.Token()
	if err != nil {
		return "", &AuthError{Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Err: errors.New("empty access token")}
	}
	return tok.AccessToken, nil
}

func (p *GoogleTokenProvider) source() (oauth2.TokenSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src != nil {
		return p.src, nil
	}

	// The token source keeps this context for refreshes, so it must
	// outlive any single fetch.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient,
		NewHTTPClient(p.verifyCertificates, 30*time.Second))

	var creds *google.Credentials
	if p.credentialsPath != "" {
		data, err := os.ReadFile(p.credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
	} else {
		var err error
		creds, err = google.FindDefaultCredentials(ctx, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
	}

	p.src = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	return p.src, nil
}
