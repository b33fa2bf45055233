package billing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGoogleTokenProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"MissingFile", filepath.Join(dir, "missing.json")},
		{"MalformedFile", badJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewGoogleTokenProvider(tt.path, true)
			_, err := p.Token(context.Background())
			var authErr *AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("Token() error = %v, want *AuthError", err)
			}
		})
	}
}

func TestGoogleTokenProvider_CanceledContext(t *testing.T) {
	p := NewGoogleTokenProvider("", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Token(ctx)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Token() error = %v, want *AuthError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled: %v", err)
	}
}
