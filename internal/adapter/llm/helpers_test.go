package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"doppel-ai/internal/domain"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       error
	}{
		{"rate limit", http.StatusTooManyRequests, domain.ErrRateLimit},
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuthInvalid},
		{"forbidden", http.StatusForbidden, domain.ErrAuthInvalid},
		{"payload too large", http.StatusRequestEntityTooLarge, domain.ErrContextOverflow},
		{"internal server error", http.StatusInternalServerError, domain.ErrProviderFailure},
		{"bad gateway", http.StatusBadGateway, domain.ErrProviderFailure},
		{"bad request", http.StatusBadRequest, domain.ErrProviderFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHTTPError(tt.statusCode, []byte("detail"))
			if !errors.Is(err, tt.want) {
				t.Errorf("mapHTTPError(%d) = %v, want %v", tt.statusCode, err, tt.want)
			}
		})
	}
}

func TestDoJSONRequestSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("X-Custom") != "value" {
			t.Errorf("custom header = %q", r.Header.Get("X-Custom"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := doJSONRequest(context.Background(), server.Client(), server.URL, []byte(`{}`), map[string]string{"X-Custom": "value"})
	if err != nil {
		t.Fatalf("doJSONRequest() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestDoJSONRequestNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := doJSONRequest(context.Background(), server.Client(), server.URL, []byte(`{}`), nil)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Errorf("error = %v, want ErrProviderFailure", err)
	}
}

func TestDoJSONRequestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := doJSONRequest(ctx, http.DefaultClient, "http://127.0.0.1:0", []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
