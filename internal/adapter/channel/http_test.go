package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doppel-ai/internal/domain"
	"doppel-ai/internal/infra/config"
)

func echoHandler(_ context.Context, msg domain.InboundMessage) (domain.OutboundMessage, error) {
	return domain.OutboundMessage{TurnID: msg.TurnID, Content: "echo: " + msg.Content}, nil
}

func malformedHandler(_ context.Context, _ domain.InboundMessage) (domain.OutboundMessage, error) {
	return domain.OutboundMessage{}, domain.NewDomainError("test", domain.ErrMalformedHistory, "")
}

func newTestChannel(handler domain.TurnHandler) *HTTPChannel {
	h := NewHTTPChannel(config.HTTPChannelConfig{
		Addr: "127.0.0.1:0",
		Web: config.WebConfig{
			Title:       "Chat with Ed Donner's AI",
			Description: "Ask me about professional experience, skills, or projects.",
			Examples:    []string{"Tell me about your experience"},
		},
	}, slog.Default())
	h.handler = handler
	return h
}

func postChat(t *testing.T, h *HTTPChannel, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.handleChat(rec, req)
	return rec
}

func TestHTTPChannelChat(t *testing.T) {
	h := newTestChannel(echoHandler)

	rec := postChat(t, h, `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "echo: hello" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.TurnID == "" {
		t.Error("turn_id missing")
	}
}

func TestHTTPChannelChatWithHistory(t *testing.T) {
	var gotHistory []domain.Message
	h := newTestChannel(func(_ context.Context, msg domain.InboundMessage) (domain.OutboundMessage, error) {
		gotHistory = msg.History
		return domain.OutboundMessage{Content: "ok"}, nil
	})

	rec := postChat(t, h, `{"message":"again","history":[{"role":"user","content":"before"},{"role":"assistant","content":"answer"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(gotHistory) != 2 || gotHistory[0].Content != "before" {
		t.Errorf("history = %+v", gotHistory)
	}
}

func TestHTTPChannelChatValidation(t *testing.T) {
	h := newTestChannel(echoHandler)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `{{{`},
		{"missing message", `{"history":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHTTPChannelChatMalformedHistory(t *testing.T) {
	h := newTestChannel(malformedHandler)

	rec := postChat(t, h, `{"message":"hi","history":[{"role":"tool","content":"{}"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != string(domain.CodeMalformedHistory) {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestHTTPChannelChatMethodNotAllowed(t *testing.T) {
	h := newTestChannel(echoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	rec := httptest.NewRecorder()
	h.handleChat(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHTTPChannelHealth(t *testing.T) {
	h := newTestChannel(echoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	h.handleHealth(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHTTPChannelIndexPage(t *testing.T) {
	h := newTestChannel(echoHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.handleIndex(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Chat with Ed Donner's AI",
		"Ask me about professional experience",
		"Tell me about your experience",
		"/api/v1/chat",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestHTTPChannelIndexNotFound(t *testing.T) {
	h := newTestChannel(echoHandler)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.handleIndex(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHTTPChannelStartStop(t *testing.T) {
	h := NewHTTPChannel(config.HTTPChannelConfig{Addr: "127.0.0.1:0"}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.Start(ctx, echoHandler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/v1/chat", h.BoundAddr()),
		"application/json",
		strings.NewReader(`{"message":"hi"}`),
	)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("security headers not applied: %q", got)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := h.Stop(shutdownCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
