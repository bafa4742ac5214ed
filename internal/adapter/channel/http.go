// Package channel implements the visitor-facing presentation adapters: an
// HTTP API with an embedded demo page, and an interactive console.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"doppel-ai/internal/domain"
	"doppel-ai/internal/infra/config"
	"doppel-ai/internal/infra/middleware"
)

const maxRequestBody = 1 << 20 // 1 MiB

// HTTPChannel implements domain.Channel over a JSON HTTP API. Conversation
// history travels with every request; the server keeps no session state.
type HTTPChannel struct {
	cfg     config.HTTPChannelConfig
	logger  *slog.Logger
	server  *http.Server
	handler domain.TurnHandler

	// actual bound address, set after Start
	boundAddr string

	ctx    context.Context
	cancel context.CancelFunc
}

type chatRequest struct {
	Message string           `json:"message"`
	History []domain.Message `json:"history,omitempty"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	TurnID string `json:"turn_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPChannel creates an HTTP channel.
func NewHTTPChannel(cfg config.HTTPChannelConfig, logger *slog.Logger) *HTTPChannel {
	return &HTTPChannel{cfg: cfg, logger: logger}
}

// Name implements domain.Channel.
func (h *HTTPChannel) Name() string { return "http" }

// Start begins serving. Non-blocking: the server runs in a goroutine.
func (h *HTTPChannel) Start(ctx context.Context, handler domain.TurnHandler) error {
	h.handler = handler
	h.ctx, h.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", h.handleChat)
	mux.HandleFunc("/api/v1/health", h.handleHealth)
	mux.HandleFunc("/", h.handleIndex)

	secureHandler := middleware.SecurityHeaders(
		middleware.RateLimit(h.ctx, middleware.RateLimitConfig{
			RequestsPerMin: h.cfg.RateLimit.RequestsPerMin,
			Burst:          h.cfg.RateLimit.Burst,
			TrustedProxies: h.cfg.RateLimit.TrustedProxies,
		})(mux),
	)

	h.server = &http.Server{
		Addr:              h.cfg.Addr,
		Handler:           secureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.cfg.Addr, err)
	}
	h.boundAddr = ln.Addr().String()

	go func() {
		h.logger.Info("http channel started", "addr", h.boundAddr)
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (h *HTTPChannel) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

// BoundAddr returns the actual listen address. Valid after Start.
func (h *HTTPChannel) BoundAddr() string { return h.boundAddr }

func (h *HTTPChannel) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", domain.CodeUnknown)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", domain.CodeUnknown)
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", domain.CodeUnknown)
		return
	}

	turnID := ulid.Make().String()
	out, err := h.handler(r.Context(), domain.InboundMessage{
		TurnID:      turnID,
		Content:     req.Message,
		History:     req.History,
		ChannelName: h.Name(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedHistory) {
			writeError(w, http.StatusBadRequest, "malformed history", domain.CodeMalformedHistory)
			return
		}
		h.logger.Error("turn handler failed", "turn_id", turnID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", domain.ErrorCodeOf(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{Reply: out.Content, TurnID: turnID})
}

func (h *HTTPChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *HTTPChannel) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, h.cfg.Web); err != nil {
		h.logger.Error("render index failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, code domain.ErrorCode) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: string(code)})
}

// indexTemplate is the embedded demo chat page. It talks to /api/v1/chat
// and keeps the conversation history in the browser, mirroring the API's
// stateless contract.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}}{{else}}Chat{{end}}</title>
<style>
  body { font-family: 'Inter', 'Segoe UI', sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
  h1 { font-size: 1.4rem; }
  .description { color: #555; white-space: pre-line; }
  #log { border: 1px solid #ddd; border-radius: 8px; padding: 1rem; height: 380px; overflow-y: auto; margin: 1rem 0; }
  .msg { margin: 0.5rem 0; }
  .msg.user { text-align: right; }
  .msg span { display: inline-block; padding: 0.5rem 0.8rem; border-radius: 10px; max-width: 80%; }
  .msg.user span { background: #4f46e5; color: #fff; }
  .msg.assistant span { background: #f1f1f4; }
  form { display: flex; gap: 0.5rem; }
  input[type=text] { flex: 1; padding: 0.6rem; border: 1px solid #ccc; border-radius: 8px; }
  button { padding: 0.6rem 1.2rem; border: none; border-radius: 8px; background: #4f46e5; color: #fff; cursor: pointer; }
  .examples button { background: #f1f1f4; color: #1a1a2e; margin: 0.2rem; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>{{if .Title}}{{.Title}}{{else}}Chat{{end}}</h1>
{{if .Description}}<p class="description">{{.Description}}</p>{{end}}
{{if .Examples}}<div class="examples">{{range .Examples}}<button type="button" data-example="{{.}}">{{.}}</button>{{end}}</div>{{end}}
<div id="log"></div>
<form id="chat">
  <input type="text" id="message" placeholder="Ask me anything..." autocomplete="off">
  <button type="submit">Send</button>
</form>
<script>
const log = document.getElementById('log');
const input = document.getElementById('message');
let history = [];

function show(role, text) {
  const div = document.createElement('div');
  div.className = 'msg ' + role;
  const span = document.createElement('span');
  span.textContent = text;
  div.appendChild(span);
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}

async function send(message) {
  show('user', message);
  const resp = await fetch('/api/v1/chat', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({message: message, history: history}),
  });
  if (!resp.ok) { show('assistant', 'Something went wrong. Please try again.'); return; }
  const data = await resp.json();
  show('assistant', data.reply);
  history.push({role: 'user', content: message});
  history.push({role: 'assistant', content: data.reply});
}

document.getElementById('chat').addEventListener('submit', (e) => {
  e.preventDefault();
  const message = input.value.trim();
  if (!message) return;
  input.value = '';
  send(message);
});

document.querySelectorAll('[data-example]').forEach((btn) => {
  btn.addEventListener('click', () => send(btn.dataset.example));
});
</script>
</body>
</html>
`))

var _ domain.Channel = (*HTTPChannel)(nil)
