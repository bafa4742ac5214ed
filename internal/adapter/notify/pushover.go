// Package notify implements operator alert delivery. Alerts are
// fire-and-forget: a failed delivery is logged and swallowed so that a
// conversation turn never fails because of a notification.
package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"doppel-ai/internal/domain"
)

// DefaultPushoverURL is the Pushover message API endpoint.
const DefaultPushoverURL = "https://api.pushover.net/1/messages.json"

const pushoverTimeout = 10 * time.Second

// PushoverNotifier sends alerts through the Pushover push notification
// service.
type PushoverNotifier struct {
	token   string
	userKey string
	apiURL  string
	client  *http.Client
	logger  *slog.Logger
}

// PushoverOption customizes a PushoverNotifier.
type PushoverOption func(*PushoverNotifier)

// WithPushoverURL overrides the API endpoint. Used in tests.
func WithPushoverURL(apiURL string) PushoverOption {
	return func(n *PushoverNotifier) { n.apiURL = apiURL }
}

// WithPushoverClient overrides the HTTP client.
func WithPushoverClient(client *http.Client) PushoverOption {
	return func(n *PushoverNotifier) { n.client = client }
}

// WithPushoverTimeout overrides the delivery timeout.
func WithPushoverTimeout(timeout time.Duration) PushoverOption {
	return func(n *PushoverNotifier) { n.client.Timeout = timeout }
}

// NewPushoverNotifier creates a notifier for the given application token
// and user key.
func NewPushoverNotifier(token, userKey string, logger *slog.Logger, opts ...PushoverOption) *PushoverNotifier {
	n := &PushoverNotifier{
		token:   token,
		userKey: userKey,
		apiURL:  DefaultPushoverURL,
		client:  &http.Client{Timeout: pushoverTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements domain.Notifier. Failures are logged, never returned.
func (n *PushoverNotifier) Notify(ctx context.Context, text string) {
	form := url.Values{
		"token":   {n.token},
		"user":    {n.userKey},
		"message": {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		n.logger.Error("pushover request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("pushover delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("pushover delivery rejected", "status", resp.StatusCode)
		return
	}

	n.logger.Debug("pushover alert delivered")
}

var _ domain.Notifier = (*PushoverNotifier)(nil)
