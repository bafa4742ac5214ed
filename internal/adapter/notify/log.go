package notify

import (
	"context"
	"log/slog"

	"doppel-ai/internal/domain"
)

// LogNotifier writes alerts to the structured log. It is the fallback when
// no Pushover credentials are configured, so local development still shows
// lead captures and unknown questions.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements domain.Notifier.
func (n *LogNotifier) Notify(_ context.Context, text string) {
	n.logger.Info("operator alert", "text", text)
}

var _ domain.Notifier = (*LogNotifier)(nil)
