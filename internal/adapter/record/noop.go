package record

import (
	"context"
	"time"

	"doppel-ai/internal/domain"
)

// NoopRecorder discards all records. Used when persistence is disabled in
// configuration; operator alerts still fire, nothing is kept for digests.
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that drops everything.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) RecordLead(context.Context, domain.Lead) error { return nil }

func (NoopRecorder) RecordQuestion(context.Context, string) error { return nil }

func (NoopRecorder) Summary(context.Context, time.Time) (domain.RecordSummary, error) {
	return domain.RecordSummary{}, nil
}

var _ domain.Recorder = (*NoopRecorder)(nil)
