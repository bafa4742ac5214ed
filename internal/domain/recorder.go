package domain

import (
	"context"
	"time"
)

// Lead is a visitor contact capture from the record_user_details tool.
type Lead struct {
	Email      string
	Name       string
	Notes      string
	CapturedAt time.Time
}

// RecordSummary counts recorder activity since a point in time.
type RecordSummary struct {
	Leads     int
	Questions int
}

// Recorder persists tool side-effect records for later review. Writes are
// best-effort from the tools' perspective: callers log errors and continue.
type Recorder interface {
	RecordLead(ctx context.Context, lead Lead) error
	RecordQuestion(ctx context.Context, question string) error
	Summary(ctx context.Context, since time.Time) (RecordSummary, error)
}
