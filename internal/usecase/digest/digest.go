// Package digest sends the operator a periodic summary of recorder
// activity: how many leads were captured and how many questions went
// unanswered over the last day.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"doppel-ai/internal/domain"
)

const window = 24 * time.Hour

// Digest runs a recurring summary job on a cron expression or duration.
type Digest struct {
	recorder domain.Recorder
	notifier domain.Notifier
	logger   *slog.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a digest job on the given schedule, either a cron expression
// like "0 9 * * *" or a duration like "24h".
func New(schedule string, recorder domain.Recorder, notifier domain.Notifier, logger *slog.Logger) (*Digest, error) {
	sched, err := parseSchedule(schedule)
	if err != nil {
		return nil, fmt.Errorf("digest: invalid schedule %q: %w", schedule, err)
	}

	d := &Digest{
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
	}

	d.cron.Schedule(sched, cron.FuncJob(func() {
		d.mu.Lock()
		ctx := d.ctx
		d.mu.Unlock()

		if ctx == nil {
			return
		}
		jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		d.Run(jobCtx)
	}))

	return d, nil
}

// Run executes one digest immediately: summarize the window and send one
// alert. A summary failure is logged and swallowed like any other
// notification-path failure.
func (d *Digest) Run(ctx context.Context) {
	summary, err := d.recorder.Summary(ctx, time.Now().Add(-window))
	if err != nil {
		d.logger.Warn("digest summary failed", "error", err)
		return
	}

	d.notifier.Notify(ctx, fmt.Sprintf(
		"DAILY DIGEST: %d leads captured, %d unknown questions in the last 24h.",
		summary.Leads, summary.Questions))
	d.logger.Info("digest sent", "leads", summary.Leads, "questions", summary.Questions)
}

// Start begins the recurring schedule.
func (d *Digest) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.cron.Start()
	d.started = true
	d.logger.Info("digest scheduler started")
}

// Stop halts the schedule and waits for a running job to finish.
func (d *Digest) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	<-d.cron.Stop().Done()
	d.started = false
}

// parseSchedule tries a cron expression first, then time.ParseDuration.
func parseSchedule(schedule string) (cron.Schedule, error) {
	if schedule == "" {
		return nil, fmt.Errorf("empty schedule")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(schedule); err == nil {
		return sched, nil
	}

	dur, err := time.ParseDuration(schedule)
	if err != nil {
		return nil, fmt.Errorf("not a valid cron expression or duration")
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	return constantDelay{delay: dur}, nil
}

// constantDelay fires at a fixed interval, like cron's @every.
type constantDelay struct {
	delay time.Duration
}

func (c constantDelay) Next(t time.Time) time.Time {
	return t.Add(c.delay)
}
