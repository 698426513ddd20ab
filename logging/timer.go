package logging

import (
	"context"
	"log/slog"
	"time"
)

// Timer logs elapsed time for a labelled operation.
type Timer struct {
	ctx    context.Context
	logger *slog.Logger
	label  string
	start  time.Time
	last   time.Time
	now    func() time.Time
}

// Start begins timing label and logs the start at debug level.
func Start(ctx context.Context, logger *slog.Logger, label string) *Timer {
	return startWithClock(ctx, logger, label, time.Now)
}

func startWithClock(ctx context.Context, logger *slog.Logger, label string, now func() time.Time) *Timer {
	t := &Timer{
		ctx:    ctx,
		logger: logger,
		label:  label,
		now:    now,
	}
	t.start = now()
	t.last = t.start
	logger.DebugContext(ctx, label+" started")
	return t
}

// Mark logs msg with the time since the previous mark (or the start).
func (t *Timer) Mark(msg string, args ...any) time.Duration {
	now := t.now()
	d := now.Sub(t.last)
	t.last = now
	t.logger.DebugContext(t.ctx, msg, append([]any{"op", t.label, "elapsed", d}, args...)...)
	return d
}

// Stop logs the total elapsed time and returns it.
func (t *Timer) Stop(args ...any) time.Duration {
	d := t.now().Sub(t.start)
	t.logger.DebugContext(t.ctx, t.label+" finished", append([]any{"elapsed", d}, args...)...)
	return d
}
