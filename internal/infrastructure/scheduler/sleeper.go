package scheduler

import (
	"context"
	"time"

	"ISSNotifier/internal/ports"
)

// TimerSleeper blocks on a timer and wakes early when the context ends.
type TimerSleeper struct{}

var _ ports.Sleeper = TimerSleeper{}

// NewTimerSleeper returns the wall-clock sleeper used between polling cycles.
func NewTimerSleeper() TimerSleeper {
	return TimerSleeper{}
}

// Sleep waits for d; it returns ctx.Err() if the context finishes first.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
