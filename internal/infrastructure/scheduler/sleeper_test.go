package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimerSleeperWaits(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if err := NewTimerSleeper().Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("woke after %v, expected at least 20ms", elapsed)
	}
}

func TestTimerSleeperZeroDuration(t *testing.T) {
	t.Parallel()

	if err := NewTimerSleeper().Sleep(context.Background(), 0); err != nil {
		t.Fatalf("Sleep returned error: %v", err)
	}
}

func TestTimerSleeperCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := NewTimerSleeper().Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("cancellation did not interrupt the sleep")
	}
}

func TestTimerSleeperAlreadyDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewTimerSleeper().Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
