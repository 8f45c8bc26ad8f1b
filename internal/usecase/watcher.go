package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/metrics"
	"ISSNotifier/internal/ports"
	"ISSNotifier/internal/sky"
)

const (
	// DefaultPollInterval is the wait after a cycle that sent nothing.
	DefaultPollInterval = 60 * time.Second
	// DefaultCooldown is the wait after an alert has been sent.
	DefaultCooldown = 600 * time.Second
	// DefaultRetryDelay is the wait after a failed lookup.
	DefaultRetryDelay = 60 * time.Second
)

// WatcherDeps wires the driven adapters into the polling loop.
type WatcherDeps struct {
	Position ports.PositionSource
	Night    ports.NightChecker
	Notifier ports.Notifier
	Sleeper  ports.Sleeper
	Logger   *slog.Logger
}

// WatcherSettings holds the observer and loop timings.
type WatcherSettings struct {
	Observer     domain.Coordinates
	Tolerance    float64
	PollInterval time.Duration
	Cooldown     time.Duration
	RetryDelay   time.Duration
}

// Watcher polls the satellite position and alerts when it passes overhead at night.
type Watcher struct {
	position ports.PositionSource
	night    ports.NightChecker
	notifier ports.Notifier
	sleeper  ports.Sleeper
	logger   *slog.Logger
	settings WatcherSettings
}

// Outcome reports what one cycle did and how long to wait before the next.
type Outcome struct {
	Result   domain.CycleOutcome
	Position domain.SatellitePosition
	Delay    time.Duration
	Err      error
}

// NewWatcher fills zero settings with the 5°/60s/600s/60s defaults.
func NewWatcher(deps WatcherDeps, settings WatcherSettings) *Watcher {
	if settings.Tolerance <= 0 {
		settings.Tolerance = sky.DefaultToleranceDegrees
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultCooldown
	}
	if settings.RetryDelay <= 0 {
		settings.RetryDelay = DefaultRetryDelay
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		position: deps.Position,
		night:    deps.Night,
		notifier: deps.Notifier,
		sleeper:  deps.Sleeper,
		logger:   logger,
		settings: settings,
	}
}

// Run repeats cycles until ctx is cancelled. Cycle failures never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if w.sleeper == nil {
		return fmt.Errorf("watcher sleeper is not configured")
	}

	w.logger.Info("watcher started",
		"observer_lat", w.settings.Observer.Latitude,
		"observer_lng", w.settings.Observer.Longitude,
		"tolerance_deg", w.settings.Tolerance)

	for {
		outcome := w.Cycle(ctx)
		if err := w.sleeper.Sleep(ctx, outcome.Delay); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("watcher stopped")
				return nil
			}
			return fmt.Errorf("sleep: %w", err)
		}
	}
}

// Cycle performs one fetch-decide-notify pass.
func (w *Watcher) Cycle(ctx context.Context) Outcome {
	outcome := w.cycle(ctx)
	metrics.RecordCycle(string(outcome.Result))
	return outcome
}

func (w *Watcher) cycle(ctx context.Context) Outcome {
	if w.position == nil || w.night == nil {
		return w.failed(fmt.Errorf("watcher is not fully wired"))
	}

	pos, err := w.position.CurrentPosition(ctx)
	if err != nil {
		return w.failed(fmt.Errorf("fetch position: %w", err))
	}
	metrics.SetSatellitePosition(pos.Latitude, pos.Longitude)
	w.logger.Info("satellite position", "lat", pos.Latitude, "lng", pos.Longitude)

	overhead := sky.IsOverhead(w.settings.Observer, pos.Coordinates, w.settings.Tolerance)
	night := false
	if overhead {
		night, err = w.night.IsNight(ctx, w.settings.Observer)
		if err != nil {
			out := w.failed(fmt.Errorf("night check: %w", err))
			out.Position = pos
			return out
		}
	}

	if !overhead || !night {
		w.logger.Info("not overhead or daytime, waiting",
			"overhead", overhead,
			"night", night,
			"next_check", w.settings.PollInterval)
		return Outcome{Result: domain.OutcomeIdle, Position: pos, Delay: w.settings.PollInterval}
	}

	w.logger.Info("overhead and dark, sending notification")
	if w.notifier != nil {
		w.notifier.Notify(ctx)
	}
	w.logger.Info("cooling down", "next_check", w.settings.Cooldown)
	return Outcome{Result: domain.OutcomeNotified, Position: pos, Delay: w.settings.Cooldown}
}

func (w *Watcher) failed(err error) Outcome {
	w.logger.Error("cycle failed", "error", err, "retry_in", w.settings.RetryDelay)
	return Outcome{Result: domain.OutcomeError, Delay: w.settings.RetryDelay, Err: err}
}
