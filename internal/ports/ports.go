package ports

import (
	"context"
	"time"

	"ISSNotifier/internal/domain"
)

// PositionSource reports where the satellite currently is.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (domain.SatellitePosition, error)
}

// SunTimesSource resolves today's sunrise and sunset for a location.
type SunTimesSource interface {
	SunTimes(ctx context.Context, location domain.Coordinates) (domain.DayNightWindow, error)
}

// NightChecker decides whether it is dark at a location right now.
type NightChecker interface {
	IsNight(ctx context.Context, location domain.Coordinates) (bool, error)
}

// Notifier delivers the overhead alert. Delivery failures are handled by the
// implementation and never reach the caller.
type Notifier interface {
	Notify(ctx context.Context)
}

// Sleeper blocks between polling cycles.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}
