// Package sky holds the pure geometry and clock decisions behind an alert:
// whether the satellite is above the observer and whether it is dark there.
package sky

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/ports"
)

// DefaultToleranceDegrees is the angular window treated as "overhead".
const DefaultToleranceDegrees = 5.0

// relTolerance mirrors the relative slack of a close-enough float comparison.
const relTolerance = 1e-9

// IsOverhead reports whether both latitude and longitude of the satellite lie
// within tolerance degrees of the observer. The bound is inclusive.
func IsOverhead(observer, satellite domain.Coordinates, tolerance float64) bool {
	return withinTolerance(observer.Latitude, satellite.Latitude, tolerance) &&
		withinTolerance(observer.Longitude, satellite.Longitude, tolerance)
}

func withinTolerance(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(tolerance) {
		return false
	}
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	diff := math.Abs(a - b)
	slack := relTolerance * math.Max(math.Abs(a), math.Abs(b))
	return diff <= math.Max(slack, tolerance)
}

// IsNight treats the night as the hour range wrapping past midnight: from the
// sunset hour through the sunrise hour, both inclusive.
func IsNight(window domain.DayNightWindow, hour int) bool {
	return hour >= window.SunsetHourUTC || hour <= window.SunriseHourUTC
}

// HourClock selects which wall clock supplies the current hour.
type HourClock string

const (
	// HourClockLocal compares the UTC sun hours against the process's local
	// hour without conversion.
	HourClockLocal HourClock = "local"
	// HourClockUTC compares against the current UTC hour.
	HourClockUTC HourClock = "utc"
)

// NightDeterminer combines a sun-times source with a clock.
type NightDeterminer struct {
	source ports.SunTimesSource
	clock  HourClock
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.NightChecker = (*NightDeterminer)(nil)

// NewNightDeterminer wires the sun-times source; an empty clock means local.
func NewNightDeterminer(source ports.SunTimesSource, clock HourClock, logger *slog.Logger) *NightDeterminer {
	if clock == "" {
		clock = HourClockLocal
	}
	return &NightDeterminer{
		source: source,
		clock:  clock,
		now:    time.Now,
		logger: logger,
	}
}

// IsNight fetches today's window for location and checks the current hour against it.
func (n *NightDeterminer) IsNight(ctx context.Context, location domain.Coordinates) (bool, error) {
	if n.source == nil {
		return false, fmt.Errorf("sun times source is not configured")
	}

	window, err := n.source.SunTimes(ctx, location)
	if err != nil {
		return false, fmt.Errorf("sun times: %w", err)
	}

	hour := n.currentHour()
	night := IsNight(window, hour)
	if n.logger != nil {
		n.logger.Debug("night check",
			"sunrise_hour", window.SunriseHourUTC,
			"sunset_hour", window.SunsetHourUTC,
			"current_hour", hour,
			"clock", string(n.clock),
			"night", night)
	}
	return night, nil
}

func (n *NightDeterminer) currentHour() int {
	now := n.now()
	if n.clock == HourClockUTC {
		return now.UTC().Hour()
	}
	return now.Local().Hour()
}
