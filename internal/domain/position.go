package domain

import "time"

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// SatellitePosition is the ground-track point reported by the tracking service.
type SatellitePosition struct {
	Coordinates
	Timestamp time.Time
}

// DayNightWindow carries the sunrise and sunset instants for one observer day.
type DayNightWindow struct {
	Sunrise        time.Time
	Sunset         time.Time
	SunriseHourUTC int
	SunsetHourUTC  int
}

// CycleOutcome enumerates the result of one polling iteration.
type CycleOutcome string

const (
	OutcomeIdle     CycleOutcome = "idle"
	OutcomeNotified CycleOutcome = "notified"
	OutcomeError    CycleOutcome = "error"
)
