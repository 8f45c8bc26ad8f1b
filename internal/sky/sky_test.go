package sky

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"ISSNotifier/internal/domain"
)

func TestIsOverhead(t *testing.T) {
	t.Parallel()

	observer := domain.Coordinates{Latitude: 20.593683, Longitude: 78.962883}

	tests := []struct {
		name      string
		satellite domain.Coordinates
		want      bool
	}{
		{"nearby pass", domain.Coordinates{Latitude: 20.5, Longitude: 79.0}, true},
		{"same point", observer, true},
		{"latitude too far north", domain.Coordinates{Latitude: 26, Longitude: 78.9}, false},
		{"latitude too far south", domain.Coordinates{Latitude: 15.5, Longitude: 78.9}, false},
		{"longitude too far east", domain.Coordinates{Latitude: 20.5, Longitude: 84}, false},
		{"longitude too far west", domain.Coordinates{Latitude: 20.5, Longitude: 73.9}, false},
		{"both out", domain.Coordinates{Latitude: -40, Longitude: -120}, false},
		{"nan latitude", domain.Coordinates{Latitude: math.NaN(), Longitude: 79}, false},
		{"nan longitude", domain.Coordinates{Latitude: 20.5, Longitude: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsOverhead(observer, tt.satellite, DefaultToleranceDegrees); got != tt.want {
				t.Fatalf("IsOverhead(%v, %v) = %v, want %v", observer, tt.satellite, got, tt.want)
			}
		})
	}
}

func TestIsOverheadBoundaryInclusive(t *testing.T) {
	t.Parallel()

	observer := domain.Coordinates{Latitude: 20, Longitude: 70}

	for _, sat := range []domain.Coordinates{
		{Latitude: 25, Longitude: 70},
		{Latitude: 15, Longitude: 70},
		{Latitude: 20, Longitude: 75},
		{Latitude: 20, Longitude: 65},
		{Latitude: 25, Longitude: 75},
	} {
		if !IsOverhead(observer, sat, 5) {
			t.Fatalf("difference of exactly 5 degrees should be overhead: %v", sat)
		}
	}

	if IsOverhead(observer, domain.Coordinates{Latitude: 25.0001, Longitude: 70}, 5) {
		t.Fatalf("difference above 5 degrees should not be overhead")
	}
}

func TestIsOverheadGrid(t *testing.T) {
	t.Parallel()

	observer := domain.Coordinates{Latitude: -33.5, Longitude: 151.25}
	for dLat := -7.0; dLat <= 7.0; dLat += 0.5 {
		for dLon := -7.0; dLon <= 7.0; dLon += 0.5 {
			sat := domain.Coordinates{Latitude: observer.Latitude + dLat, Longitude: observer.Longitude + dLon}
			want := math.Abs(dLat) <= 5 && math.Abs(dLon) <= 5
			if got := IsOverhead(observer, sat, 5); got != want {
				t.Fatalf("dLat=%.1f dLon=%.1f: got %v, want %v", dLat, dLon, got, want)
			}
		}
	}
}

func TestIsNight(t *testing.T) {
	t.Parallel()

	window := domain.DayNightWindow{SunriseHourUTC: 6, SunsetHourUTC: 18}

	tests := []struct {
		hour int
		want bool
	}{
		{0, true},
		{5, true},
		{6, true},
		{7, false},
		{12, false},
		{17, false},
		{18, true},
		{20, true},
		{23, true},
	}

	for _, tt := range tests {
		if got := IsNight(window, tt.hour); got != tt.want {
			t.Errorf("IsNight(6/18, %d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestPureChecksAreRepeatable(t *testing.T) {
	t.Parallel()

	observer := domain.Coordinates{Latitude: 20.593683, Longitude: 78.962883}
	sat := domain.Coordinates{Latitude: 24.9, Longitude: 83.1}
	window := domain.DayNightWindow{SunriseHourUTC: 1, SunsetHourUTC: 13}

	first := IsOverhead(observer, sat, 5)
	firstNight := IsNight(window, 14)
	for i := 0; i < 10; i++ {
		if IsOverhead(observer, sat, 5) != first {
			t.Fatalf("IsOverhead changed between calls")
		}
		if IsNight(window, 14) != firstNight {
			t.Fatalf("IsNight changed between calls")
		}
	}
}

type stubSunTimes struct {
	window domain.DayNightWindow
	err    error
	calls  int
}

func (s *stubSunTimes) SunTimes(_ context.Context, _ domain.Coordinates) (domain.DayNightWindow, error) {
	s.calls++
	return s.window, s.err
}

func TestNightDeterminerUsesClock(t *testing.T) {
	t.Parallel()

	source := &stubSunTimes{window: domain.DayNightWindow{SunriseHourUTC: 6, SunsetHourUTC: 18}}
	det := NewNightDeterminer(source, HourClockUTC, nil)

	det.now = func() time.Time { return time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC) }
	night, err := det.IsNight(context.Background(), domain.Coordinates{})
	if err != nil {
		t.Fatalf("IsNight returned error: %v", err)
	}
	if !night {
		t.Fatalf("expected night at 20h")
	}

	det.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	night, err = det.IsNight(context.Background(), domain.Coordinates{})
	if err != nil {
		t.Fatalf("IsNight returned error: %v", err)
	}
	if night {
		t.Fatalf("expected day at 12h")
	}

	if source.calls != 2 {
		t.Fatalf("expected a sun times lookup per check, got %d", source.calls)
	}
}

// Not parallel: it swaps time.Local.
func TestNightDeterminerDefaultsToLocalClock(t *testing.T) {
	saved := time.Local
	time.Local = time.FixedZone("IST", 5*3600+1800)
	t.Cleanup(func() { time.Local = saved })

	window := domain.DayNightWindow{SunriseHourUTC: 6, SunsetHourUTC: 18}
	// 15:00 UTC is 20:30 in UTC+5:30: day by the UTC hour, night by the local one.
	instant := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		clock HourClock
		want  bool
	}{
		{"default", "", true},
		{"explicit local", HourClockLocal, true},
		{"utc", HourClockUTC, false},
	}

	for _, tt := range tests {
		source := &stubSunTimes{window: window}
		det := NewNightDeterminer(source, tt.clock, nil)
		det.now = func() time.Time { return instant }

		night, err := det.IsNight(context.Background(), domain.Coordinates{})
		if err != nil {
			t.Fatalf("%s: IsNight returned error: %v", tt.name, err)
		}
		if night != tt.want {
			t.Fatalf("%s clock: got night=%v, want %v", tt.name, night, tt.want)
		}
	}
}

func TestNightDeterminerPropagatesSourceError(t *testing.T) {
	t.Parallel()

	source := &stubSunTimes{err: domain.ErrNetwork}
	det := NewNightDeterminer(source, HourClockUTC, nil)

	_, err := det.IsNight(context.Background(), domain.Coordinates{})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
