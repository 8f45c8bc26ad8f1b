package sunrise

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ISSNotifier/internal/domain"
)

func TestSunTimesQueryAndParse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "20.593683" {
			t.Errorf("expected lat=20.593683, got %s", q.Get("lat"))
		}
		if q.Get("lng") != "78.962883" {
			t.Errorf("expected lng=78.962883, got %s", q.Get("lng"))
		}
		if q.Get("formatted") != "0" {
			t.Errorf("expected formatted=0, got %s", q.Get("formatted"))
		}
		_, _ = w.Write([]byte(`{"results": {"sunrise": "2026-10-18T00:43:11+00:00", "sunset": "2026-10-18T12:31:02+00:00", "day_length": 42471}, "status": "OK"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	window, err := client.SunTimes(context.Background(), domain.Coordinates{Latitude: 20.593683, Longitude: 78.962883})
	if err != nil {
		t.Fatalf("SunTimes returned error: %v", err)
	}

	if window.SunriseHourUTC != 0 {
		t.Fatalf("unexpected sunrise hour: %d", window.SunriseHourUTC)
	}
	if window.SunsetHourUTC != 12 {
		t.Fatalf("unexpected sunset hour: %d", window.SunsetHourUTC)
	}
	want := time.Date(2026, time.October, 18, 12, 31, 2, 0, time.UTC)
	if !window.Sunset.Equal(want) {
		t.Fatalf("unexpected sunset instant: %v", window.Sunset)
	}
}

func TestSunTimesKeepsExistingQuery(t *testing.T) {
	t.Parallel()

	u, err := buildQueryURL("https://api.sunrise-sunset.org/json?tzid=UTC", domain.Coordinates{Latitude: -1.5, Longitude: 2})
	if err != nil {
		t.Fatalf("buildQueryURL returned error: %v", err)
	}
	if u != "https://api.sunrise-sunset.org/json?formatted=0&lat=-1.5&lng=2&tzid=UTC" {
		t.Fatalf("unexpected url: %s", u)
	}
}

func TestSunTimesServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client(), nil).SunTimes(context.Background(), domain.Coordinates{})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestSunTimesParseErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"invalid json":    `not json`,
		"missing results": `{"status": "OK"}`,
		"missing sunset":  `{"results": {"sunrise": "2026-10-18T00:43:11+00:00"}, "status": "OK"}`,
		"bad timestamp":   `{"results": {"sunrise": "6:43:11 AM", "sunset": "2026-10-18T12:31:02+00:00"}, "status": "OK"}`,
		"invalid request": `{"results": "", "status": "INVALID_REQUEST"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, server.Client(), nil).SunTimes(context.Background(), domain.Coordinates{})
			if !errors.Is(err, domain.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestLocalSunTimes(t *testing.T) {
	t.Parallel()

	local := NewLocal()
	local.now = func() time.Time { return time.Date(2026, time.March, 20, 9, 0, 0, 0, time.UTC) }

	// Near the equinox on the equator at the prime meridian, the sun rises
	// close to 06:00 UTC and sets close to 18:00 UTC.
	window, err := local.SunTimes(context.Background(), domain.Coordinates{Latitude: 0, Longitude: 0})
	if err != nil {
		t.Fatalf("SunTimes returned error: %v", err)
	}
	if window.SunriseHourUTC < 5 || window.SunriseHourUTC > 6 {
		t.Fatalf("unexpected sunrise hour: %d", window.SunriseHourUTC)
	}
	if window.SunsetHourUTC < 17 || window.SunsetHourUTC > 18 {
		t.Fatalf("unexpected sunset hour: %d", window.SunsetHourUTC)
	}
	if !window.Sunset.After(window.Sunrise) {
		t.Fatalf("sunset %v should follow sunrise %v", window.Sunset, window.Sunrise)
	}
}

func TestLocalSunTimesPolarNight(t *testing.T) {
	t.Parallel()

	local := NewLocal()
	local.now = func() time.Time { return time.Date(2026, time.December, 21, 12, 0, 0, 0, time.UTC) }

	_, err := local.SunTimes(context.Background(), domain.Coordinates{Latitude: 85, Longitude: 0})
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse during polar night, got %v", err)
	}
}
