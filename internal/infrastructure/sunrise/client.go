package sunrise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/metrics"
	"ISSNotifier/internal/ports"
)

const (
	// DefaultURL is the public sunrise/sunset endpoint.
	DefaultURL = "https://api.sunrise-sunset.org/json"

	upstreamName = "sunrise-sunset"
)

// Client resolves sun times through the sunrise-sunset.org API.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.SunTimesSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 10s timeout.
func NewClient(endpoint string, client *http.Client, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{endpoint: endpoint, client: client, logger: logger}
}

type sunTimesResponse struct {
	Status  string `json:"status"`
	Results *struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
}

// SunTimes requests today's window with formatted=0 so both instants come back as UTC ISO-8601.
func (c *Client) SunTimes(ctx context.Context, location domain.Coordinates) (window domain.DayNightWindow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(upstreamName, start, err) }()

	endpoint, err := buildQueryURL(c.endpoint, location)
	if err != nil {
		return domain.DayNightWindow{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.DayNightWindow{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ISSNotifier/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.DayNightWindow{}, fmt.Errorf("%w: request sun times: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.DayNightWindow{}, fmt.Errorf("%w: sunrise-sunset returned %s: %s",
			domain.ErrNetwork, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var payload sunTimesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.DayNightWindow{}, fmt.Errorf("%w: decode sun times: %v", domain.ErrParse, err)
	}
	if payload.Status != "" && payload.Status != "OK" {
		return domain.DayNightWindow{}, fmt.Errorf("%w: sunrise-sunset status %q", domain.ErrParse, payload.Status)
	}
	if payload.Results == nil {
		return domain.DayNightWindow{}, fmt.Errorf("%w: results are missing", domain.ErrParse)
	}

	rise, err := parseInstant("sunrise", payload.Results.Sunrise)
	if err != nil {
		return domain.DayNightWindow{}, err
	}
	set, err := parseInstant("sunset", payload.Results.Sunset)
	if err != nil {
		return domain.DayNightWindow{}, err
	}

	window = newWindow(rise, set)
	if c.logger != nil {
		c.logger.Debug("sun times fetched", "sunrise", rise.Format(time.RFC3339), "sunset", set.Format(time.RFC3339))
	}
	return window, nil
}

func buildQueryURL(base string, location domain.Coordinates) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid sun times url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("lat", strconv.FormatFloat(location.Latitude, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(location.Longitude, 'f', -1, 64))
	query.Set("formatted", "0")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func parseInstant(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is missing", domain.ErrParse, field)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %v", domain.ErrParse, field, raw, err)
	}
	return t.UTC(), nil
}

func newWindow(rise, set time.Time) domain.DayNightWindow {
	return domain.DayNightWindow{
		Sunrise:        rise,
		Sunset:         set,
		SunriseHourUTC: rise.UTC().Hour(),
		SunsetHourUTC:  set.UTC().Hour(),
	}
}
