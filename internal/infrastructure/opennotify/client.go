package opennotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/metrics"
	"ISSNotifier/internal/ports"
)

const (
	// DefaultURL is the public ISS position endpoint.
	DefaultURL = "http://api.open-notify.org/iss-now.json"

	upstreamName = "open-notify"
)

// Client fetches the current ISS ground-track position.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.PositionSource = (*Client)(nil)

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

type positionResponse struct {
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	ISSPosition *struct {
		Latitude  coordinate `json:"latitude"`
		Longitude coordinate `json:"longitude"`
	} `json:"iss_position"`
}

// coordinate accepts both the quoted decimal the service sends and a bare number.
type coordinate string

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*c = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*c = coordinate(strings.TrimSpace(raw))
	return nil
}

// CurrentPosition issues one GET and parses the reported latitude/longitude.
func (c *Client) CurrentPosition(ctx context.Context) (pos domain.SatellitePosition, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(upstreamName, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.SatellitePosition{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ISSNotifier/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.SatellitePosition{}, fmt.Errorf("%w: request position: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.SatellitePosition{}, fmt.Errorf("%w: open-notify returned %s: %s",
			domain.ErrNetwork, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var payload positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.SatellitePosition{}, fmt.Errorf("%w: decode position: %v", domain.ErrParse, err)
	}

	pos, err = payload.toPosition()
	if err != nil {
		return domain.SatellitePosition{}, err
	}

	if c.logger != nil {
		c.logger.Debug("position fetched", "lat", pos.Latitude, "lng", pos.Longitude)
	}
	return pos, nil
}

func (p positionResponse) toPosition() (domain.SatellitePosition, error) {
	if p.Message != "" && p.Message != "success" {
		return domain.SatellitePosition{}, fmt.Errorf("%w: open-notify message %q", domain.ErrParse, p.Message)
	}
	if p.ISSPosition == nil {
		return domain.SatellitePosition{}, fmt.Errorf("%w: iss_position is missing", domain.ErrParse)
	}

	lat, err := parseDegrees("latitude", string(p.ISSPosition.Latitude), 90)
	if err != nil {
		return domain.SatellitePosition{}, err
	}
	lng, err := parseDegrees("longitude", string(p.ISSPosition.Longitude), 180)
	if err != nil {
		return domain.SatellitePosition{}, err
	}

	pos := domain.SatellitePosition{
		Coordinates: domain.Coordinates{Latitude: lat, Longitude: lng},
	}
	if p.Timestamp > 0 {
		pos.Timestamp = time.Unix(p.Timestamp, 0).UTC()
	}
	return pos, nil
}

func parseDegrees(field, raw string, limit float64) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is missing", domain.ErrParse, field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrParse, field, raw)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%w: %s %v out of range", domain.ErrParse, field, v)
	}
	return v, nil
}
