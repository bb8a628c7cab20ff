package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jdelgado/geomapa/app/observability/metrics"
	"github.com/jdelgado/geomapa/internal/api"
)

var _ Client = (*NominatimClient)(nil)

// Client turns a free-text place name into coordinates.
type Client interface {
	// Lookup returns the first result's coordinates, api.ErrNoResults when
	// the place is unknown, or api.ErrExternalTimeout on a deadline.
	Lookup(ctx context.Context, city string) (lat, lon float64, err error)
}

// NominatimClient queries the OpenStreetMap Nominatim search endpoint.
type NominatimClient struct {
	logger     *slog.Logger
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *NominatimClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NominatimClient{
		logger:     logger,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *NominatimClient) Lookup(ctx context.Context, city string) (float64, float64, error) {
	start := time.Now()
	defer func() {
		metrics.Get().GeocodeLookupDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", city)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, 0, fmt.Errorf("%w: geocoding %q: %v", api.ErrExternalTimeout, city, err)
		}
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding endpoint returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(results) == 0 {
		metrics.Get().GeocodeNotFoundTotal.Add(ctx, 1)
		c.logger.InfoContext(ctx, "No geocoding results", slog.String("city", city))
		return 0, 0, fmt.Errorf("%w: %q", api.ErrNoResults, city)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	c.logger.DebugContext(ctx, "Geocoded city",
		slog.String("city", city),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
	)
	return lat, lon, nil
}
