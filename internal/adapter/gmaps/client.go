package gmaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google Geocoding API status values.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"
)

// errRetryable marks failures worth another attempt.
var errRetryable = errors.New("retryable")

// Client implements domain.Geocoder using the Google Geocoding API.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options tunes request pacing and retries.
type Options struct {
	Timeout    time.Duration
	RateLimit  float64 // requests per second
	MaxRetries int
}

// NewClient creates a Google geocoding client.
func NewClient(key string, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		maxRetries: opts.MaxRetries,
		backoff:    500 * time.Millisecond,
		metrics:    metrics,
		logger:     logger,
	}
}

// Geocode looks up a free-text address. Transport errors, 5xx responses and
// quota responses are retried with exponential backoff up to maxRetries times.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.GeocodeResult{}, fmt.Errorf("rate limiter: %w", err)
		}

		start := time.Now()
		result, err := c.doRequest(ctx, address)
		c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			if result.Found {
				c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
			} else {
				c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
			}
			return result, nil
		}

		if !errors.Is(err, errRetryable) || attempt >= c.maxRetries || ctx.Err() != nil {
			c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
			return domain.GeocodeResult{}, err
		}

		c.metrics.GeocodeRequests.WithLabelValues("retry").Inc()
		c.logger.Debug("geocode retry", "address", address, "attempt", attempt+1, "backoff", backoff, "error", err)
		if !sleepWithContext(ctx, backoff) {
			return domain.GeocodeResult{}, ctx.Err()
		}
		backoff *= 2
	}
}

func (c *Client) doRequest(ctx context.Context, address string) (domain.GeocodeResult, error) {
	params := url.Values{
		"address": {address},
		"key":     {c.key},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodeResult{}, fmt.Errorf("google API error: status %d: %s: %w", resp.StatusCode, body, errRetryable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodeResult{}, fmt.Errorf("google API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrGeocoderRejected)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	switch gr.Status {
	case statusOK:
	case statusZeroResults:
		return domain.GeocodeResult{}, nil
	case statusOverQueryLimit, statusUnknownError:
		return domain.GeocodeResult{}, fmt.Errorf("google API status %s: %s: %w", gr.Status, gr.ErrorMessage, errRetryable)
	default:
		// REQUEST_DENIED, INVALID_REQUEST: the same request can never succeed.
		return domain.GeocodeResult{}, fmt.Errorf("google API status %s: %s: %w", gr.Status, gr.ErrorMessage, domain.ErrGeocoderRejected)
	}

	if len(gr.Results) == 0 {
		return domain.GeocodeResult{}, nil
	}
	return gr.Results[0].toDomain(), nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Google Geocoding API response types.

type response struct {
	Results      []result `json:"results"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

type result struct {
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          geometry           `json:"geometry"`
	Types             []string           `json:"types"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (r result) toDomain() domain.GeocodeResult {
	components := make([]domain.AddressComponent, len(r.AddressComponents))
	for i, ac := range r.AddressComponents {
		components[i] = domain.AddressComponent{
			LongName:  ac.LongName,
			ShortName: ac.ShortName,
			Types:     ac.Types,
		}
	}
	return domain.GeocodeResult{
		Found:      true,
		Lat:        r.Geometry.Location.Lat,
		Lon:        r.Geometry.Location.Lng,
		Types:      r.Types,
		Components: components,
	}
}
