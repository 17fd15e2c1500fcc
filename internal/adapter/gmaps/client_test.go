package gmaps

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		key:        testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		maxRetries: 2,
		backoff:    time.Millisecond,
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func bostonResponse() response {
	return response{
		Status: statusOK,
		Results: []result{
			{
				AddressComponents: []addressComponent{
					{LongName: "Boston", ShortName: "Boston", Types: []string{"locality", "political"}},
					{LongName: "Massachusetts", ShortName: "MA", Types: []string{"administrative_area_level_1", "political"}},
					{LongName: "United States", ShortName: "US", Types: []string{"country", "political"}},
				},
				Geometry: geometry{Location: latLng{Lat: 42.3600825, Lng: -71.0588801}},
				Types:    []string{"locality", "political"},
			},
		},
	}
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Boston, Massachusetts, USA", r.URL.Query().Get("address"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(bostonResponse()))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	res, err := c.Geocode(context.Background(), "Boston, Massachusetts, USA")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, 42.3600825, res.Lat)
	assert.Equal(t, -71.0588801, res.Lon)
	assert.Equal(t, []string{"locality", "political"}, res.Types)
	require.Len(t, res.Components, 3)
	assert.Equal(t, "MA", res.Components[1].ShortName)
	assert.True(t, res.Components[2].HasType("country"))
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestClient_Geocode_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Status: statusZeroResults}))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	res, err := c.Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)

	assert.False(t, res.Found)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_Geocode_RequestDenied(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{
			Status:       "REQUEST_DENIED",
			ErrorMessage: "The provided API key is invalid.",
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.Geocode(context.Background(), "Boston")
	require.ErrorIs(t, err, domain.ErrGeocoderRejected)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Equal(t, int32(1), calls.Load(), "non-retryable status is not retried")
}

func TestClient_Geocode_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(bostonResponse()))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	res, err := c.Geocode(context.Background(), "Boston")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("retry")), 0)
}

func TestClient_Geocode_OverQueryLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Status: statusOverQueryLimit}))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	_, err := c.Geocode(context.Background(), "Boston")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGeocoderRejected, "quota exhaustion is a per-record failure")

	assert.Equal(t, int32(3), calls.Load(), "first attempt plus two retries")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_Geocode_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`forbidden`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.Geocode(context.Background(), "Boston")
	require.ErrorIs(t, err, domain.ErrGeocoderRejected)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Geocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	c.maxRetries = 0

	_, err := c.Geocode(context.Background(), "Boston")
	require.Error(t, err)
}
