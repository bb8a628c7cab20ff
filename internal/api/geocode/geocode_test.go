package geocode

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelgado/geomapa/internal/api"
)

func TestNominatimClientLookup(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("FirstResultWins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Lima", r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"lat":"-12.05","lon":"-77.04","display_name":"Lima, Perú"}]`))
		}))
		defer srv.Close()

		client := NewNominatimClient(srv.URL, "test-agent/1.0", time.Second, logger)
		lat, lon, err := client.Lookup(ctx, "Lima")

		require.NoError(t, err)
		assert.InDelta(t, -12.05, lat, 1e-9)
		assert.InDelta(t, -77.04, lon, 1e-9)
	})

	t.Run("NoResults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := NewNominatimClient(srv.URL, "test-agent/1.0", time.Second, logger)
		_, _, err := client.Lookup(ctx, "UnknownPlaceXYZ")

		assert.ErrorIs(t, err, api.ErrNoResults)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewNominatimClient(srv.URL, "test-agent/1.0", time.Second, logger)
		_, _, err := client.Lookup(ctx, "Lima")

		require.Error(t, err)
		assert.NotErrorIs(t, err, api.ErrNoResults)
	})

	t.Run("UnparsableCoordinates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"lat":"not-a-number","lon":"-77.04"}]`))
		}))
		defer srv.Close()

		client := NewNominatimClient(srv.URL, "test-agent/1.0", time.Second, logger)
		_, _, err := client.Lookup(ctx, "Lima")

		require.Error(t, err)
		assert.NotErrorIs(t, err, api.ErrNoResults)
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := NewNominatimClient(srv.URL, "test-agent/1.0", 20*time.Millisecond, logger)
		_, _, err := client.Lookup(ctx, "Lima")

		require.Error(t, err)
		assert.NotErrorIs(t, err, api.ErrNoResults)
	})
}
