package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/jdelgado/geomapa/app/middleware"
	"github.com/jdelgado/geomapa/internal/api/auth"
	"github.com/jdelgado/geomapa/internal/api/marker"
	"github.com/jdelgado/geomapa/internal/api/web"
	"github.com/jdelgado/geomapa/internal/types"
)

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, rawToken string) (*types.GoogleClaims, error) {
	return &types.GoogleClaims{}, nil
}

type stubMarkerService struct{}

func (stubMarkerService) Create(ctx context.Context, m types.Marker) error {
	return nil
}

func (stubMarkerService) CreateFromForm(ctx context.Context, email, ciudad string, image io.Reader, filename string) (types.Marker, string, error) {
	return types.Marker{Email: email, Ciudad: ciudad}, "", nil
}

func (stubMarkerService) ListByEmail(ctx context.Context, email string) ([]types.Marker, error) {
	return []types.Marker{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.Default()

	sessions, err := auth.NewSessionStore("test-session-secret", "geomapa_session")
	require.NoError(t, err)

	var service stubMarkerService
	webHandler, err := web.NewWebHandler(service, sessions, "client-id", logger)
	require.NoError(t, err)

	return SetupRouter(&Config{
		AuthHandler:       auth.NewAuthHandler(stubVerifier{}, sessions, logger),
		MarkerHandler:     marker.NewMarkerHandler(service, logger),
		WebHandler:        webHandler,
		SessionMiddleware: appMiddleware.RequireSession(sessions),
	})
}

func TestRouteWiring(t *testing.T) {
	router := newTestRouter(t)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Ping", func(t *testing.T) {
		w := get("/ping")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("HomeIsPublic", func(t *testing.T) {
		w := get("/")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MarkerListIsPublic", func(t *testing.T) {
		w := get("/marcadores/a@x.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("MapRequiresSession", func(t *testing.T) {
		w := get("/mapa")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("FormEndpointRequiresSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/web/nuevo-marcador", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		w := get("/no-such-route")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
