package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jdelgado/geomapa/internal/api/auth"
	"github.com/jdelgado/geomapa/internal/api/marker"
	"github.com/jdelgado/geomapa/internal/api/web"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler       *auth.AuthHandler
	MarkerHandler     *marker.Handler
	WebHandler        *web.Handler
	SessionMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires all application routes. Server-wide middleware
// (logger, requestID, recoverer) is applied before mounting this router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Public routes. The JSON marker API is unauthenticated; it filters
	// strictly by the email given in the path or body.
	r.Group(func(r chi.Router) {
		r.Get("/", cfg.WebHandler.Home)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Get("/logout", cfg.AuthHandler.Logout)
		r.Post("/marcadores", cfg.MarkerHandler.CreateMarker)
		r.Get("/marcadores/{email}", cfg.MarkerHandler.ListMarkers)
	})

	// Browser routes that dereference the current user.
	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionMiddleware)
		r.Get("/mapa", cfg.WebHandler.Mapa)
		r.Post("/web/nuevo-marcador", cfg.MarkerHandler.CreateMarkerWeb)
	})

	return r
}
