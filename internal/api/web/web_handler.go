package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	appMiddleware "github.com/jdelgado/geomapa/app/middleware"
	"github.com/jdelgado/geomapa/internal/api/marker"
	"github.com/jdelgado/geomapa/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// SessionReader is the slice of the session store the public home page
// needs; the map page gets its user from the session middleware instead.
type SessionReader interface {
	CurrentUser(r *http.Request) (types.SessionUser, bool)
}

type Handler struct {
	logger    *slog.Logger
	templates *template.Template
	sessions  SessionReader
	markers   marker.MarkerService
	clientID  string
}

func NewWebHandler(markers marker.MarkerService, sessions SessionReader, clientID string, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger:    logger,
		templates: tmpl,
		sessions:  sessions,
		markers:   markers,
		clientID:  clientID,
	}, nil
}

type homeData struct {
	User     *types.SessionUser
	ClientID string
}

// Home handles GET /. The page works with or without a session; the
// Google client ID feeds the sign-in widget.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("WebHandler").Start(r.Context(), "Home")
	defer span.End()

	data := homeData{ClientID: h.clientID}
	if user, ok := h.sessions.CurrentUser(r); ok {
		data.User = &user
	}
	h.render(w, r, "home.html", data)
}

type mapData struct {
	User    types.SessionUser
	Markers []types.Marker
	Error   string
	Warning string
}

// Mapa handles GET /mapa. The session middleware guarantees a user is in
// the context; reaching this handler without one is a routing bug.
func (h *Handler) Mapa(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WebHandler").Start(r.Context(), "Mapa")
	defer span.End()

	user, ok := appMiddleware.UserFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	markers, err := h.markers.ListByEmail(ctx, user.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		h.logger.ErrorContext(ctx, "Failed to load markers for map",
			slog.String("email", user.Email),
			slog.Any("error", err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "mapa.html", mapData{
		User:    user,
		Markers: markers,
		Error:   r.URL.Query().Get("error"),
		Warning: r.URL.Query().Get("warning"),
	})
}

// render executes into a buffer first so a template failure yields a clean
// 500 instead of a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Template execution failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
