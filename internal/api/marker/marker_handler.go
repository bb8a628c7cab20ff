package marker

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jdelgado/geomapa/internal/api"
	"github.com/jdelgado/geomapa/internal/types"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	logger  *slog.Logger
	service MarkerService
}

func NewMarkerHandler(service MarkerService, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// CreateMarker handles POST /marcadores. The JSON body carries the full
// marker including client-supplied coordinates, which are range-validated
// before insert.
func (h *Handler) CreateMarker(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MarkerHandler").Start(r.Context(), "CreateMarker")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateMarker"))

	var m types.Marker
	if err := api.DecodeJSONBody(w, r, &m); err != nil {
		l.WarnContext(ctx, "Invalid marker body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Create(ctx, m); err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrValidation) {
			l.WarnContext(ctx, "Marker failed validation", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		span.SetStatus(codes.Error, "insert failed")
		l.ErrorContext(ctx, "Failed to insert marker", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to store marker")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"mensaje":  "Marcador guardado correctamente",
		"marcador": m,
	})
}

// ListMarkers handles GET /marcadores/{email}. An email with no markers
// yields an empty array, not an error.
func (h *Handler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MarkerHandler").Start(r.Context(), "ListMarkers")
	defer span.End()

	email := chi.URLParam(r, "email")
	markers, err := h.service.ListByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		h.logger.ErrorContext(ctx, "Failed to list markers",
			slog.String("email", email),
			slog.Any("error", err),
		)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to retrieve markers")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, markers)
}

// CreateMarkerWeb handles POST /web/nuevo-marcador: the browser form flow.
// Coordinates always come from the geocoder here; the form never supplies
// them. Outcomes are reported through redirect query params so the map
// view can render them.
func (h *Handler) CreateMarkerWeb(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MarkerHandler").Start(r.Context(), "CreateMarkerWeb")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateMarkerWeb"))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		l.WarnContext(ctx, "Invalid multipart form", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}

	email := r.FormValue("email")
	ciudad := r.FormValue("ciudad")

	var image io.Reader
	filename := ""
	file, header, err := r.FormFile("imagen")
	switch {
	case err == nil:
		defer file.Close()
		image = file
		filename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// Field absent entirely; treated the same as an empty filename.
	default:
		l.WarnContext(ctx, "Unreadable image field", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid image field")
		return
	}

	m, warning, err := h.service.CreateFromForm(ctx, email, ciudad, image, filename)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, api.ErrNoResults):
			l.InfoContext(ctx, "City not found, marker not created", slog.String("ciudad", ciudad))
			redirectToMap(w, r, url.Values{"error": {"ciudad_no_encontrada"}})
		case errors.Is(err, api.ErrValidation):
			l.WarnContext(ctx, "Form marker failed validation", slog.Any("error", err))
			redirectToMap(w, r, url.Values{"error": {"datos_invalidos"}})
		case errors.Is(err, api.ErrExternalTimeout):
			l.ErrorContext(ctx, "Geocoder unreachable", slog.Any("error", err))
			redirectToMap(w, r, url.Values{"error": {"servicio_no_disponible"}})
		default:
			span.SetStatus(codes.Error, "insert failed")
			l.ErrorContext(ctx, "Failed to store form marker", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to store marker")
		}
		return
	}

	l.InfoContext(ctx, "Marker created from form",
		slog.String("email", m.Email),
		slog.String("ciudad", m.Ciudad),
	)
	params := url.Values{}
	if warning != "" {
		params.Set("warning", warning)
	}
	redirectToMap(w, r, params)
}

func redirectToMap(w http.ResponseWriter, r *http.Request, params url.Values) {
	target := "/mapa"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
