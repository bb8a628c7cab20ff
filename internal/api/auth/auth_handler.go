package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jdelgado/geomapa/internal/api"
	"github.com/jdelgado/geomapa/internal/types"
)

// TokenData is the login request body.
type TokenData struct {
	Token string `json:"token"`
}

type AuthHandler struct {
	verifier TokenVerifier
	sessions *SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(verifier TokenVerifier, sessions *SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
	}
}

// Login handles POST /login. The client sends the Google ID token it
// obtained from the sign-in widget; a verified token becomes a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var data TokenData
	if err := api.DecodeJSONBody(w, r, &data); err != nil {
		l.WarnContext(ctx, "Invalid login body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if data.Token == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "token is required")
		return
	}

	claims, err := h.verifier.Verify(ctx, data.Token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token verification failed")
		if errors.Is(err, api.ErrExternalTimeout) {
			l.ErrorContext(ctx, "Identity provider unreachable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "identity provider unreachable")
			return
		}
		l.WarnContext(ctx, "Token rejected", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "token inválido")
		return
	}

	user := types.SessionUser{
		GoogleID: claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}
	if err := h.sessions.SetCurrentUser(w, r, user); err != nil {
		l.ErrorContext(ctx, "Failed to save session", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to establish session")
		return
	}

	l.InfoContext(ctx, "User logged in", slog.String("email", user.Email))
	http.Redirect(w, r, "/mapa", http.StatusSeeOther)
}

// Logout handles GET /logout. Clearing an absent session is a no-op.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()

	if err := h.sessions.Clear(w, r); err != nil {
		// The cookie may be unwritable but the redirect must still happen.
		h.logger.WarnContext(ctx, "Failed to clear session", slog.Any("error", err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
