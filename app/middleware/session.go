package appMiddleware

import (
	"context"
	"net/http"

	"github.com/jdelgado/geomapa/internal/types"
)

type contextKey string

const UserKey contextKey = "sessionUser"

// SessionReader is the slice of the session store this middleware needs.
type SessionReader interface {
	CurrentUser(r *http.Request) (types.SessionUser, bool)
}

// RequireSession guards pages that dereference the current user. Requests
// without a valid session are redirected to the home page instead of
// reaching a handler that would fail on an absent user.
func RequireSession(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := sessions.CurrentUser(r)
			if !ok {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the session user placed by RequireSession.
func UserFromContext(ctx context.Context) (types.SessionUser, bool) {
	user, ok := ctx.Value(UserKey).(types.SessionUser)
	return user, ok
}
