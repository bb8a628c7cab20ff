package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/jdelgado/geomapa/internal/types"
)

// Session value keys. Only strings go into the cookie so no gob
// registration is needed.
const (
	sessionKeyGoogleID = "google_id"
	sessionKeyEmail    = "email"
	sessionKeyName     = "name"
	sessionKeyPicture  = "picture"
)

// SessionStore associates a verified identity with a signed session cookie.
type SessionStore struct {
	store *sessions.CookieStore
	name  string
}

// NewSessionStore builds a cookie-backed session store. The secret must be
// provisioned externally; an empty secret is rejected at startup.
func NewSessionStore(secret, name string) (*SessionStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret must not be empty")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store, name: name}, nil
}

// SetCurrentUser stores the four claim fields in the session cookie.
func (s *SessionStore) SetCurrentUser(w http.ResponseWriter, r *http.Request, user types.SessionUser) error {
	session, err := s.store.Get(r, s.name)
	if err != nil {
		// A tampered or stale cookie decodes to a fresh session; Get still
		// returns a usable session value in that case.
		if session == nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
	}
	session.Values[sessionKeyGoogleID] = user.GoogleID
	session.Values[sessionKeyEmail] = user.Email
	session.Values[sessionKeyName] = user.Name
	session.Values[sessionKeyPicture] = user.Picture
	return session.Save(r, w)
}

// CurrentUser returns the stored session user, or ok=false when the
// request carries no valid session.
func (s *SessionStore) CurrentUser(r *http.Request) (types.SessionUser, bool) {
	session, err := s.store.Get(r, s.name)
	if err != nil || session.IsNew {
		return types.SessionUser{}, false
	}
	email, ok := session.Values[sessionKeyEmail].(string)
	if !ok || email == "" {
		return types.SessionUser{}, false
	}
	user := types.SessionUser{Email: email}
	user.GoogleID, _ = session.Values[sessionKeyGoogleID].(string)
	user.Name, _ = session.Values[sessionKeyName].(string)
	user.Picture, _ = session.Values[sessionKeyPicture].(string)
	return user, true
}

// Clear removes the session. Clearing an absent session is a no-op.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := s.store.Get(r, s.name)
	if err != nil && session == nil {
		return nil
	}
	if session.IsNew && len(session.Values) == 0 {
		return nil
	}
	session.Options.MaxAge = -1
	for key := range session.Values {
		delete(session.Values, key)
	}
	return session.Save(r, w)
}
