package types

import "github.com/golang-jwt/jwt/v5"

// GoogleClaims is the verified set of identity attributes carried by a
// Google ID token. The subject is the stable Google account id.
type GoogleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// SessionUser is the per-session identity snapshot, sourced verbatim from
// the verified claim at login and held only for the session's lifetime.
type SessionUser struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}
