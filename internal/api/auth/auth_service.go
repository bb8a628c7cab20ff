package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cache "github.com/patrickmn/go-cache"

	"github.com/jdelgado/geomapa/internal/api"
	"github.com/jdelgado/geomapa/internal/types"
)

const (
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	jwksCacheKey = "google_jwks"
	jwksCacheTTL = time.Hour
)

var _ TokenVerifier = (*GoogleVerifier)(nil)

// TokenVerifier turns an opaque identity token into a verified claim.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*types.GoogleClaims, error)
}

// GoogleVerifier validates Google ID tokens against Google's published
// RSA keys, checking signature, expiry, issuer and audience.
type GoogleVerifier struct {
	logger     *slog.Logger
	clientID   string
	jwksURL    string
	httpClient *http.Client
	keys       *cache.Cache
}

func NewGoogleVerifier(clientID string, logger *slog.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		logger:     logger,
		clientID:   clientID,
		jwksURL:    googleJWKSURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       cache.New(jwksCacheTTL, 2*jwksCacheTTL),
	}
}

// Verify parses and validates the token. Failures map to ErrInvalidToken
// except a key-fetch deadline, which maps to ErrExternalTimeout so the
// caller can tell a bad token from an unreachable provider.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*types.GoogleClaims, error) {
	claims := &types.GoogleClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, api.ErrExternalTimeout) {
			return nil, fmt.Errorf("%w: fetching signing keys: %v", api.ErrExternalTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, api.ErrInvalidToken
	}
	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return nil, fmt.Errorf("%w: unexpected issuer %q", api.ErrInvalidToken, claims.Issuer)
	}
	return claims, nil
}

func (v *GoogleVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		keys, err := v.signingKeys(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			// Google rotates keys; a fresh fetch covers the window where the
			// cached set predates the rotation.
			keys, err = v.fetchSigningKeys(ctx)
			if err != nil {
				return nil, err
			}
			if key, ok = keys[kid]; !ok {
				return nil, fmt.Errorf("no signing key for kid %q", kid)
			}
		}
		return key, nil
	}
}

func (v *GoogleVerifier) signingKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	if cached, found := v.keys.Get(jwksCacheKey); found {
		return cached.(map[string]*rsa.PublicKey), nil
	}
	return v.fetchSigningKeys(ctx)
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

func (v *GoogleVerifier) fetchSigningKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", api.ErrExternalTimeout, err)
		}
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAPublicKey(k)
		if err != nil {
			v.logger.Warn("Skipping unparsable JWKS key", slog.String("kid", k.Kid), slog.Any("error", err))
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("JWKS response contained no usable RSA keys")
	}

	v.keys.Set(jwksCacheKey, keys, cache.DefaultExpiration)
	return keys, nil
}

func parseRSAPublicKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
