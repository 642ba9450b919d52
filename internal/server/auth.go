package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"

	"resumeforge/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// anonymousOwner owns every resume when authentication is disabled
const anonymousOwner = "anonymous"

type ownerKey struct{}

// OwnerFromContext returns the authenticated owner of a request
func OwnerFromContext(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerKey{}).(string); ok && owner != "" {
		return owner
	}
	return anonymousOwner
}

func withOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// Authenticator checks API keys and HMAC-signed bearer tokens. The key set
// can be replaced while the server runs.
type Authenticator struct {
	mu        sync.RWMutex
	apiKeys   map[string]bool
	jwtSecret []byte
}

func NewAuthenticator(apiKeys []string, jwtSecret string) *Authenticator {
	a := &Authenticator{jwtSecret: []byte(jwtSecret)}
	a.SetAPIKeys(apiKeys)
	return a
}

// SetAPIKeys replaces the accepted API keys
func (a *Authenticator) SetAPIKeys(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			m[k] = true
		}
	}
	a.mu.Lock()
	a.apiKeys = m
	a.mu.Unlock()
}

// KeyCount returns how many API keys are accepted
func (a *Authenticator) KeyCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.apiKeys)
}

// JWTEnabled reports whether bearer tokens are verified as JWTs
func (a *Authenticator) JWTEnabled() bool {
	return len(a.jwtSecret) > 0
}

// Enabled reports whether requests need credentials at all
func (a *Authenticator) Enabled() bool {
	return a.KeyCount() > 0 || a.JWTEnabled()
}

func (a *Authenticator) validKey(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiKeys[key]
}

// Authenticate resolves the owner of r. API key callers are identified by a
// hash of their key; JWT callers by the token subject.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	if !a.Enabled() {
		return anonymousOwner, nil
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		if a.validKey(key) {
			return keyOwner(key), nil
		}
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput, "invalid API key", nil)
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingField,
			"X-API-Key header or Authorization Bearer token required", nil)
	}

	if a.validKey(token) {
		return keyOwner(token), nil
	}
	if !a.JWTEnabled() {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput, "invalid API key", nil)
	}
	return a.verifyToken(token)
}

func (a *Authenticator) verifyToken(token string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims jwt.RegisteredClaims
	tok, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		msg := "invalid bearer token"
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			msg = "bearer token expired"
		}
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput, msg, err)
	}
	if claims.Subject == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingField, "bearer token has no subject", nil)
	}
	return claims.Subject, nil
}

// keyOwner identifies an API key caller without keeping the key itself
func keyOwner(key string) string {
	return "key:" + keyFingerprint(key)
}

func keyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
