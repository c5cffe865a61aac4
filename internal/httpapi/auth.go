package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const subjectKey contextKey = "subject"

// SubjectFromContext returns the authenticated user id, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok
}

// Authenticator verifies HS256 bearer tokens. An empty secret disables
// verification so local development works without issuing tokens.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator builds a bearer-token verifier for the given secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// IssueToken signs a token for the given user id. Used by tests and the
// development token endpoint.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := a.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// authorize validates the Authorization header and returns the request with
// the token subject in its context. Writes the error response itself on
// failure.
func (a *Authenticator) authorize(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if len(a.secret) == 0 {
		return r, true
	}
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return r, false
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return a.now() }),
	)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid bearer token")
		return r, false
	}
	if claims.Subject == "" {
		writeError(w, http.StatusUnauthorized, "token subject is required")
		return r, false
	}
	return r.WithContext(context.WithValue(r.Context(), subjectKey, claims.Subject)), true
}
