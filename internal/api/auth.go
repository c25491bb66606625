package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeWrite allows importing and deleting documents
const ScopeWrite = "write"

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

type subjectKey struct{}

// Subject returns the token subject of an authenticated request
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Authenticator issues and checks HS256 bearer tokens
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates an authenticator signing with secret. Issued
// tokens expire after ttl.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token for subject carrying scopes
func (a *Authenticator) IssueToken(subject string, scopes ...string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": strings.Join(scopes, " "),
		"iat":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken checks the signature and expiry of raw and returns its
// subject and scopes
func (a *Authenticator) ValidateToken(raw string) (string, []string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid token claims", errUnauthorized)
	}
	subject, _ := claims.GetSubject()
	scope, _ := claims["scope"].(string)
	return subject, strings.Fields(scope), nil
}

// Require rejects requests without a bearer token carrying scope
func (a *Authenticator) Require(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				renderError(w, fmt.Errorf("%w: missing bearer token", errUnauthorized))
				return
			}
			subject, scopes, err := a.ValidateToken(raw)
			if err != nil {
				renderError(w, err)
				return
			}
			if !hasScope(scopes, scope) {
				renderError(w, fmt.Errorf("%w: token lacks the %s scope", errForbidden, scope))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
