// Package middleware provides HTTP middleware for the BFF.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/careermatch/internal/session"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const sessionKey ContextKey = "session"

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireSession turns the caller's bearer token into a per-request session.
// The token is not verified here; the backend rejects bad tokens when the
// session is forwarded. Missing or already expired tokens get a 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(r)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// OptionalSession attaches a session when the caller sent a usable token and
// passes the request through either way.
func OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := sessionFrom(r); ok {
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) (*session.Session, bool) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, false
	}
	s, err := session.New(token, "")
	if err != nil {
		return nil, false
	}
	if s.Expired(time.Now()) {
		return nil, false
	}
	return s, true
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session attached by RequireSession or OptionalSession.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="careermatch"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}
