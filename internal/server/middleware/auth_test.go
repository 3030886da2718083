package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "kim@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer abc", want: "abc", ok: true},
		{header: "  Bearer   abc  ", want: "abc", ok: true},
		{header: "Basic abc"},
		{header: "Bearer"},
		{header: "Bearer a b"},
		{header: ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := BearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestRequireSession(t *testing.T) {
	var seen string
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		require.True(t, ok)
		seen = s.Email
		w.WriteHeader(http.StatusNoContent)
	}))

	token := tokenExpiringAt(t, time.Now().Add(time.Hour))
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "kim@example.com", seen)
}

func TestRequireSession_Rejects(t *testing.T) {
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not run")
	}))

	for name, header := range map[string]string{
		"missing": "",
		"basic":   "Basic dXNlcjpwdw==",
		"expired": "Bearer " + tokenExpiringAt(t, time.Now().Add(-time.Minute)),
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestOptionalSession(t *testing.T) {
	var has bool
	handler := OptionalSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = SessionFrom(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/board", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.False(t, has)

	r.Header.Set("Authorization", "Bearer opaque-token")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, has)
}
