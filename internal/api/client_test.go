package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careermatch/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	opts.RequestsPerSecond = 0
	if token != "" {
		opts.Tokens = StaticToken(token)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(&Options{BaseURL: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base URL")
}

func TestNew_DefaultsAndTrailingSlash(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = New(&Options{BaseURL: "http://api.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.BaseURL())
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"id":"u1","name":"Kim","major":"전산학"}`))
	}, "tok-123")

	_, err := c.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"name":"Kim"}`))
	}, "")

	_, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

type failingTokens struct{ err error }

func (f failingTokens) AccessToken() (string, error) { return "", f.err }

func TestClient_TokenSourceError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, "")
	sentinel := errors.New("no session")

	_, err := c.WithTokens(failingTokens{err: sentinel}).Profile(context.Background())
	require.ErrorIs(t, err, sentinel)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_WithTokensDoesNotMutateOriginal(t *testing.T) {
	var auths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"Kim"}`))
	}, "")

	_, err := c.WithTokens(StaticToken("abc")).Profile(context.Background())
	require.NoError(t, err)
	_, err = c.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", ""}, auths)
}

func TestClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}, "tok")

	_, err := c.Matching(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "/api/matching", se.Path)
	assert.Equal(t, "token expired", se.Body)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_StatusErrorBodyKeepsWholeRunes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("가", 200)))
	}, "tok")

	_, err := c.Matching(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, utf8.ValidString(se.Body))
	assert.Equal(t, strings.Repeat("가", 170), se.Body)
}

func TestClient_DecodeErrorOnSchemaMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":"not-a-list"}`))
	}, "tok")

	_, err := c.Matching(context.Background())
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "/api/matching", de.Path)
}

func TestClient_DecodeErrorOnMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}, "tok")

	_, err := c.Profile(context.Background())
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestClient_RequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	c, err := New(&Options{BaseURL: base})
	require.NoError(t, err)

	_, err = c.Profile(context.Background())
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.MethodGet, re.Method)
}

func TestClient_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Kim"}`))
	}, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Profile(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Upload(t *testing.T) {
	var filename, content string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = f.Close() }()
		raw, _ := io.ReadAll(f)
		filename, content = hdr.Filename, string(raw)
		_, _ = w.Write([]byte("https://cdn.example.com/p/1.png\n"))
	}, "tok")

	got, err := c.UploadCommunityImage(context.Background(), "1.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p/1.png", got)
	assert.Equal(t, "1.png", filename)
	assert.Equal(t, "PNGDATA", content)
}

func decodeBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(r.Body).Decode(v))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var req types.LoginRequest
		decodeBody(t, r, &req)
		assert.Equal(t, "kim@example.com", req.Email)
		_, _ = w.Write([]byte(`{"accessToken":"jwt-token"}`))
	}, "stale-token")

	token, err := c.Login(context.Background(), "kim@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
}

func TestLogin_InvalidEmailSkipsRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, "")

	_, err := c.Login(context.Background(), "not-an-email", "secret")
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSignup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)
		var req types.SignupRequest
		decodeBody(t, r, &req)
		assert.Equal(t, "longenough", req.Password)
		w.WriteHeader(http.StatusCreated)
	}, "")

	require.NoError(t, c.Signup(context.Background(), "kim@example.com", "longenough"))
	require.Error(t, c.Signup(context.Background(), "kim@example.com", "short"))
}
