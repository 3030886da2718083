package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careermatch/internal/api"
	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/server/ratelimit"
	"github.com/jonathan/careermatch/internal/session"
	"github.com/jonathan/careermatch/internal/types"
)

// fakeBackend serves canned matching backend responses and records the
// Authorization header of each call.
func fakeBackend(t *testing.T) (*httptest.Server, *authLog) {
	t.Helper()
	auths := &authLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/me/profile", func(w http.ResponseWriter, r *http.Request) {
		auths.record(r)
		_, _ = w.Write([]byte(`{"id":"u1","name":"Kim","major":"전산학"}`))
	})
	mux.HandleFunc("GET /api/matching", func(w http.ResponseWriter, r *http.Request) {
		auths.record(r)
		_, _ = w.Write([]byte(`{"status":"READY","data":[{"jobId":"j1","title":"Backend Engineer","company":"Acme","score":80,"highlights":["스킬 일치"],"workType":"REMOTE"}]}`))
	})
	mux.HandleFunc("GET /api/courses/by-skills", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"skill":"Backend","title":"Go","url":"https://learn.example.com/go"}]`))
	})
	mux.HandleFunc("GET /api/matching/{id}/explain", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "j1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"jobTitle":"Backend Engineer","score":80,"breakdown":{"skill":80,"accessibility":70,"workType":60},"missingSkills":["Kafka"]}`))
	})
	mux.HandleFunc("GET /api/jobs/board", func(w http.ResponseWriter, r *http.Request) {
		auths.record(r)
		_, _ = w.Write([]byte(`[
			{"id":"b1","title":"A","workType":"ONSITE","viewCount":5,"likeCount":1},
			{"id":"b2","title":"B","workType":"REMOTE","viewCount":9,"likeCount":4},
			{"id":"b3","title":"C","workType":"HYBRID","viewCount":20,"likeCount":4}
		]`))
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)
	return backend, auths
}

type authLog struct {
	mu   sync.Mutex
	seen []string
}

func (a *authLog) record(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, r.Header.Get("Authorization"))
}

func (a *authLog) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.seen...)
}

func newTestServer(t *testing.T, rl *ratelimit.Config, configure ...func(*Options)) (*Server, *authLog) {
	t.Helper()
	backend, auths := fakeBackend(t)
	client, err := api.New(&api.Options{BaseURL: backend.URL})
	require.NoError(t, err)

	opts := Options{
		Client:         client,
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      rl,
		Dashboard:      dashboard.Options{MatchLimit: 20, CourseLimit: 5},
	}
	for _, fn := range configure {
		fn(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s, auths
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s.Handler(), http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestScore(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPost, "/api/presentation/score",
		`{"jobTitle":"Backend Engineer","breakdown":{"skill":80,"accessibility":70,"workType":60}}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, presentation.ModeRoll, resp.Mode)
	assert.Equal(t, presentation.Score{Skill: 79, Accessibility: 62, WorkType: 68}, resp.Scores)

	w = do(t, s.Handler(), http.MethodPost, "/api/presentation/score",
		`{"jobTitle":"Backend Engineer","breakdown":{"skill":80,"accessibility":70,"workType":60},"mode":"blend"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, presentation.Score{Skill: 79, Accessibility: 57, WorkType: 45}, resp.Scores)
}

func TestScore_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPost, "/api/presentation/score", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s.Handler(), http.MethodPost, "/api/presentation/score", `{"jobTitle":"x","mode":"chaos"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown score mode")
}

func TestDashboard(t *testing.T) {
	s, auths := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/dashboard", "", "user-token")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d dashboard.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "Kim", d.Profile.Name)
	assert.Len(t, d.Matches, 1)
	assert.Equal(t, []string{"Backend", "Spring", "API"}, d.Skills)
	assert.Len(t, d.Courses, 1)

	require.NotEmpty(t, auths.all())
	for _, a := range auths.all() {
		assert.Equal(t, "Bearer user-token", a)
	}
}

func TestDashboard_RequiresSession(t *testing.T) {
	s, auths := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, auths.all())
}

func TestExplain(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/matching/j1/explain", "", "user-token")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var v dashboard.ExplainView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "Backend Engineer", v.Title)
	assert.Equal(t, presentation.Score{Skill: 79, Accessibility: 62, WorkType: 68}, v.Scores)
	assert.Equal(t, []string{"Kafka"}, v.MissingSkills)

	w = do(t, s.Handler(), http.MethodGet, "/api/matching/nope/explain", "", "user-token")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoard(t *testing.T) {
	s, auths := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/jobs/board?sort=popular", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var items []BoardItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "b3", items[0].ID)
	assert.Equal(t, "b2", items[1].ID)
	assert.Equal(t, "b1", items[2].ID)
	assert.Equal(t, "하이브리드", items[0].WorkTypeLabel)
	assert.Equal(t, []string{""}, auths.all(), "board works without a session")

	w = do(t, s.Handler(), http.MethodGet, "/api/jobs/board?sort=sideways", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, &ratelimit.Config{
		Enabled: true,
		Rules: []ratelimit.Rule{
			{Path: "/api/presentation/score", Method: http.MethodPost, Limit: 2, Window: time.Minute},
		},
	})

	body := `{"jobTitle":"x"}`
	for i := 0; i < 2; i++ {
		w := do(t, s.Handler(), http.MethodPost, "/api/presentation/score", body, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s.Handler(), http.MethodPost, "/api/presentation/score", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	w = do(t, s.Handler(), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func scoreLimit(limit int) *ratelimit.Config {
	return &ratelimit.Config{
		Enabled: true,
		Rules: []ratelimit.Rule{
			{Path: "/api/presentation/score", Method: http.MethodPost, Limit: limit, Window: time.Minute},
		},
	}
}

// scoreFrom posts a score request from remoteAddr claiming to forward forwardedFor.
func scoreFrom(h http.Handler, remoteAddr, forwardedFor string) int {
	r := httptest.NewRequest(http.MethodPost, "/api/presentation/score", bytes.NewBufferString(`{"jobTitle":"x"}`))
	r.RemoteAddr = remoteAddr
	r.Header.Set("X-Forwarded-For", forwardedFor)
	r.Header.Set("X-Real-IP", forwardedFor)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Code
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s, _ := newTestServer(t, scoreLimit(2))

	throttled := 0
	for i := 0; i < 20; i++ {
		if scoreFrom(s.Handler(), "203.0.113.9:40000", fmt.Sprintf("10.0.0.%d", i+1)) == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 18, throttled, "rotating X-Forwarded-For must not reset the bucket")
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	s, _ := newTestServer(t, scoreLimit(2), func(o *Options) {
		o.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")}
	})

	for i := 0; i < 5; i++ {
		code := scoreFrom(s.Handler(), "192.0.2.10:5000", fmt.Sprintf("10.0.0.%d", i+1))
		assert.Equal(t, http.StatusOK, code, "client %d has its own bucket behind the proxy", i+1)
	}

	assert.Equal(t, http.StatusOK, scoreFrom(s.Handler(), "192.0.2.10:5000", "10.0.0.99"))
	assert.Equal(t, http.StatusOK, scoreFrom(s.Handler(), "192.0.2.10:5000", "10.0.0.99"))
	assert.Equal(t, http.StatusTooManyRequests, scoreFrom(s.Handler(), "192.0.2.10:5000", "10.0.0.99"))
}

func TestBoard_InvalidBackendPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/board", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"","title":"A","workType":"ONSITE","viewCount":1,"likeCount":0}]`))
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	client, err := api.New(&api.Options{BaseURL: backend.URL})
	require.NoError(t, err)
	s, err := New(Options{Client: client})
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodGet, "/api/jobs/board", "", "")
	assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "unexpected response from /api/jobs/board")
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodOptions, "/api/presentation/score", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "sort"}, http.StatusBadRequest},
		{"field", &types.FieldError{Field: "content"}, http.StatusBadRequest},
		{"no session", fmt.Errorf("wrap: %w", session.ErrNoSession), http.StatusUnauthorized},
		{"expired", session.ErrExpired, http.StatusUnauthorized},
		{"backend 401", &api.StatusError{StatusCode: 401}, http.StatusUnauthorized},
		{"backend 404", fmt.Errorf("explain: %w", &api.StatusError{StatusCode: 404}), http.StatusNotFound},
		{"backend 500", &api.StatusError{StatusCode: 500}, http.StatusBadGateway},
		{"decode", &api.DecodeError{Path: "/x", Cause: errors.New("bad")}, http.StatusBadGateway},
		{"decode of invalid item", &api.DecodeError{Path: "/x", Cause: &types.ItemError{Cause: validator.ValidationErrors{}}}, http.StatusBadGateway},
		{"validator", validator.ValidationErrors{}, http.StatusBadRequest},
		{"transport", &api.RequestError{Method: "GET", Path: "/x", Cause: errors.New("refused")}, http.StatusBadGateway},
		{"timeout", &api.RequestError{Method: "GET", Path: "/x", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
