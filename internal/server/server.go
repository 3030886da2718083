package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jonathan/careermatch/internal/api"
	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/presentation"
	authmw "github.com/jonathan/careermatch/internal/server/middleware"
	"github.com/jonathan/careermatch/internal/server/ratelimit"
	"github.com/jonathan/careermatch/internal/session"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      *ratelimit.Config
	// TrustedProxies may set the client IP via X-Forwarded-For or
	// X-Real-IP. Everyone else is identified by the socket address.
	TrustedProxies []netip.Prefix
	Client         *api.Client
	Dashboard      dashboard.Options
	Normalizer     presentation.Normalizer
	Logger         *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	client     *api.Client
	dashboard  dashboard.Options
	normalizer presentation.Normalizer
	limiter    *ratelimit.Limiter
	proxies    []netip.Prefix
	log        *slog.Logger
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("server needs a backend client")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		client:     opts.Client,
		dashboard:  opts.Dashboard,
		normalizer: opts.Normalizer,
		limiter:    ratelimit.NewLimiter(opts.RateLimit),
		proxies:    opts.TrustedProxies,
		log:        logger,
	}
	s.dashboard.Normalizer = opts.Normalizer
	if s.dashboard.Logger == nil {
		s.dashboard.Logger = logger
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(opts.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, s.withRealIP, s.withLogging, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Post("/api/presentation/score", s.handleScore)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession)
		r.Get("/api/dashboard", s.handleDashboard)
		r.Get("/api/matching/{jobID}/explain", s.handleExplain)
	})
	r.With(authmw.OptionalSession).Get("/api/jobs/board", s.handleBoard)

	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.limiter.Run(sweepCtx, 5*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped", "rate_limit_buckets", s.limiter.Len())
	return nil
}

// Start serves until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// backend returns a client that forwards the caller's session.
func (s *Server) backend(r *http.Request) *api.Client {
	sess, ok := authmw.SessionFrom(r.Context())
	if !ok {
		return s.client.WithTokens(nil)
	}
	return s.client.WithTokens(session.NewManager(session.NewMemoryStore(sess)))
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !info.Allowed {
			retry := int(math.Ceil(info.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.log.Warn("rate limit exceeded", "client", clientID(r), "path", r.URL.Path, "limit", info.Limit)
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start))
	})
}

// withRealIP applies middleware.RealIP to requests from trusted proxies.
func (s *Server) withRealIP(next http.Handler) http.Handler {
	realIP := middleware.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.fromTrustedProxy(r) {
			realIP.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) fromTrustedProxy(r *http.Request) bool {
	if len(s.proxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(clientID(r))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientID identifies the caller by IP. Forwarding headers only count
// when withRealIP trusted the peer.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	s.errorResponse(w, status, err.Error())
}
