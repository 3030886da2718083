// Package api is the client for the job matching backend's REST API.
//
// Every call carries a JSON content type, a fresh X-Request-ID and, when the
// client has a token source with a live session, a bearer token. Failures
// are returned as *StatusError, *DecodeError or *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/types"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8090"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// TokenSource supplies the bearer token for a request. An empty token means
// the request is sent without an Authorization header.
type TokenSource interface {
	AccessToken() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// AccessToken returns the token.
func (t StaticToken) AccessToken() (string, error) {
	return string(t), nil
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            *slog.Logger
	Tokens            TokenSource
}

// DefaultOptions returns sensible defaults for talking to a local backend.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// Client talks to the backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
	tokens  TokenSource
}

// New creates a Client. A nil opts uses DefaultOptions.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		base:    base,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger,
		tokens:  opts.Tokens,
	}, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// WithTokens returns a copy of c that authenticates with ts. The copy shares
// the HTTP client and the rate limiter.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	public      bool
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Method: req.method, Path: req.path, Message: "rate limiter", Cause: err}
	}

	target := c.base.String() + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, &RequestError{Method: req.method, Path: req.path, Message: "failed to create request", Cause: err}
	}

	contentType := req.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	if !req.public && c.tokens != nil {
		token, err := c.tokens.AccessToken()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug("backend request failed",
			"method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return nil, &RequestError{Method: req.method, Path: req.path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: req.method, Path: req.path, Message: "failed to read response body", Cause: err}
	}

	c.log.Debug("backend request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := truncateBody(strings.TrimSpace(string(body)))
		return nil, &StatusError{Method: req.method, Path: req.path, StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

// truncateBody cuts text to maxErrorBody bytes without splitting a rune.
func truncateBody(text string) string {
	if len(text) <= maxErrorBody {
		return text
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// getJSON fetches path and decodes it into out after checking it against
// the named response schema.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, schema string, out any) error {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decode(path, body, schema, out)
}

// sendJSON marshals in as the request body. When out is non-nil the response
// is decoded into it.
func (c *Client) sendJSON(ctx context.Context, method, path string, in any, schema string, out any, public bool) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	resp, err := c.do(ctx, request{method: method, path: path, body: body, public: public})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(path, resp, schema, out)
}

// upload posts a single file as the multipart field "file".
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
}

func decode(path string, body []byte, schema string, out any) error {
	if schema != "" {
		if err := schemas.Validate(schema, body); err != nil {
			return &DecodeError{Path: path, Cause: err}
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Path: path, Cause: err}
	}
	if v, ok := out.(types.Validator); ok {
		if err := v.Validate(); err != nil {
			return &DecodeError{Path: path, Cause: err}
		}
	}
	return nil
}
