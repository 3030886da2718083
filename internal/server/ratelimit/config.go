package ratelimit

import (
	"net/http"
	"time"
)

// Rule limits one endpoint. A Path ending in "/" matches every path below it.
type Rule struct {
	Path   string
	Method string
	// Limit is requests per Window; 0 means unlimited.
	Limit  int
	Window time.Duration
	// Burst defaults to Limit.
	Burst  int
}

func (r *Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

func (r *Rule) perSecond() float64 {
	window := r.Window
	if window <= 0 {
		window = time.Minute
	}
	return float64(r.Limit) / window.Seconds()
}

// defaultKey buckets every request that falls through to the Default rule.
const defaultKey = "*"

// key names the bucket a rule draws from. All paths under a prefix rule
// share it, and so do all unmatched paths.
func (r *Rule) key() string {
	if r.Path != "" {
		return r.Path
	}
	return defaultKey
}

// DefaultRules returns the per-endpoint limits of the BFF.
func DefaultRules() []Rule {
	return []Rule{
		// dashboard fans out to three backend calls
		{Path: "/api/dashboard", Method: http.MethodGet, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/matching/", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/jobs/board", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		// pure computation
		{Path: "/api/presentation/score", Method: http.MethodPost, Limit: 1200, Window: time.Minute, Burst: 100},
	}
}
