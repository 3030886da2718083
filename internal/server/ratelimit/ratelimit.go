// Package ratelimit throttles BFF clients with one token bucket per client
// and endpoint rule.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket refills at rate tokens per second up to capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		last:     now,
	}
}

// take refills the bucket up to now and consumes one token if available.
// It reports the tokens left and how long until the next token arrives.
func (b *bucket) take(now time.Time) (ok bool, remaining int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.rate)
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	return false, 0, wait
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to requests no rule matches.
	Default Rule
	Rules   []Rule
	// IdleTTL is how long an unused bucket survives a Sweep.
	IdleTTL time.Duration
}

// DefaultConfig limits each client to perMinute requests on unmatched
// routes. A negative perMinute disables limiting.
func DefaultConfig(perMinute int) *Config {
	if perMinute < 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled: true,
		Default: Rule{Limit: perMinute, Window: time.Minute, Burst: max(1, perMinute/10)},
		Rules:   DefaultRules(),
		IdleTTL: time.Hour,
	}
}

type entry struct {
	b        *bucket
	lastSeen time.Time
}

// Limiter tracks a bucket per client and rule.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*entry
}

// NewLimiter creates a limiter. A nil config disables limiting.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Limiter{cfg: *cfg, now: time.Now, buckets: make(map[string]*entry)}
}

// Allow reports whether clientID may call method on path now.
func (l *Limiter) Allow(clientID, path, method string) Info {
	if !l.cfg.Enabled {
		return Info{Allowed: true}
	}

	rule := Match(path, method, l.cfg.Rules)
	if rule == nil {
		rule = &l.cfg.Default
	}
	if rule.Limit <= 0 {
		return Info{Allowed: true}
	}

	key := clientID + " " + method + " " + rule.key()
	now := l.now()

	l.mu.Lock()
	e, ok := l.buckets[key]
	if !ok {
		e = &entry{b: newBucket(rule.burst(), rule.perSecond(), now)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	allowed, remaining, wait := e.b.take(now)
	return Info{
		Allowed:    allowed,
		Limit:      rule.Limit,
		Remaining:  remaining,
		RetryAfter: wait,
	}
}

// Sweep drops buckets idle for longer than IdleTTL and returns how many
// were removed.
func (l *Limiter) Sweep() int {
	if l.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.cfg.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
