// Package ratelimit provides per-IP token-bucket rate limiting for the
// public storefront endpoints.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Defaults for the per-IP limiter.
const (
	DefaultRate            = 20.0
	DefaultBurst           = 40
	DefaultCleanupInterval = time.Minute
	DefaultEntryTTL        = 5 * time.Minute
)

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// Config configures a Limiter.
type Config struct {
	Rate            float64       // tokens per second
	Burst           int           // maximum bucket capacity
	CleanupInterval time.Duration // how often stale entries are removed
	EntryTTL        time.Duration // how long an idle entry lives
}

// Limiter rate-limits requests per client IP. Buckets for idle IPs are
// cleaned up by a background goroutine; call Stop to end it.
type Limiter struct {
	rate    float64
	burst   int
	ttl     time.Duration
	mu       sync.Mutex
	buckets  map[string]*bucket
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Limiter and starts its cleanup goroutine.
func New(cfg Config) *Limiter {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = DefaultEntryTTL
	}

	l := &Limiter{
		rate:    cfg.Rate,
		burst:   cfg.Burst,
		ttl:     cfg.EntryTTL,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop(cfg.CleanupInterval)
	return l
}

// Allow reports whether a request from ip may proceed, and how many tokens
// remain.
func (l *Limiter) Allow(ip string) (allowed bool, remaining int) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastUpdate: now}
		l.buckets[ip] = b
	}

	b.tokens += now.Sub(b.lastUpdate).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastUpdate = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Stopped reports whether Stop has been called.
func (l *Limiter) Stopped() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.ttl)
			l.mu.Lock()
			for ip, b := range l.buckets {
				if b.lastUpdate.Before(cutoff) {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// clientIP extracts the client address from a request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces the limiter on every request. A nil limiter passes
// through.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining := l.Allow(clientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","message":"Too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
