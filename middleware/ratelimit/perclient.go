package ratelimit

import (
	"net"
	"sync"
	"time"

	leanhttp "github.com/kaito2/lean-http"
	"golang.org/x/time/rate"
)

// PerClientConfig holds the configuration for the per-client limiter.
type PerClientConfig struct {
	// Requests is the sustained number of requests per Duration.
	Requests int

	// Burst is the burst size per client.
	Burst int

	// Duration is the averaging window, e.g. one minute.
	Duration time.Duration

	// ExpiresIn is how long an idle client entry is kept before cleanup.
	ExpiresIn time.Duration
}

// DefaultPerClientConfig returns the default per-client configuration.
func DefaultPerClientConfig() PerClientConfig {
	return PerClientConfig{
		Requests:  60,
		Burst:     5,
		Duration:  time.Minute,
		ExpiresIn: time.Hour,
	}
}

// visitor is a client with a rate limiter and its last activity time.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func (t *visitorTable) get(ip string, cfg PerClientConfig) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, exists := t.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Every(cfg.Duration/time.Duration(cfg.Requests)), cfg.Burst)
		t.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (t *visitorTable) cleanupLoop(expiresIn time.Duration) {
	for {
		time.Sleep(time.Minute)
		t.mu.Lock()
		for ip, v := range t.visitors {
			if time.Since(v.lastSeen) > expiresIn {
				delete(t.visitors, ip)
			}
		}
		t.mu.Unlock()
	}
}

// NewPerClient returns a rate limiting middleware that maintains one
// token bucket per client IP. Stale entries are swept by a background
// goroutine.
func NewPerClient(config ...PerClientConfig) leanhttp.Middleware {
	cfg := DefaultPerClientConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	table := &visitorTable{visitors: make(map[string]*visitor)}
	go table.cleanupLoop(cfg.ExpiresIn)

	retryAfter := int(cfg.Duration / time.Second)

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			if !table.get(ip, cfg).Allow() {
				return leanhttp.TooManyRequests(retryAfter)
			}
			return next(r)
		}
	}
}
