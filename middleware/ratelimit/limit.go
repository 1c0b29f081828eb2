// Package ratelimit provides request throttling middlewares: a fixed
// window counter shared by all clients, and a per-client token bucket.
package ratelimit

import (
	"sync"
	"time"

	leanhttp "github.com/kaito2/lean-http"
)

// Config holds the configuration for the fixed-window limiter.
type Config struct {
	// Max is the number of requests admitted per window.
	Max int

	// Window is the length of the fixed window.
	Window time.Duration
}

// DefaultConfig returns the default configuration: 60 requests per minute.
func DefaultConfig() Config {
	return Config{
		Max:    60,
		Window: time.Minute,
	}
}

// window is the shared fixed-window state of one limiter instance.
// It is hit concurrently from every connection goroutine.
type window struct {
	mu    sync.Mutex
	count int
	start time.Time
}

// New returns a fixed-window rate limiting middleware. The counter is
// global to the middleware instance; when the window's quota is spent,
// requests are answered with 429 and a Retry-After of the window length
// in seconds.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	w := &window{start: time.Now()}
	retryAfter := int(cfg.Window / time.Second)

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			now := time.Now()

			w.mu.Lock()
			if now.Sub(w.start) >= cfg.Window {
				w.count = 0
				w.start = now
			}
			if w.count >= cfg.Max {
				w.mu.Unlock()
				return leanhttp.TooManyRequests(retryAfter)
			}
			w.count++
			w.mu.Unlock()

			return next(r)
		}
	}
}
