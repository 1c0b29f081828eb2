// Package timeout provides a middleware that bounds how long a handler
// may take to answer.
package timeout

import (
	"context"
	"fmt"
	"time"

	leanhttp "github.com/kaito2/lean-http"
)

// Config represents the configuration for the Timeout middleware.
type Config struct {
	// Timeout is the deadline for the downstream handler.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration: 30 seconds.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second}
}

// New returns a middleware that runs the downstream handler in its own
// goroutine and answers 504 when the deadline elapses first. The
// request's context is canceled on timeout so cooperating handlers can
// stop early; handlers that ignore it run to completion into the void.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)

			done := make(chan *leanhttp.Response, 1)
			go func() {
				defer func() {
					if rec := recover(); rec != nil {
						done <- leanhttp.Error(fmt.Sprintf("%v", rec))
					}
				}()
				done <- next(r.WithContext(ctx))
			}()

			select {
			case resp := <-done:
				cancel()
				return resp
			case <-ctx.Done():
				cancel()
				return leanhttp.GatewayTimeout()
			}
		}
	}
}
