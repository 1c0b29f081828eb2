// Package accesslog provides a middleware that logs one line per request
// with method, path, status and elapsed time.
package accesslog

import (
	"time"

	leanhttp "github.com/kaito2/lean-http"
	"github.com/kaito2/lean-http/log"
)

// Config represents the configuration for the AccessLog middleware.
type Config struct {
	// Logger receives the access lines. Defaults to the package logger.
	Logger *log.Logger
}

// DefaultConfig returns the default configuration for the AccessLog
// middleware.
func DefaultConfig() Config {
	return Config{Logger: log.Default()}
}

// New returns a middleware that logs HTTP requests.
// If no config is provided, it uses the default config.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			start := time.Now()
			resp := next(r)
			elapsed := time.Since(start)

			status := 0
			if resp != nil {
				status = resp.Status
			}

			event := cfg.Logger.Info()
			switch {
			case status >= 500:
				event = cfg.Logger.Error()
			case status >= 400:
				event = cfg.Logger.Warn()
			}
			event.Msgf("%s %s %d %dms", r.Method, r.Path, status, elapsed.Milliseconds())

			return resp
		}
	}
}
