// Package recoverer provides a middleware that converts handler panics
// into 500 responses instead of dead connections.
package recoverer

import (
	"fmt"

	leanhttp "github.com/kaito2/lean-http"
	"github.com/kaito2/lean-http/log"
)

// Config represents the configuration for the Recoverer middleware.
type Config struct {
	// Logger receives a record of each recovered failure.
	Logger *log.Logger
}

// DefaultConfig returns the default configuration for the Recoverer
// middleware.
func DefaultConfig() Config {
	return Config{Logger: log.Default()}
}

// New returns a middleware that recovers panics from downstream handlers.
// A panic with an *leanhttp.HttpError value is answered with its status
// code and message; anything else becomes a 500 carrying the panic text.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) (resp *leanhttp.Response) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if httpErr, ok := rec.(*leanhttp.HttpError); ok {
					cfg.Logger.Error().Err(httpErr).Msgf("request failed: %s %s", r.Method, r.Path)
					resp = leanhttp.Text(httpErr.Code, httpErr.Message)
					return
				}
				cfg.Logger.Error().Msgf("panic recovered: %v (%s %s)", rec, r.Method, r.Path)
				resp = leanhttp.Error(fmt.Sprintf("%v", rec))
			}()
			return next(r)
		}
	}
}
