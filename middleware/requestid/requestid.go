// Package requestid provides a middleware that tags every response with
// a request identifier, echoing the client's X-Request-Id when present.
package requestid

import (
	"strconv"
	"time"

	leanhttp "github.com/kaito2/lean-http"
)

// CtxKey is the request-scoped context key under which the identifier is
// stored for downstream handlers.
const CtxKey = "request_id"

// Config represents the configuration for the RequestID middleware.
type Config struct {
	// Header is the header carrying the identifier. Defaults to
	// X-Request-Id.
	Header string
}

// DefaultConfig returns the default configuration for the RequestID
// middleware.
func DefaultConfig() Config {
	return Config{Header: leanhttp.HeaderXRequestID}
}

// New returns a middleware that ensures every response carries a request
// identifier. Missing identifiers are synthesized as "req-<nanos>" from a
// monotonic nanosecond source.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Header == "" {
		cfg.Header = leanhttp.HeaderXRequestID
	}

	start := time.Now()

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			id := r.Header.Get(cfg.Header)
			if id == "" {
				id = "req-" + strconv.FormatInt(time.Since(start).Nanoseconds(), 10)
			}

			resp := next(r.WithCtx(CtxKey, id))
			if resp != nil {
				resp.Set(cfg.Header, id)
			}
			return resp
		}
	}
}
