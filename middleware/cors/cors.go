// Package cors provides a middleware implementing Cross-Origin Resource
// Sharing, including preflight short-circuiting.
package cors

import (
	"strconv"
	"strings"

	leanhttp "github.com/kaito2/lean-http"
)

// Config represents the configuration for the CORS middleware.
type Config struct {
	// AllowOrigins is a comma-separated list of origins a cross-domain
	// request can be executed from. The special "*" value allows all
	// origins. Default is "*".
	AllowOrigins string

	// AllowMethods is a comma-separated list of methods the client is
	// allowed to use with cross-domain requests.
	AllowMethods string

	// AllowHeaders is a comma-separated list of non-simple headers the
	// client is allowed to use with cross-domain requests.
	AllowHeaders string

	// AllowCredentials indicates whether the request can include user
	// credentials like cookies or HTTP authentication.
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) the results of a preflight
	// request can be cached. Zero means the header is omitted.
	MaxAge int
}

// DefaultConfig returns the default configuration for the CORS middleware.
func DefaultConfig() Config {
	return Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			leanhttp.MethodGet,
			leanhttp.MethodPost,
			leanhttp.MethodPut,
			leanhttp.MethodDelete,
			leanhttp.MethodPatch,
			leanhttp.MethodHead,
			leanhttp.MethodOptions,
		}, ","),
	}
}

// New returns a middleware that handles CORS.
// Preflight OPTIONS requests short-circuit with 204 and the preflight
// headers; all other requests run downstream and get the origin decision
// appended to the response.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			if r.Method == leanhttp.MethodOptions {
				resp := leanhttp.NoContent()
				resp.Set(leanhttp.HeaderAccessControlAllowMethods, cfg.AllowMethods)
				if cfg.AllowHeaders != "" {
					resp.Set(leanhttp.HeaderAccessControlAllowHeaders, cfg.AllowHeaders)
				}
				if cfg.MaxAge > 0 {
					resp.Set(leanhttp.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
				}
				applyOrigin(cfg, r, resp)
				return resp
			}

			resp := next(r)
			if resp != nil {
				applyOrigin(cfg, r, resp)
			}
			return resp
		}
	}
}

// applyOrigin writes the origin decision: "*" when any origin is allowed,
// the echoed request Origin when it is in the allow list, nothing
// otherwise.
func applyOrigin(cfg Config, r *leanhttp.Request, resp *leanhttp.Response) {
	allowOrigin := ""
	if cfg.AllowOrigins == "*" {
		allowOrigin = "*"
	} else {
		origin := r.Header.Get(leanhttp.HeaderOrigin)
		for _, o := range strings.Split(cfg.AllowOrigins, ",") {
			o = strings.TrimSpace(o)
			if o == "*" {
				allowOrigin = "*"
				break
			}
			if o != "" && o == origin {
				allowOrigin = origin
			}
		}
	}

	if allowOrigin != "" {
		resp.Set(leanhttp.HeaderAccessControlAllowOrigin, allowOrigin)
	}
	if cfg.AllowCredentials {
		resp.Set(leanhttp.HeaderAccessControlAllowCredentials, "true")
	}
}
