// Package basicauth provides an HTTP Basic Authentication middleware.
package basicauth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	leanhttp "github.com/kaito2/lean-http"
)

// Config represents the configuration for basic authentication.
type Config struct {
	// Username required for basic authentication.
	Username string

	// Password required for basic authentication.
	Password string

	// Realm is announced in the WWW-Authenticate challenge.
	Realm string
}

// DefaultConfig returns a Config with a placeholder credential pair.
func DefaultConfig() Config {
	return Config{
		Username: "example",
		Password: "example",
		Realm:    "Restricted",
	}
}

// New returns a middleware enforcing Basic Authentication. Requests
// without valid credentials are answered with 401 and a challenge.
// Credential comparison is constant-time.
func New(config ...Config) leanhttp.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			username, password, ok := credentials(r.Header.Get(leanhttp.HeaderAuthorization))
			if !ok {
				return challenge(cfg.Realm)
			}

			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
			if !userOK || !passOK {
				return challenge(cfg.Realm)
			}

			return next(r.WithCtx("auth_user", username))
		}
	}
}

// credentials decodes "Basic <base64(username:password)>".
func credentials(authHeader string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
	if err != nil {
		return "", "", false
	}

	cred := string(decoded)
	sep := strings.IndexByte(cred, ':')
	if sep == -1 {
		return "", "", false
	}
	return cred[:sep], cred[sep+1:], true
}

func challenge(realm string) *leanhttp.Response {
	resp := leanhttp.Text(leanhttp.StatusUnauthorized, leanhttp.StatusText(leanhttp.StatusUnauthorized))
	resp.Set(leanhttp.HeaderWWWAuthenticate, `Basic realm="`+realm+`"`)
	return resp
}
