// Package session provides cookie-keyed sessions persisted through a
// leanhttp.Storage backend.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"

	leanhttp "github.com/kaito2/lean-http"
	"github.com/kaito2/lean-http/internal/memory"
)

// CtxKey is the request-scoped context key carrying the session ID.
const CtxKey = "session_id"

// Config represents the configuration for the session middleware.
type Config struct {
	// Storage persists session data. Defaults to an in-memory store.
	Storage leanhttp.Storage

	// CookieName is the name of the session cookie.
	CookieName string

	// TTL is how long a session lives without activity.
	TTL time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName: "session_id",
		TTL:        24 * time.Hour,
	}
}

// Manager owns session persistence. Its Middleware ensures every request
// carries a session ID; handlers read and write values through Get and
// Set using the request.
type Manager struct {
	store      leanhttp.Storage
	cookieName string
	ttl        time.Duration
}

// NewManager creates a session manager.
func NewManager(config ...Config) *Manager {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session_id"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Storage == nil {
		cfg.Storage = memory.New(time.Minute)
	}
	return &Manager{
		store:      cfg.Storage,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
	}
}

// Middleware attaches the session ID to the request context, creating a
// fresh session (and Set-Cookie) when the client has none.
func (m *Manager) Middleware() leanhttp.Middleware {
	return func(next leanhttp.Handler) leanhttp.Handler {
		return func(r *leanhttp.Request) *leanhttp.Response {
			id := r.Cookie(m.cookieName)
			created := false
			if id == "" {
				id = newSessionID()
				created = true
			}

			resp := next(r.WithCtx(CtxKey, id))

			if created && resp != nil {
				resp.SetCookie(&leanhttp.Cookie{
					Name:     m.cookieName,
					Value:    id,
					MaxAge:   int(m.ttl / time.Second),
					HTTPOnly: true,
				})
			}
			return resp
		}
	}
}

// Get returns the session value stored under key for the request's
// session, or "".
func (m *Manager) Get(r *leanhttp.Request, key string) string {
	values, err := m.load(r)
	if err != nil {
		return ""
	}
	return values[key]
}

// Set stores a session value for the request's session.
func (m *Manager) Set(r *leanhttp.Request, key, value string) error {
	values, err := m.load(r)
	if err != nil {
		return err
	}
	values[key] = value
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return m.store.Set(r.Context(), r.Ctx(CtxKey), data, m.ttl)
}

// Destroy removes the request's session from the store.
func (m *Manager) Destroy(r *leanhttp.Request) error {
	return m.store.Delete(r.Context(), r.Ctx(CtxKey))
}

func (m *Manager) load(r *leanhttp.Request) (map[string]string, error) {
	values := map[string]string{}
	data, err := m.store.Get(r.Context(), r.Ctx(CtxKey))
	if err == leanhttp.ErrKeyNotFound {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// newSessionID returns 32 hex characters of randomness.
func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
