package leanhttp

import (
	"strconv"
	"strings"
)

// Cookie represents an HTTP cookie as sent in the Set-Cookie header of an
// HTTP response.
type Cookie struct {
	Name     string
	Value    string
	Path     string // defaults to "/" when empty
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// String returns the serialized cookie as it would appear in the
// Set-Cookie header. Attributes are appended in a fixed order: Path,
// Domain, Max-Age, Secure, HttpOnly, SameSite.
func (c *Cookie) String() string {
	var b strings.Builder

	b.WriteString(c.Name)
	b.WriteString("=")
	b.WriteString(c.Value)

	path := c.Path
	if path == "" {
		path = "/"
	}
	b.WriteString("; Path=")
	b.WriteString(path)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}

	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	}

	if c.Secure {
		b.WriteString("; Secure")
	}

	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}

	if c.SameSite != "" {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite)
	}

	return b.String()
}

// parseCookieValue scans a Cookie request header ("name=value; name=value")
// for the first occurrence of name and returns its value, which is
// everything after the first "=". Malformed fragments are skipped.
func parseCookieValue(cookieHeader, name string) (string, bool) {
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}
