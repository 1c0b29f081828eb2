package leanhttp

// HTTP methods recognized by the parser and router.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// allowedMethods is the closed set of verbs accepted on the wire.
// Map lookup is faster than a regex and keeps the set in one place.
var allowedMethods = map[string]struct{}{
	MethodGet: {}, MethodPost: {}, MethodPut: {}, MethodDelete: {},
	MethodPatch: {}, MethodHead: {}, MethodOptions: {},
}

// Common header names.
const (
	HeaderAllow                         = "Allow"
	HeaderAuthorization                 = "Authorization"
	HeaderConnection                    = "Connection"
	HeaderContentLength                 = "Content-Length"
	HeaderContentType                   = "Content-Type"
	HeaderCookie                        = "Cookie"
	HeaderLocation                      = "Location"
	HeaderOrigin                        = "Origin"
	HeaderRetryAfter                    = "Retry-After"
	HeaderSetCookie                     = "Set-Cookie"
	HeaderWWWAuthenticate               = "WWW-Authenticate"
	HeaderXRequestID                    = "X-Request-Id"
	HeaderAccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAccessControlAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAccessControlAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAccessControlMaxAge           = "Access-Control-Max-Age"
)

// Content types used by the canned response constructors.
const (
	MIMETextPlain       = "text/plain; charset=utf-8"
	MIMEApplicationJSON = "application/json; charset=utf-8"
)

// HTTP protocol terminators
var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)
