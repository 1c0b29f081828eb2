package leanhttp

// Handler turns a request into a response. The router fills in the
// request's Params before the handler runs.
type Handler func(r *Request) *Response

// Middleware wraps a downstream handler and returns the wrapped handler.
// Composition is strict functional nesting: the rightmost middleware in a
// router's list wraps the handler first, so the leftmost runs first on
// the way in.
type Middleware func(next Handler) Handler

// chain composes middlewares around h.
func chain(middlewares []Middleware, h Handler) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
