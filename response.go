package leanhttp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"
)

// Response is a mutable response builder. Headers are kept in insertion
// order; duplicates of the same name serialize as repeated lines.
type Response struct {
	Status int
	Reason string
	Header *Header
	Body   []byte
}

// NewResponse creates a response with the given status and its standard
// reason phrase, with no headers and no body.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Reason: StatusText(status),
		Header: NewHeader(),
	}
}

// Set replaces the header values for name and returns the response for
// chaining.
func (r *Response) Set(name, value string) *Response {
	r.Header.Set(name, value)
	return r
}

// Add appends a header pair, keeping existing values for name.
func (r *Response) Add(name, value string) *Response {
	r.Header.Add(name, value)
	return r
}

// SetBody sets the body bytes and updates Content-Length.
func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	r.Header.Set(HeaderContentLength, strconv.Itoa(len(body)))
	return r
}

// SetCookie appends a Set-Cookie header for c.
func (r *Response) SetCookie(c *Cookie) *Response {
	r.Header.Add(HeaderSetCookie, c.String())
	return r
}

// writeWire serializes the response in wire format: status line, header
// lines in insertion order, a blank line, and the body. When withBody is
// false the head is written unchanged (Content-Length included) and the
// body bytes are withheld, as required for HEAD responses.
func (r *Response) writeWire(w io.Writer, withBody bool) error {
	reason := r.Reason
	if reason == "" {
		reason = StatusText(r.Status)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = append(buf.B, "HTTP/1.1 "...)
	buf.B = strconv.AppendInt(buf.B, int64(r.Status), 10)
	buf.B = append(buf.B, ' ')
	buf.B = append(buf.B, reason...)
	buf.B = append(buf.B, crlf...)

	r.Header.Each(func(name, value string) {
		buf.B = append(buf.B, name...)
		buf.B = append(buf.B, ": "...)
		buf.B = append(buf.B, value...)
		buf.B = append(buf.B, crlf...)
	})
	buf.B = append(buf.B, crlf...)

	if withBody {
		buf.B = append(buf.B, r.Body...)
	}

	_, err := w.Write(buf.B)
	return err
}

// WriteTo serializes the full response to w.
func (r *Response) WriteTo(w io.Writer) error {
	return r.writeWire(w, true)
}

// Text builds a response with the given status and a plain-text body.
func Text(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Set(HeaderContentType, MIMETextPlain)
	resp.SetBody([]byte(body))
	return resp
}

// JSON builds a response with the given status and v marshaled as the
// JSON body. A marshal failure yields a 500 with the error text.
func JSON(status int, v interface{}) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Text(StatusInternalServerError, fmt.Sprintf("json: %v", err))
	}
	resp := NewResponse(status)
	resp.Set(HeaderContentType, MIMEApplicationJSON)
	resp.SetBody(data)
	return resp
}

// Ok builds a 200 response with a plain-text body.
func Ok(body string) *Response {
	return Text(StatusOK, body)
}

// Created builds a 201 response with a plain-text body.
func Created(body string) *Response {
	return Text(StatusCreated, body)
}

// NoContent builds a 204 response with an empty body.
func NoContent() *Response {
	resp := NewResponse(StatusNoContent)
	resp.Set(HeaderContentType, MIMETextPlain)
	resp.SetBody(nil)
	return resp
}

// Redirect builds a redirect response carrying a Location header.
// status should be one of 301, 302, 307 or 308.
func Redirect(status int, location string) *Response {
	resp := Text(status, "")
	resp.Set(HeaderLocation, location)
	return resp
}

// BadRequest builds a 400 response with a short text body.
func BadRequest(body string) *Response {
	if body == "" {
		body = StatusText(StatusBadRequest)
	}
	return Text(StatusBadRequest, body)
}

// NotFound builds a 404 response.
func NotFound() *Response {
	return Text(StatusNotFound, StatusText(StatusNotFound))
}

// Error builds a 500 response with the given text body.
func Error(body string) *Response {
	if body == "" {
		body = StatusText(StatusInternalServerError)
	}
	return Text(StatusInternalServerError, body)
}

// Unavailable builds a 503 response.
func Unavailable() *Response {
	return Text(StatusServiceUnavailable, StatusText(StatusServiceUnavailable))
}

// GatewayTimeout builds a 504 response.
func GatewayTimeout() *Response {
	return Text(StatusGatewayTimeout, StatusText(StatusGatewayTimeout))
}

// TooManyRequests builds a 429 response carrying a Retry-After header
// with the given number of seconds.
func TooManyRequests(retryAfterSeconds int) *Response {
	resp := Text(StatusTooManyRequests, StatusText(StatusTooManyRequests))
	resp.Set(HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	return resp
}

// requestTimeout builds the 408 written when the first read times out.
func requestTimeout() *Response {
	return Text(StatusRequestTimeout, StatusText(StatusRequestTimeout))
}
