package leanhttp

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedRequest is returned for any request the parser rejects:
// framing errors, unknown methods, oversized declarations, path traversal.
// Callers answer all of them with a single 400.
var ErrMalformedRequest = errors.New("malformed request")

// parserConfig bounds what the parser will accept.
type parserConfig struct {
	maxHeaderSize int
	maxBodySize   int
}

// parseRequest parses one complete HTTP/1.1 request from buf. The buffer
// must hold the full head and exactly Content-Length bytes of body; the
// connection read loop is responsible for having read enough.
func parseRequest(buf []byte, cfg parserConfig) (*Request, error) {
	headerEnd := bytes.Index(buf, crlfcrlf)
	if headerEnd == -1 || headerEnd > cfg.maxHeaderSize {
		return nil, ErrMalformedRequest
	}

	lines := strings.Split(string(buf[:headerEnd]), "\r\n")
	if len(lines) < 1 {
		return nil, ErrMalformedRequest
	}

	method, target, proto, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	rawPath := target
	rawQuery := ""
	if idx := strings.IndexByte(target, '?'); idx != -1 {
		rawPath = target[:idx]
		rawQuery = target[idx+1:]
	}

	path, ok := normalizePath(decodePercent(rawPath))
	if !ok {
		return nil, ErrMalformedRequest
	}

	header := NewHeader()
	for _, line := range lines[1:] {
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		header.Add(name, value)
	}

	contentLength, err := contentLengthOf(header)
	if err != nil {
		return nil, err
	}
	if contentLength > cfg.maxBodySize {
		return nil, ErrMalformedRequest
	}

	bodyStart := headerEnd + len(crlfcrlf)
	if len(buf) < bodyStart+contentLength {
		return nil, ErrMalformedRequest
	}
	body := buf[bodyStart : bodyStart+contentLength]

	return &Request{
		Method: method,
		Path:   path,
		Proto:  proto,
		Header: header,
		Body:   body,
		Params: map[string]string{},
		Query:  parseQuery(rawQuery),
	}, nil
}

// parseRequestLine splits "METHOD SP target SP version" into its three
// tokens. The method must be a recognized verb; the version token is
// required but otherwise not validated.
func parseRequestLine(line string) (method, target, proto string, err error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", ErrMalformedRequest
	}
	method, target, proto = parts[0], parts[1], parts[2]
	if _, ok := allowedMethods[method]; !ok {
		return "", "", "", ErrMalformedRequest
	}
	if target == "" || proto == "" {
		return "", "", "", ErrMalformedRequest
	}
	return method, target, proto, nil
}

// parseHeaderLine splits a header line on the first colon and trims
// whitespace around the value. Name casing is preserved.
func parseHeaderLine(line string) (name, value string, err error) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", ErrMalformedRequest
	}
	return line[:idx], strings.Trim(line[idx+1:], " \t"), nil
}

// contentLengthOf extracts the body length declared by the headers.
// Exactly zero or one Content-Length header is allowed; its value must be
// a non-negative integer. Missing means zero.
func contentLengthOf(h *Header) (int, error) {
	values := h.Values(HeaderContentLength)
	if len(values) == 0 {
		return 0, nil
	}
	if len(values) > 1 {
		return 0, ErrMalformedRequest
	}
	n, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil || n < 0 {
		return 0, ErrMalformedRequest
	}
	return n, nil
}

// decodePercent resolves %HH escapes. Malformed sequences pass through
// literally rather than failing the request.
func decodePercent(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// normalizePath resolves "." and ".." segments and drops empty ones.
// A ".." that would climb above the root reports ok=false; such paths are
// rejected outright rather than clamped.
func normalizePath(p string) (string, bool) {
	var stack []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}
	if len(stack) == 0 {
		return "/", true
	}
	return "/" + strings.Join(stack, "/"), true
}

// parseQuery parses a raw query string using form-encoding conventions:
// fragments split on "&", keys and values on the first "=", "+" becomes a
// space before percent-decoding, and duplicate keys keep the last value.
func parseQuery(raw string) map[string]string {
	query := map[string]string{}
	if raw == "" {
		return query
	}
	for _, frag := range strings.Split(raw, "&") {
		if frag == "" {
			continue
		}
		key, value := frag, ""
		if idx := strings.IndexByte(frag, '='); idx != -1 {
			key = frag[:idx]
			value = frag[idx+1:]
		}
		key = decodePercent(strings.ReplaceAll(key, "+", " "))
		value = decodePercent(strings.ReplaceAll(value, "+", " "))
		query[key] = value
	}
	return query
}

// scanContentLength finds the declared Content-Length in a raw header
// region without fully parsing it. The connection read loop uses it to
// know how much body to wait for; any inconsistency is caught later by
// parseRequest.
func scanContentLength(head []byte) int {
	for _, line := range bytes.Split(head, crlf) {
		idx := bytes.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		if !strings.EqualFold(string(line[:idx]), HeaderContentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(line[idx+1:])))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return 0
}
