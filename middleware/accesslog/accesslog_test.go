package accesslog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	leanhttp "github.com/kaito2/lean-http"
	"github.com/kaito2/lean-http/log"
)

func newRequest(method, path string) *leanhttp.Request {
	return &leanhttp.Request{
		Method: method,
		Path:   path,
		Header: leanhttp.NewHeader(),
		Params: map[string]string{},
		Query:  map[string]string{},
	}
}

func TestAccessLogLine(t *testing.T) {
	var buf bytes.Buffer
	handler := New(Config{Logger: log.New(&buf, log.InfoLevel)})(
		func(r *leanhttp.Request) *leanhttp.Response {
			return leanhttp.Ok("x")
		})

	resp := handler(newRequest(leanhttp.MethodGet, "/things"))
	assert.Equal(t, leanhttp.StatusOK, resp.Status)

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "GET /things 200")
	assert.Contains(t, out, "ms")
}

func TestAccessLogLevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	mw := New(Config{Logger: log.New(&buf, log.InfoLevel)})

	mw(func(r *leanhttp.Request) *leanhttp.Response {
		return leanhttp.NotFound()
	})(newRequest(leanhttp.MethodGet, "/missing"))
	assert.Contains(t, buf.String(), "WARN")

	buf.Reset()
	mw(func(r *leanhttp.Request) *leanhttp.Response {
		return leanhttp.Error("boom")
	})(newRequest(leanhttp.MethodGet, "/broken"))
	assert.Contains(t, buf.String(), "ERROR")
}
