package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	leanhttp "github.com/kaito2/lean-http"
)

func newRequest() *leanhttp.Request {
	return &leanhttp.Request{
		Method:     leanhttp.MethodGet,
		Path:       "/",
		Header:     leanhttp.NewHeader(),
		Params:     map[string]string{},
		Query:      map[string]string{},
		RemoteAddr: "192.0.2.1:5000",
	}
}

func okHandler(r *leanhttp.Request) *leanhttp.Response {
	return leanhttp.Ok("")
}

// Three requests pass within the window, the fourth is rejected with a
// Retry-After of the window length in seconds.
func TestFixedWindowLimit(t *testing.T) {
	handler := New(Config{Max: 3, Window: time.Minute})(okHandler)

	for i := 0; i < 3; i++ {
		resp := handler(newRequest())
		assert.Equal(t, leanhttp.StatusOK, resp.Status, "request %d should pass", i+1)
	}

	resp := handler(newRequest())
	assert.Equal(t, leanhttp.StatusTooManyRequests, resp.Status)
	assert.Equal(t, "60", resp.Header.Get(leanhttp.HeaderRetryAfter))
}

func TestFixedWindowResets(t *testing.T) {
	handler := New(Config{Max: 1, Window: 50 * time.Millisecond})(okHandler)

	assert.Equal(t, leanhttp.StatusOK, handler(newRequest()).Status)
	assert.Equal(t, leanhttp.StatusTooManyRequests, handler(newRequest()).Status)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, leanhttp.StatusOK, handler(newRequest()).Status, "window should have reset")
}

func TestPerClientSeparateBuckets(t *testing.T) {
	handler := NewPerClient(PerClientConfig{
		Requests:  1,
		Burst:     1,
		Duration:  time.Minute,
		ExpiresIn: time.Minute,
	})(okHandler)

	first := newRequest()
	first.RemoteAddr = "192.0.2.1:1111"
	assert.Equal(t, leanhttp.StatusOK, handler(first).Status)
	assert.Equal(t, leanhttp.StatusTooManyRequests, handler(first).Status)

	other := newRequest()
	other.RemoteAddr = "192.0.2.2:2222"
	assert.Equal(t, leanhttp.StatusOK, handler(other).Status, "a different client has its own bucket")
}
