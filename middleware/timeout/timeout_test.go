package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	leanhttp "github.com/kaito2/lean-http"
)

func newRequest() *leanhttp.Request {
	return &leanhttp.Request{
		Method: leanhttp.MethodGet,
		Path:   "/",
		Header: leanhttp.NewHeader(),
		Params: map[string]string{},
		Query:  map[string]string{},
	}
}

func TestTimeoutFastHandlerPasses(t *testing.T) {
	handler := New(Config{Timeout: time.Second})(func(r *leanhttp.Request) *leanhttp.Response {
		return leanhttp.Ok("quick")
	})

	resp := handler(newRequest())
	assert.Equal(t, leanhttp.StatusOK, resp.Status)
	assert.Equal(t, "quick", string(resp.Body))
}

func TestTimeoutSlowHandlerGets504(t *testing.T) {
	handler := New(Config{Timeout: 30 * time.Millisecond})(func(r *leanhttp.Request) *leanhttp.Response {
		time.Sleep(500 * time.Millisecond)
		return leanhttp.Ok("late")
	})

	start := time.Now()
	resp := handler(newRequest())
	assert.Equal(t, leanhttp.StatusGatewayTimeout, resp.Status)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "must not wait for the handler")
}

// A handler that honors the request context exits as soon as the
// deadline cancels it.
func TestTimeoutCancelsContext(t *testing.T) {
	canceled := make(chan struct{})
	handler := New(Config{Timeout: 20 * time.Millisecond})(func(r *leanhttp.Request) *leanhttp.Response {
		<-r.Context().Done()
		close(canceled)
		return leanhttp.Ok("")
	})

	resp := handler(newRequest())
	assert.Equal(t, leanhttp.StatusGatewayTimeout, resp.Status)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("handler context was never canceled")
	}
}

func TestTimeoutRecoversPanicInTask(t *testing.T) {
	handler := New(Config{Timeout: time.Second})(func(r *leanhttp.Request) *leanhttp.Response {
		panic("boom")
	})

	resp := handler(newRequest())
	assert.Equal(t, leanhttp.StatusInternalServerError, resp.Status)
}
