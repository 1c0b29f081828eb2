package leanhttp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestWithCtxCopyOnWrite(t *testing.T) {
	base := newTestRequest(MethodGet, "/")

	derived := base.WithCtx("user", "alice")
	assert.Equal(t, "alice", derived.Ctx("user"))
	assert.Equal(t, "", base.Ctx("user"), "the original request is untouched")

	further := derived.WithCtx("role", "admin")
	assert.Equal(t, "alice", further.Ctx("user"))
	assert.Equal(t, "", derived.Ctx("role"))
}

func TestRequestContextDefault(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	assert.NotNil(t, req.Context())

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	derived := req.WithContext(ctx)
	assert.Equal(t, "v", derived.Context().Value(key{}))
	assert.Nil(t, req.Context().Value(key{}))
}

func TestRequestWantsClose(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	assert.False(t, req.wantsClose())

	req.Header.Add(HeaderConnection, "Close")
	assert.True(t, req.wantsClose(), "Connection header is case-insensitive")

	keep := newTestRequest(MethodGet, "/")
	keep.Header.Add(HeaderConnection, "keep-alive")
	assert.False(t, keep.wantsClose())
}

func TestRequestBindJSON(t *testing.T) {
	req := newTestRequest(MethodPost, "/users")
	req.Body = []byte(`{"name":"test"}`)

	var payload struct {
		Name string `json:"name"`
	}
	assert.NoError(t, req.BindJSON(&payload))
	assert.Equal(t, "test", payload.Name)
}

func TestRequestBindJSONRejectsGarbage(t *testing.T) {
	req := newTestRequest(MethodPost, "/users")
	req.Body = []byte(`{"name":`)

	var payload map[string]string
	assert.Error(t, req.BindJSON(&payload))

	empty := newTestRequest(MethodPost, "/users")
	assert.Error(t, empty.BindJSON(&payload))
}
