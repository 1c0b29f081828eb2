package basicauth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	leanhttp "github.com/kaito2/lean-http"
)

func newRequest(auth string) *leanhttp.Request {
	req := &leanhttp.Request{
		Method: leanhttp.MethodGet,
		Path:   "/",
		Header: leanhttp.NewHeader(),
		Params: map[string]string{},
		Query:  map[string]string{},
	}
	if auth != "" {
		req.Header.Add(leanhttp.HeaderAuthorization, auth)
	}
	return req
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestBasicAuthAccepts(t *testing.T) {
	var user string
	handler := New(Config{Username: "admin", Password: "secret", Realm: "api"})(
		func(r *leanhttp.Request) *leanhttp.Response {
			user = r.Ctx("auth_user")
			return leanhttp.Ok("in")
		})

	resp := handler(newRequest(basic("admin", "secret")))
	assert.Equal(t, leanhttp.StatusOK, resp.Status)
	assert.Equal(t, "admin", user)
}

func TestBasicAuthRejects(t *testing.T) {
	handler := New(Config{Username: "admin", Password: "secret", Realm: "api"})(
		func(r *leanhttp.Request) *leanhttp.Response {
			return leanhttp.Ok("in")
		})

	tests := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"wrong scheme", "Bearer xyz"},
		{"bad base64", "Basic ???"},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin"))},
		{"wrong password", basic("admin", "nope")},
		{"wrong user", basic("root", "secret")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := handler(newRequest(tc.auth))
			assert.Equal(t, leanhttp.StatusUnauthorized, resp.Status)
			assert.Equal(t, `Basic realm="api"`, resp.Header.Get(leanhttp.HeaderWWWAuthenticate))
		})
	}
}
