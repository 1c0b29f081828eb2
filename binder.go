package leanhttp

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// BindJSON unmarshals the JSON request body into obj. The payload is
// validated before unmarshaling so malformed bodies fail fast with a
// useful error instead of a partial decode.
//
// Example usage in a handler:
//
//	func create(r *leanhttp.Request) *leanhttp.Response {
//	    var u User
//	    if err := r.BindJSON(&u); err != nil {
//	        return leanhttp.BadRequest(err.Error())
//	    }
//	    return leanhttp.JSON(leanhttp.StatusCreated, u)
//	}
func (r *Request) BindJSON(obj interface{}) error {
	if len(r.Body) == 0 {
		return errors.New("request body is empty")
	}
	if err := fastjson.ValidateBytes(r.Body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := json.Unmarshal(r.Body, obj); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
