package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// Response is a successful (2xx) reply with its body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "[Response Decode]")
	}
	return nil
}
