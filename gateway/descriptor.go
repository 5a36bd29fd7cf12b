package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Descriptor is one outbound call plus its retry bookkeeping.
// A Descriptor must not be sent from two goroutines at once.
type Descriptor struct {
	ID     string // Sent as X-Request-ID and attached to every log event
	Method string
	Path   string // Relative to the gateway base URL, e.g. "/users/me/"
	Query  url.Values
	Header http.Header
	Body   []byte // Kept as bytes so the call can be dispatched a second time

	// Anonymous requests carry no bearer token and never enter the refresh protocol.
	// Login and registration use it so a rejected password is reported as-is.
	Anonymous bool

	retried bool
}

// NewDescriptor creates a descriptor without a body.
func NewDescriptor(method, path string) *Descriptor {
	return &Descriptor{
		ID:     uuid.NewString(),
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// NewJSONDescriptor creates a descriptor whose body is body encoded as JSON.
// A nil body produces a request without one.
func NewJSONDescriptor(method, path string, body any) (*Descriptor, error) {
	d := NewDescriptor(method, path)
	if body == nil {
		return d, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway NewJSONDescriptor] marshal body")
	}
	d.Body = b
	d.Header.Set("Content-Type", "application/json")
	return d, nil
}

// Retried reports whether the descriptor has already been through a refresh.
// Once true it stays true.
func (d *Descriptor) Retried() bool {
	return d.retried
}

func (d *Descriptor) markRetried() {
	d.retried = true
}
