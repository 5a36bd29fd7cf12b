package senderfake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/dca-console/gateway"
)

var _ gateway.Sender = (*FakeSender)(nil)

// Reply is a canned answer. A non-nil Err is returned instead of a response.
type Reply struct {
	Status int
	Body   any
	Err    error
}

// FakeSender answers descriptors from a table keyed by "METHOD path" and records
// everything it was sent.
type FakeSender struct {
	replies map[string]Reply
	sent    []*gateway.Descriptor
	lock    sync.RWMutex
}

func NewFakeSender() *FakeSender {
	return &FakeSender{
		replies: make(map[string]Reply),
	}
}

// On registers the reply for method and path (path without the query string).
func (fs *FakeSender) On(method, path string, reply Reply) *FakeSender {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.replies[method+" "+path] = reply
	return fs
}

func (fs *FakeSender) Send(_ context.Context, d *gateway.Descriptor) (*gateway.Response, error) {
	fs.lock.Lock()
	fs.sent = append(fs.sent, d)
	reply, ok := fs.replies[d.Method+" "+d.Path]
	fs.lock.Unlock()

	if !ok {
		return nil, &gateway.APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("no reply for %s %s", d.Method, d.Path)}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	var body []byte
	switch b := reply.Body.(type) {
	case nil:
	case string:
		body = []byte(b)
	default:
		var err error
		if body, err = json.Marshal(b); err != nil {
			return nil, err
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status >= 300 {
		return nil, &gateway.APIError{StatusCode: status, Message: http.StatusText(status), Body: body}
	}
	return &gateway.Response{StatusCode: status, Header: make(http.Header), Body: body}, nil
}

// Sent returns the descriptors received so far, oldest first.
func (fs *FakeSender) Sent() []*gateway.Descriptor {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	out := make([]*gateway.Descriptor, len(fs.sent))
	copy(out, fs.sent)
	return out
}

// Last returns the most recent descriptor, or nil.
func (fs *FakeSender) Last() *gateway.Descriptor {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if len(fs.sent) == 0 {
		return nil
	}
	return fs.sent[len(fs.sent)-1]
}
