package gateway

import (
	"context"
)

// Do sends d and decodes the reply into out. out may be nil.
func Do(ctx context.Context, s Sender, d *Descriptor, out any) error {
	resp, err := s.Send(ctx, d)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// SendJSON builds a JSON descriptor from in, sends it and decodes the reply into out.
func SendJSON(ctx context.Context, s Sender, method, path string, in, out any) error {
	d, err := NewJSONDescriptor(method, path, in)
	if err != nil {
		return err
	}
	return Do(ctx, s, d, out)
}
