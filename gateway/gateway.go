// Package gateway attaches the session's bearer token to every call made to the
// trading-bot API and recovers, once per request, from an expired access token.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	"github.com/jrsteele09/dca-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshPath is the refresh endpoint, relative to the base URL.
const DefaultRefreshPath = "/api/v1/token/refresh/"

// Per-request states, reported in the "state" field of log events.
const (
	stateDispatched      = "DISPATCHED"
	stateSuccess         = "SUCCESS"
	stateFailure         = "FAILURE"
	stateNeedsRefresh    = "NEEDS_REFRESH"
	stateRefreshing      = "REFRESHING"
	stateRetriedDispatch = "RETRIED_DISPATCH"
	stateRefreshFailed   = "REFRESH_FAILED"
)

// SessionExpiredFunc is called after the store has been cleared because the session
// could not be recovered. reason wraps ErrUnauthenticated or ErrSessionExpired.
type SessionExpiredFunc func(ctx context.Context, reason error)

// Sender is what the API clients need from the gateway.
type Sender interface {
	Send(ctx context.Context, d *Descriptor) (*Response, error)
}

var _ Sender = (*Gateway)(nil)

type Gateway struct {
	baseURL          string
	refreshPath      string
	httpClient       *http.Client
	store            session.Store
	onSessionExpired SessionExpiredFunc
	logger           zerolog.Logger

	coalesce bool
	inflight singleflight.Group
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

func WithRefreshPath(path string) Option {
	return func(g *Gateway) {
		g.refreshPath = path
	}
}

func WithSessionExpiredHandler(fn SessionExpiredFunc) Option {
	return func(g *Gateway) {
		g.onSessionExpired = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithRefreshCoalescing makes concurrent requests that hit a 401 with the same
// refresh token share a single refresh call. Without it each request refreshes on
// its own and the last writer wins in the store.
func WithRefreshCoalescing() Option {
	return func(g *Gateway) {
		g.coalesce = true
	}
}

func New(baseURL string, store session.Store, options ...Option) (*Gateway, error) {
	if baseURL == "" {
		return nil, errors.Wrap(liberrors.ErrEmptyBaseURL, "[gateway New]")
	}
	if store == nil {
		return nil, errors.New("[gateway New] session store is required")
	}

	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}

	if g.httpClient == nil {
		g.httpClient = http.DefaultClient
	}
	if g.refreshPath == "" {
		g.refreshPath = DefaultRefreshPath
	}
	return g, nil
}

// Send dispatches d with the stored access token. A 401 on a descriptor that has not
// been retried triggers one refresh and one re-dispatch. Any other non-2xx reply is
// returned as an *APIError.
func (g *Gateway) Send(ctx context.Context, d *Descriptor) (*Response, error) {
	if d == nil {
		return nil, errors.New("[Gateway Send] descriptor is required")
	}
	logger := g.logger.With().
		Str("request_id", d.ID).
		Str("method", d.Method).
		Str("path", d.Path).
		Logger()

	token := ""
	if !d.Anonymous {
		var err error
		if token, err = g.store.AccessToken(); err != nil {
			return nil, errors.Wrap(err, "[Gateway Send] read access token")
		}
	}

	resp, err := g.dispatch(ctx, d, token)
	if err != nil {
		logger.Debug().Err(err).Str("state", stateFailure).Msg("dispatch failed")
		return nil, err
	}
	logger.Debug().Int("status", resp.StatusCode).Str("state", stateDispatched).Msg("dispatched")

	if resp.StatusCode != http.StatusUnauthorized || d.Anonymous || d.Retried() {
		return g.result(logger, resp)
	}

	original := newAPIError(resp.StatusCode, resp.Body)
	logger.Debug().Str("state", stateNeedsRefresh).Msg("access token rejected")
	d.markRetried()

	access, err := g.refresh(ctx, logger, token)
	if err != nil {
		// original first: StatusCode and errors.As report this request's 401.
		return nil, fmt.Errorf("%w: %w", original, err)
	}

	resp, err = g.dispatch(ctx, d, access)
	if err != nil {
		logger.Debug().Err(err).Str("state", stateFailure).Msg("retried dispatch failed")
		return nil, err
	}
	logger.Debug().Int("status", resp.StatusCode).Str("state", stateRetriedDispatch).Msg("dispatched with refreshed token")
	return g.result(logger, resp)
}

func (g *Gateway) result(logger zerolog.Logger, resp *Response) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug().Int("status", resp.StatusCode).Str("state", stateFailure).Msg("request failed")
		return nil, newAPIError(resp.StatusCode, resp.Body)
	}
	logger.Debug().Int("status", resp.StatusCode).Str("state", stateSuccess).Msg("request succeeded")
	return resp, nil
}

func (g *Gateway) dispatch(ctx context.Context, d *Descriptor, token string) (*Response, error) {
	var body io.Reader
	if d.Body != nil {
		body = bytes.NewReader(d.Body)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, g.url(d), body)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway dispatch] build request")
	}
	if d.Header != nil {
		req.Header = d.Header.Clone()
	}
	req.Header.Del("Authorization")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if d.ID != "" {
		req.Header.Set("X-Request-ID", d.ID)
	}

	return g.do(req)
}

func (g *Gateway) do(req *http.Request) (*Response, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNoResponse, err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

func (g *Gateway) url(d *Descriptor) string {
	path := d.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := g.baseURL + path
	if len(d.Query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return u + sep + d.Query.Encode()
}
