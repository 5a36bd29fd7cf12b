package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/dca-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"` // Only present when the server rotates refresh tokens
}

// refresh obtains a new access token and persists it, or ends the session.
// rejected is the access token the server just refused.
func (g *Gateway) refresh(ctx context.Context, logger zerolog.Logger, rejected string) (string, error) {
	if !g.coalesce {
		return g.refreshStored(ctx, logger)
	}

	// The shared call runs detached from the leader; each caller waits on its own ctx.
	ch := g.inflight.DoChan(rejected, func() (any, error) {
		return g.refreshShared(context.WithoutCancel(ctx), logger, rejected)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("[Gateway refresh] %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			logger.Debug().Msg("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refreshShared skips the refresh call when another request has already replaced
// the rejected access token.
func (g *Gateway) refreshShared(ctx context.Context, logger zerolog.Logger, rejected string) (string, error) {
	current, err := g.store.AccessToken()
	if err != nil {
		return "", errors.Wrap(err, "[Gateway refresh] read access token")
	}
	if current != "" && current != rejected {
		logger.Debug().Str("state", stateRefreshing).Msg("access token already refreshed")
		return current, nil
	}
	return g.refreshStored(ctx, logger)
}

func (g *Gateway) refreshStored(ctx context.Context, logger zerolog.Logger) (string, error) {
	refreshToken, err := g.store.RefreshToken()
	if err != nil {
		return "", errors.Wrap(err, "[Gateway refresh] read refresh token")
	}
	if refreshToken == "" {
		logger.Debug().Str("state", stateRefreshFailed).Msg("no refresh token stored")
		return "", g.endSession(ctx, logger, ErrUnauthenticated)
	}
	return g.refreshWith(ctx, logger, refreshToken)
}

func (g *Gateway) refreshWith(ctx context.Context, logger zerolog.Logger, refreshToken string) (string, error) {
	logger.Debug().Str("state", stateRefreshing).Msg("refreshing access token")

	pair, err := g.requestAccessToken(ctx, refreshToken)
	if err != nil {
		// The caller gave up; that says nothing about the refresh token.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("[Gateway refresh] %w", ctxErr)
		}
		logger.Warn().Err(err).Str("state", stateRefreshFailed).Msg("refresh failed")
		return "", g.endSession(ctx, logger, fmt.Errorf("%w: %w", ErrSessionExpired, err))
	}

	if err := g.store.SetTokens(pair); err != nil {
		return "", errors.Wrap(err, "[Gateway refresh] store tokens")
	}
	logger.Info().Msg("access token refreshed")
	return pair.AccessToken, nil
}

// requestAccessToken calls the refresh endpoint directly, bypassing Send so the call
// carries no bearer token and cannot itself trigger a refresh.
func (g *Gateway) requestAccessToken(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	body, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return session.TokenPair{}, errors.Wrap(err, "marshal refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+g.refreshPath, bytes.NewReader(body))
	if err != nil {
		return session.TokenPair{}, errors.Wrap(err, "build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.do(req)
	if err != nil {
		return session.TokenPair{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return session.TokenPair{}, newAPIError(resp.StatusCode, resp.Body)
	}

	var out refreshResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return session.TokenPair{}, errors.Wrap(err, "decode refresh response")
	}
	if out.Access == "" {
		return session.TokenPair{}, errors.New("refresh response has no access token")
	}

	pair := session.TokenPair{AccessToken: out.Access, RefreshToken: refreshToken}
	if out.Refresh != "" {
		pair.RefreshToken = out.Refresh
	}
	return pair, nil
}

// endSession clears the store and notifies the host application. It returns reason
// so callers can propagate it.
func (g *Gateway) endSession(ctx context.Context, logger zerolog.Logger, reason error) error {
	if err := g.store.Clear(); err != nil {
		logger.Error().Err(err).Msg("failed to clear session store")
	}
	logger.Warn().Err(reason).Msg("session expired")
	if g.onSessionExpired != nil {
		g.onSessionExpired(ctx, reason)
	}
	return reason
}
