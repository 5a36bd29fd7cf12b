package config

import (
	"strconv"
	"time"
)

const (
	refreshPathVar    = "CONSOLE_REFRESH_PATH"
	coalesceVar       = "CONSOLE_COALESCE_REFRESH"
	requestTimeoutVar = "CONSOLE_REQUEST_TIMEOUT"
)

type GatewayConfig interface {
	GetRefreshPath() string
	GetCoalesceRefresh() bool
	GetRequestTimeout() time.Duration
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetRefreshPath() string {
	return GetEnv(refreshPathVar, "/api/v1/token/refresh/")
}

// GetCoalesceRefresh reports whether concurrent refreshes should share one call.
// Off by default: every request that hits a 401 refreshes on its own.
func (Gateway) GetCoalesceRefresh() bool {
	v, err := strconv.ParseBool(GetEnv(coalesceVar, "false"))
	return err == nil && v
}

// GetRequestTimeout is the http.Client timeout. Zero leaves the transport defaults alone.
func (Gateway) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(requestTimeoutVar, "0s"))
	if err != nil || d < 0 {
		return 0
	}
	return d
}
