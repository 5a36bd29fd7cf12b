package config

import (
	"os"
)

const (
	appNameVar   = "APP_NAME"
	baseURLVar   = "CONSOLE_BASE_URL"
	sessionDBVar = "CONSOLE_SESSION_DB"
	pricesURLVar = "CONSOLE_PRICES_URL"
	logLevelVar  = "CONSOLE_LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "DCA Console")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the root of the trading-bot REST API (e.g. "https://api.example.com").
// Every gateway path, including the refresh endpoint, is resolved against it.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000")
}

// GetSessionDBPath is the SQLite file holding the persisted token pair.
func (EnvVars) GetSessionDBPath() string {
	return GetEnv(sessionDBVar, "./data/session.db")
}

func (EnvVars) GetPricesURL() string {
	return GetEnv(pricesURLVar, "https://stag-frontend.arbigobot.com/api/crypto-prices")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
