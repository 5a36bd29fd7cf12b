package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/dca-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"APP_NAME", "ENV", "CONSOLE_BASE_URL", "CONSOLE_REFRESH_PATH", "CONSOLE_COALESCE_REFRESH", "CONSOLE_REQUEST_TIMEOUT", "CONSOLE_LOG_LEVEL"} {
		t.Setenv(v, "")
	}
	c := config.New()
	require.Equal(t, "DCA Console", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8000", c.GetBaseURL())
	require.Equal(t, "/api/v1/token/refresh/", c.GetRefreshPath())
	require.False(t, c.GetCoalesceRefresh())
	require.Zero(t, c.GetRequestTimeout())
	require.Equal(t, "info", c.GetLogLevel())
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("CONSOLE_BASE_URL", "https://api.example.com")
	t.Setenv("CONSOLE_COALESCE_REFRESH", "true")
	t.Setenv("CONSOLE_REQUEST_TIMEOUT", "15s")

	c := config.New()
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "https://api.example.com", c.GetBaseURL())
	require.True(t, c.GetCoalesceRefresh())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())

	t.Setenv("CONSOLE_COALESCE_REFRESH", "maybe")
	t.Setenv("CONSOLE_REQUEST_TIMEOUT", "-3s")
	require.False(t, c.GetCoalesceRefresh())
	require.Zero(t, c.GetRequestTimeout())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("CONSOLE_PRICES_URL=https://prices.example.com\nCONSOLE_SESSION_DB=/tmp/from-file.db\n"), 0o600))

	// Setenv registers cleanup; the empty value is then replaced by the file.
	t.Setenv("CONSOLE_PRICES_URL", "")
	require.NoError(t, os.Unsetenv("CONSOLE_PRICES_URL"))
	t.Setenv("CONSOLE_SESSION_DB", "/already/set.db")

	require.NoError(t, config.LoadDotEnv(file, filepath.Join(dir, "missing.env")))

	c := config.New()
	require.Equal(t, "https://prices.example.com", c.GetPricesURL())
	require.Equal(t, "/already/set.db", c.GetSessionDBPath(), "real environment wins over the file")

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "none.env")))
}
