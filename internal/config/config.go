package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	GatewayConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetSessionDBPath() string
	GetPricesURL() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Gateway
}

func New() Config {
	return mainConfig{}
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none are given)
// into the process environment. Variables that are already set are left as they are,
// and missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
