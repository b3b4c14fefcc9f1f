package config

import (
	"os"
	"strings"
	"time"
)

// applyEnv overrides cfg from TASKFLOW_* variables. Unset or unparsable
// values leave the current setting alone.
func applyEnv(cfg *Config) {
	if v := getEnv("TASKFLOW_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if d := getEnvDuration("TASKFLOW_TIMEOUT"); d > 0 {
		cfg.API.Timeout = d
	}
	if v := getEnv("TASKFLOW_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getEnv("TASKFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getEnv("TASKFLOW_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := getEnv("TASKFLOW_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getEnv("TASKFLOW_JWT_SECRET"); v != "" {
		cfg.Server.Secret = v
	}
	if d := getEnvDuration("TASKFLOW_TOKEN_TTL"); d > 0 {
		cfg.Server.TokenTTL = d
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvDuration(key string) time.Duration {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}
