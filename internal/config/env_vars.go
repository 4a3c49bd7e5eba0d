package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	portEnvVar            = "PORT"
	appNameVar            = "APP_NAME"
	serverURLVar          = "PUBLIC_SERVER_URL"
	logLevelVar           = "LOG_LEVEL"
	upstreamTimeoutEnvVar = "UPSTREAM_TIMEOUT"

	defaultServerURL = "http://localhost:8000"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "AdventureLog")
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "DEV")
}

// GetServerURL returns the base URL of the upstream API without a trailing slash.
func (EnvVars) GetServerURL() string {
	return strings.TrimRight(GetEnv(serverURLVar, defaultServerURL), "/")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetUpstreamTimeout is zero unless UPSTREAM_TIMEOUT is set, leaving upstream
// calls bounded only by the request context.
func (EnvVars) GetUpstreamTimeout() time.Duration {
	raw := GetEnv(upstreamTimeoutEnvVar, "")
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("value", raw).Msg("ignoring invalid " + upstreamTimeoutEnvVar)
		return 0
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
