package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetServerURL() string
	GetLogLevel() string
	GetUpstreamTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Session
	Security
}

// New returns the process-wide configuration. It is built once in main and
// handed to every component that talks to the upstream API.
func New() Config {
	return mainConfig{}
}
