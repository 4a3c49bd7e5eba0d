package config

import (
	"strconv"

	"golang.org/x/time/rate"
)

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetLoginRateLimit() rate.Limit
	GetLoginRateBurst() int
	GetTrustedProxyHops() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetEnableRateLimiting() bool {
	enabled, err := strconv.ParseBool(GetEnv("RATE_LIMIT_ENABLED", "true"))
	if err != nil {
		return true
	}
	return enabled
}

// GetLoginRateLimit is the sustained number of login/signup submissions per
// second allowed from one client IP.
func (Security) GetLoginRateLimit() rate.Limit {
	perSecond, err := strconv.ParseFloat(GetEnv("LOGIN_RATE_LIMIT", "1"), 64)
	if err != nil || perSecond <= 0 {
		return rate.Limit(1)
	}
	return rate.Limit(perSecond)
}

func (Security) GetLoginRateBurst() int {
	return 5
}

// GetTrustedProxyHops is the number of reverse proxies in front of the
// service. Zero means X-Forwarded-For is ignored.
func (Security) GetTrustedProxyHops() int {
	hops, err := strconv.Atoi(GetEnv("TRUSTED_PROXY_HOPS", "0"))
	if err != nil || hops < 0 {
		return 0
	}
	return hops
}
