package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestEnvVars(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("PUBLIC_SERVER_URL", "")
		t.Setenv("UPSTREAM_TIMEOUT", "")

		c := config.New()
		require.Equal(t, ":8080", c.GetPort())
		require.Equal(t, "http://localhost:8000", c.GetServerURL())
		require.Equal(t, "DEV", c.GetEnv())
		require.Zero(t, c.GetUpstreamTimeout())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", ":9090")
		t.Setenv("PUBLIC_SERVER_URL", "https://api.example.com/")
		t.Setenv("UPSTREAM_TIMEOUT", "3s")

		c := config.New()
		require.Equal(t, ":9090", c.GetPort())
		require.Equal(t, "https://api.example.com", c.GetServerURL())
		require.Equal(t, 3*time.Second, c.GetUpstreamTimeout())
	})

	t.Run("invalid timeout falls back to none", func(t *testing.T) {
		t.Setenv("UPSTREAM_TIMEOUT", "soon")
		require.Zero(t, config.New().GetUpstreamTimeout())
	})
}

func TestSession(t *testing.T) {
	c := config.New()
	require.Equal(t, 60*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, 365*24*time.Hour, c.GetPreferenceCookieExpiry())
	require.NotEqual(t, c.GetAccessCookieName(), c.GetRefreshCookieName())

	t.Setenv("THEMES", "")
	require.Nil(t, c.GetThemes())
	t.Setenv("THEMES", "light, solarized,,")
	require.Equal(t, []string{"light", "solarized"}, c.GetThemes())
}

func TestSecurity(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOGIN_RATE_LIMIT", "-2")
	t.Setenv("TRUSTED_PROXY_HOPS", "")

	c := config.New()
	require.False(t, c.GetEnableRateLimiting())
	require.Equal(t, rate.Limit(1), c.GetLoginRateLimit())
	require.Zero(t, c.GetTrustedProxyHops())

	t.Setenv("TRUSTED_PROXY_HOPS", "2")
	require.Equal(t, 2, c.GetTrustedProxyHops())
	t.Setenv("TRUSTED_PROXY_HOPS", "-1")
	require.Zero(t, c.GetTrustedProxyHops())
}

func TestCors(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://b.example.com, https://a.example.com,")

	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
	require.Equal(t, "https://a.example.com, https://b.example.com", origins.String())
}
