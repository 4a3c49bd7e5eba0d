package config

import (
	"strings"
	"time"
)

type SessionConfig interface {
	GetAccessCookieName() string
	GetRefreshCookieName() string
	GetCSRFCookieName() string
	GetCSRFHeaderName() string
	GetAccessTokenExpiry() time.Duration
	GetPreferenceCookieExpiry() time.Duration
	GetThemes() []string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetAccessCookieName() string {
	return "auth"
}

// GetRefreshCookieName is the upstream session cookie, which doubles as the
// refresh credential.
func (Session) GetRefreshCookieName() string {
	return "sessionid"
}

func (Session) GetCSRFCookieName() string {
	return "csrftoken"
}

func (Session) GetCSRFHeaderName() string {
	return "X-CSRFToken"
}

func (Session) GetAccessTokenExpiry() time.Duration {
	return 60 * time.Minute
}

func (Session) GetPreferenceCookieExpiry() time.Duration {
	return 365 * 24 * time.Hour
}

// GetThemes lists the UI themes a theme preference may name, from the
// comma-separated THEMES variable. Nil when unset.
func (Session) GetThemes() []string {
	var themes []string
	for _, theme := range strings.Split(GetEnv("THEMES", ""), ",") {
		if theme = strings.TrimSpace(theme); theme != "" {
			themes = append(themes, theme)
		}
	}
	return themes
}
