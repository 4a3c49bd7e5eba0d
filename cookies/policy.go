package cookies

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/config"
)

// Policy builds every cookie this service writes to the browser.
type Policy struct {
	AccessName    string
	RefreshName   string
	AccessTTL     time.Duration
	PreferenceTTL time.Duration
}

func NewPolicy(cfg config.SessionConfig) Policy {
	return Policy{
		AccessName:    cfg.GetAccessCookieName(),
		RefreshName:   cfg.GetRefreshCookieName(),
		AccessTTL:     cfg.GetAccessTokenExpiry(),
		PreferenceTTL: cfg.GetPreferenceCookieExpiry(),
	}
}

// Access is the access credential cookie. A new one always overwrites the old.
func (p Policy) Access(r *http.Request, value string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     p.AccessName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(p.AccessTTL),
		MaxAge:   int(p.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// Refresh turns the upstream session cookie into the refresh credential
// cookie, scoped to the apex domain of the inbound host and keeping the
// upstream expiry.
func (p Policy) Refresh(r *http.Request, upstream Record, now time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     p.RefreshName,
		Value:    upstream.Value,
		Path:     "/",
		Domain:   SessionDomain(r.Host),
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if expires, ok := upstream.ExpiresAt(now); ok {
		c.Expires = expires
	}
	return c
}

// Preference cookies (theme, locale) are readable from scripts.
func (p Policy) Preference(r *http.Request, name, value string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(p.PreferenceTTL),
		MaxAge:   int(p.PreferenceTTL.Seconds()),
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func (p Policy) ExpireAccess(r *http.Request) *http.Cookie {
	return expired(p.AccessName, "", r)
}

func (p Policy) ExpireRefresh(r *http.Request) *http.Cookie {
	return expired(p.RefreshName, SessionDomain(r.Host), r)
}

func expired(name, domain string, r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// IsSecure reports whether the browser reached us over https, directly or
// through a proxy that sets X-Forwarded-Proto.
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
