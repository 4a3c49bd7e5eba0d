package cookies

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/errors"
)

// Record is the structured form of one Set-Cookie header.
type Record struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int // as net/http: 0 unset, <0 delete now
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// ParseSetCookie parses a single Set-Cookie header line. Attribute order is
// irrelevant.
func ParseSetCookie(line string) (Record, error) {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return Record{}, errors.Wrapf(errors.ErrInvalidCookie, "parse set-cookie: %v", err)
	}
	return recordFromCookie(c), nil
}

// FindSetCookie returns the first Set-Cookie in header named name.
func FindSetCookie(header http.Header, name string) (Record, bool) {
	for _, line := range header.Values("Set-Cookie") {
		rec, err := ParseSetCookie(line)
		if err != nil {
			continue
		}
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// ExpiresAt resolves when the cookie expires. Max-Age wins over Expires. The
// boolean is false for a browser-session cookie that carries neither.
func (r Record) ExpiresAt(now time.Time) (time.Time, bool) {
	switch {
	case r.MaxAge > 0:
		return now.Add(time.Duration(r.MaxAge) * time.Second), true
	case r.MaxAge < 0:
		return now, true
	case !r.Expires.IsZero():
		return r.Expires, true
	}
	return time.Time{}, false
}

func recordFromCookie(c *http.Cookie) Record {
	return Record{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		MaxAge:   c.MaxAge,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}
