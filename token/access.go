package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Expired peeks at the exp claim of an access credential without verifying
// its signature; verification is the upstream's job. Opaque (non-JWT)
// credentials and tokens without exp are never reported as expired.
func Expired(raw string) bool {
	exp, ok := Expiry(raw)
	if !ok {
		return false
	}
	return !NowTimeFunc().Before(exp)
}

// Expiry returns the exp claim of a JWT access credential, if it has one.
func Expiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
