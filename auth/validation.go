package auth

import (
	"math"
	"net/mail"
	"regexp"
	"slices"
	"strings"
)

// DefaultThemes are the UI themes a theme preference may name.
var DefaultThemes = []string{
	"light",
	"dark",
	"night",
	"forest",
	"aqua",
	"aestheticLight",
	"aestheticDark",
	"northernLights",
}

// localeRegex accepts BCP 47 style tags such as "en", "pt-BR" or "zh-Hant-TW".
var localeRegex = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8}){0,3}$`)

// Validator checks form submissions before anything is sent upstream. Every
// error it returns is a *ValidationError carrying a message key.
type Validator struct {
	themes []string
}

// NewValidator creates a Validator. With no themes, DefaultThemes is used.
func NewValidator(themes ...string) *Validator {
	if len(themes) == 0 {
		themes = DefaultThemes
	}
	return &Validator{themes: themes}
}

// ValidateLogin requires a username and password. The TOTP code is optional.
func (v *Validator) ValidateLogin(p LoginParameters) error {
	if strings.TrimSpace(p.Username) == "" || p.Password == "" {
		return MissingFieldsErr
	}
	return nil
}

// ValidateSignup checks required fields, then the password confirmation, then
// the email address.
func (v *Validator) ValidateSignup(p SignupParameters) error {
	if strings.TrimSpace(p.Username) == "" || strings.TrimSpace(p.Email) == "" || p.Password1 == "" || p.Password2 == "" {
		return MissingFieldsErr
	}
	if p.Password1 != p.Password2 {
		return PasswordsDontMatchErr
	}
	if !validEmail(p.Email) {
		return InvalidEmailErr
	}
	return nil
}

func (v *Validator) ValidateTheme(theme string) error {
	if !slices.Contains(v.themes, theme) {
		return InvalidThemeErr
	}
	return nil
}

func (v *Validator) ValidateLocale(locale string) error {
	if !localeRegex.MatchString(locale) {
		return InvalidLocaleErr
	}
	return nil
}

// ValidateCoordinates checks latitude is within [-90, 90] and longitude
// within [-180, 180].
func (v *Validator) ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return InvalidCoordinatesErr
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return InvalidCoordinatesErr
	}
	return nil
}

// ValidateLocation validates whichever of latitude and longitude the payload
// carries. A payload with neither is left to the upstream.
func (v *Validator) ValidateLocation(c Coordinates) error {
	lat, hasLat, err := parseCoordinate(c.Latitude)
	if err != nil {
		return err
	}
	lon, hasLon, err := parseCoordinate(c.Longitude)
	if err != nil {
		return err
	}
	if !hasLat && !hasLon {
		return nil
	}
	return v.ValidateCoordinates(lat, lon)
}

// LocalPath returns target when it is a path on this site, otherwise
// fallback. Scheme-relative ("//host") and backslash tricks are rejected.
func LocalPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") || strings.ContainsAny(target, "\r\n") {
		return fallback
	}
	return target
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms such as "Bob <bob@example.com>".
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
