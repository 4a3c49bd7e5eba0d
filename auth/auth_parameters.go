package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// LoginParameters holds the fields of the login form action.
type LoginParameters struct {
	// Username or email, as the upstream accepts either.
	Username string
	Password string
	// TOTP is the second-factor code. Empty on the first submission; set when
	// the browser resubmits after a 401 mfa_required response.
	TOTP string
	// Next is where to send the browser after a successful login. Only local
	// paths are honoured.
	Next string
}

// SignupParameters holds the fields of the signup form action.
type SignupParameters struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// PreferenceParameters holds a single preference form submission.
type PreferenceParameters struct {
	Value string
	// Referer is the page the form was posted from.
	Referer string
}

// Coordinates is the subset of a location payload that is validated before it
// is forwarded. The upstream serialises decimals as strings, so both JSON
// numbers and quoted numbers are accepted; an absent or null field stays empty.
type Coordinates struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

func ParseLoginParameters(r *http.Request) LoginParameters {
	return LoginParameters{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		TOTP:     strings.TrimSpace(r.FormValue("totp")),
		Next:     r.FormValue("next"),
	}
}

func ParseSignupParameters(r *http.Request) SignupParameters {
	return SignupParameters{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password1: r.FormValue("password1"),
		Password2: r.FormValue("password2"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}
}

// ParsePreferenceParameters reads field from the form body, falling back to
// the query string.
func ParsePreferenceParameters(r *http.Request, field string) PreferenceParameters {
	return PreferenceParameters{
		Value:   strings.TrimSpace(r.FormValue(field)),
		Referer: r.Referer(),
	}
}

// ParseCoordinates decodes latitude and longitude from a JSON location body.
// An empty body yields empty Coordinates.
func ParseCoordinates(body io.Reader) (Coordinates, error) {
	var c Coordinates
	if err := json.NewDecoder(body).Decode(&c); err != nil {
		if err == io.EOF {
			return Coordinates{}, nil
		}
		return Coordinates{}, InvalidRequestFormatErr
	}
	return c, nil
}

// parseCoordinate reports whether raw held a value and what it was.
func parseCoordinate(raw json.RawMessage) (float64, bool, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false, nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return 0, false, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, InvalidCoordinatesErr
	}
	return f, true, nil
}
