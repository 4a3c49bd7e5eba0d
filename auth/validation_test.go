package auth_test

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateLogin(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.ValidateLogin(auth.LoginParameters{Username: "alice", Password: "pw"}))
	})

	t.Run("missing password", func(t *testing.T) {
		err := v.ValidateLogin(auth.LoginParameters{Username: "alice"})
		require.ErrorIs(t, err, errors.ErrValidation)
		require.Equal(t, auth.MessageMissingFields, auth.MessageKey(err))
	})

	t.Run("blank username", func(t *testing.T) {
		err := v.ValidateLogin(auth.LoginParameters{Username: "  ", Password: "pw"})
		require.Equal(t, auth.MessageMissingFields, auth.MessageKey(err))
	})
}

func TestValidator_ValidateSignup(t *testing.T) {
	v := auth.NewValidator()
	valid := auth.SignupParameters{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "correct horse",
		Password2: "correct horse",
	}

	tests := []struct {
		name   string
		modify func(p *auth.SignupParameters)
		want   string
	}{
		{"valid", func(p *auth.SignupParameters) {}, ""},
		{"missing email", func(p *auth.SignupParameters) { p.Email = "" }, auth.MessageMissingFields},
		{"missing confirmation", func(p *auth.SignupParameters) { p.Password2 = "" }, auth.MessageMissingFields},
		{"passwords differ", func(p *auth.SignupParameters) { p.Password2 = "battery staple" }, auth.MessagePasswordsDoNotMatch},
		{"no at sign", func(p *auth.SignupParameters) { p.Email = "alice.example.com" }, auth.MessageInvalidEmail},
		{"no domain dot", func(p *auth.SignupParameters) { p.Email = "alice@localhost" }, auth.MessageInvalidEmail},
		{"display name", func(p *auth.SignupParameters) { p.Email = "Alice <alice@example.com>" }, auth.MessageInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			err := v.ValidateSignup(p)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Equal(t, tt.want, auth.MessageKey(err))
		})
	}
}

func TestValidator_Preferences(t *testing.T) {
	v := auth.NewValidator()
	require.NoError(t, v.ValidateTheme("dark"))
	require.NoError(t, v.ValidateTheme("northernLights"))
	require.Equal(t, auth.MessageInvalidTheme, auth.MessageKey(v.ValidateTheme("neon")))

	custom := auth.NewValidator("solarized")
	require.NoError(t, custom.ValidateTheme("solarized"))
	require.Error(t, custom.ValidateTheme("dark"))

	for _, locale := range []string{"en", "de", "pt-BR", "zh-Hant-TW"} {
		require.NoError(t, v.ValidateLocale(locale), locale)
	}
	for _, locale := range []string{"", "e", "english!", "en_US", "../etc"} {
		require.Equal(t, auth.MessageInvalidLocale, auth.MessageKey(v.ValidateLocale(locale)), locale)
	}
}

func TestValidator_ValidateCoordinates(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateCoordinates(0, 0))
	require.NoError(t, v.ValidateCoordinates(-90, 180))
	require.NoError(t, v.ValidateCoordinates(90, -180))

	for _, c := range [][2]float64{{90.0001, 0}, {-91, 0}, {0, 180.5}, {0, -181}, {math.NaN(), 0}} {
		err := v.ValidateCoordinates(c[0], c[1])
		require.Equal(t, auth.MessageInvalidCoordinates, auth.MessageKey(err), "%v", c)
	}
}

func TestValidator_ValidateLocation(t *testing.T) {
	v := auth.NewValidator()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"numbers", `{"name":"Paris","latitude":48.8566,"longitude":2.3522}`, ""},
		{"decimal strings", `{"latitude":"48.856600","longitude":"2.352200"}`, ""},
		{"absent", `{"name":"Somewhere"}`, ""},
		{"nulls", `{"latitude":null,"longitude":null}`, ""},
		{"empty body", ``, ""},
		{"latitude out of range", `{"latitude":123.4,"longitude":2.3}`, auth.MessageInvalidCoordinates},
		{"longitude string out of range", `{"latitude":"10","longitude":"-200"}`, auth.MessageInvalidCoordinates},
		{"not a number", `{"latitude":"north","longitude":"2"}`, auth.MessageInvalidCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := auth.ParseCoordinates(strings.NewReader(tt.body))
			require.NoError(t, err)
			err = v.ValidateLocation(c)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Equal(t, tt.want, auth.MessageKey(err))
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		_, err := auth.ParseCoordinates(strings.NewReader(`{"latitude":`))
		require.Equal(t, auth.MessageInvalidRequestFormat, auth.MessageKey(err))
	})
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "/adventures?page=2", auth.LocalPath("/adventures?page=2", "/"))
	require.Equal(t, "/", auth.LocalPath("", "/"))
	require.Equal(t, "/", auth.LocalPath("https://evil.example", "/"))
	require.Equal(t, "/", auth.LocalPath("//evil.example/x", "/"))
	require.Equal(t, "/", auth.LocalPath("/\\evil.example", "/"))
	require.Equal(t, "/", auth.LocalPath("/ok\r\nSet-Cookie: x=1", "/"))
}

func TestParseParameters(t *testing.T) {
	t.Run("login form", func(t *testing.T) {
		form := url.Values{"username": {" alice "}, "password": {" pw "}, "totp": {"123456"}, "next": {"/map"}}
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		p := auth.ParseLoginParameters(r)
		require.Equal(t, auth.LoginParameters{Username: "alice", Password: " pw ", TOTP: "123456", Next: "/map"}, p)
	})

	t.Run("signup form", func(t *testing.T) {
		form := url.Values{
			"username":   {"bob"},
			"email":      {"bob@example.com"},
			"password1":  {"pw"},
			"password2":  {"pw"},
			"first_name": {"Bob"},
		}
		r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		p := auth.ParseSignupParameters(r)
		require.Equal(t, "bob", p.Username)
		require.Equal(t, "bob@example.com", p.Email)
		require.Equal(t, "Bob", p.FirstName)
		require.Empty(t, p.LastName)
	})
}
