package server_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-adventure-bff/upstream/upstreamfake"
	"github.com/stretchr/testify/require"
)

func signupForm() url.Values {
	return url.Values{
		"username":   {"carol"},
		"email":      {"carol@example.com"},
		"password1":  {"correct horse"},
		"password2":  {"correct horse"},
		"first_name": {"Carol"},
	}
}

func TestSignupHandler(t *testing.T) {
	t.Run("validation runs before any upstream call", func(t *testing.T) {
		tests := []struct {
			field, value, want string
		}{
			{"password2", "battery staple", "passwords_do_not_match"},
			{"email", "carol", "invalid_email"},
			{"username", "", "missing_fields"},
		}
		for _, tt := range tests {
			t.Run(tt.want, func(t *testing.T) {
				s, fake := newTestServer(t)
				form := signupForm()
				form.Set(tt.field, tt.value)

				rec := serve(s, formRequest("/signup", form))

				require.Equal(t, http.StatusBadRequest, rec.Code)
				require.JSONEq(t, `{"message":"`+tt.want+`"}`, rec.Body.String())
				require.Zero(t, fake.TotalCalls())
			})
		}
	})

	t.Run("csrf failure never calls signup", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.CSRFStatus = http.StatusInternalServerError

		rec := serve(s, formRequest("/signup", signupForm()))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"message":"csrf_failed"}`, rec.Body.String())
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointCSRF))
		require.Zero(t, fake.Calls(upstreamfake.EndpointSignup))
	})

	t.Run("success logs the new account in", func(t *testing.T) {
		s, fake := newTestServer(t)

		rec := serve(s, formRequest("/signup", signupForm()))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
		session := responseCookie(t, rec, "sessionid")
		require.NotNil(t, session)
		require.True(t, fake.HasSession(session.Value))
		require.Equal(t, "Carol", fake.Accounts["carol"].User.FirstName)
	})

	t.Run("duplicate username relays the upstream message", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.Accounts["carol"] = upstreamfake.Account{Password: "x"}

		rec := serve(s, formRequest("/signup", signupForm()))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"message":"A user with that username already exists."}`, rec.Body.String())
	})
}
