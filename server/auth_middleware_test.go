package server_test

import (
	"net/http"
	"testing"

	"github.com/jrsteele09/go-adventure-bff/upstream/upstreamfake"
	"github.com/jrsteele09/go-adventure-bff/users"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware(t *testing.T) {
	t.Run("no credentials makes no upstream calls", func(t *testing.T) {
		s, fake := newTestServer(t)

		rec := serve(s, getRequest("/user"))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		require.Zero(t, fake.TotalCalls())
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("valid access credential resolves the user", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.Users["access-1"] = alice

		rec := serve(s, getRequest("/user", cookie("auth", "access-1")))

		require.Equal(t, http.StatusOK, rec.Code)
		var got users.User
		decodeBody(t, rec, &got)
		require.Equal(t, *alice, got)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointWhoAmI))
		require.Zero(t, fake.Calls(upstreamfake.EndpointRefresh))
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("rejected access credential is refreshed once and retried", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.Refresh["session-7"] = "access-2"
		fake.Users["access-2"] = alice

		rec := serve(s, getRequest("/user", cookie("auth", "stale"), cookie("sessionid", "session-7")))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 2, fake.Calls(upstreamfake.EndpointWhoAmI))
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointRefresh))

		access := responseCookie(t, rec, "auth")
		require.NotNil(t, access)
		require.Equal(t, "access-2", access.Value)
		require.True(t, access.HttpOnly)
		require.Equal(t, 3600, access.MaxAge)
		require.Nil(t, responseCookie(t, rec, "sessionid"))
	})

	t.Run("refresh credential alone mints an access credential", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.Refresh["session-7"] = "access-2"
		fake.Users["access-2"] = alice

		rec := serve(s, getRequest("/user", cookie("sessionid", "session-7")))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointWhoAmI))
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointRefresh))
		require.Equal(t, "access-2", responseCookie(t, rec, "auth").Value)
	})

	t.Run("failed refresh clears both cookies", func(t *testing.T) {
		s, fake := newTestServer(t)

		rec := serve(s, getRequest("/user", cookie("auth", "stale"), cookie("sessionid", "gone")))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointRefresh))
		for _, name := range []string{"auth", "sessionid"} {
			c := responseCookie(t, rec, name)
			require.NotNil(t, c, name)
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
		}
	})

	t.Run("cleared credentials are not forwarded", func(t *testing.T) {
		s, fake := newTestServer(t)

		rec := serve(s, getRequest("/api/adventures/", cookie("auth", "stale"), cookie("sessionid", "gone"), cookie("theme", "dark")))

		var echo upstreamfake.Echo
		decodeBody(t, rec, &echo)
		require.Equal(t, "theme=dark", echo.Cookie)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointAPI))
	})

	t.Run("upstream down fails closed", func(t *testing.T) {
		s, fake := newTestServer(t)
		fake.Close()

		rec := serve(s, getRequest("/user", cookie("auth", "access-1")))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Negative(t, responseCookie(t, rec, "auth").MaxAge)
	})

	t.Run("operations routes skip resolution", func(t *testing.T) {
		s, fake := newTestServer(t)

		rec := serve(s, getRequest("/health", cookie("auth", "access-1"), cookie("sessionid", "session-7")))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
		require.Zero(t, fake.TotalCalls())
	})
}

func TestRequireUser(t *testing.T) {
	t.Run("pages redirect to login", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := serve(s, getRequest("/dashboard"))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?next=%2Fdashboard", rec.Header().Get("Location"))
	})
}
