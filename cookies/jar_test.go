package cookies_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/stretchr/testify/require"
)

func TestJar(t *testing.T) {
	t.Run("set replaces and keeps order", func(t *testing.T) {
		jar := cookies.NewJar()
		jar.Set("auth", "old")
		jar.Set("csrftoken", "c1")
		jar.Set("auth", "new")

		v, ok := jar.Get("auth")
		require.True(t, ok)
		require.Equal(t, "new", v)
		require.Equal(t, 2, jar.Len())
		require.Equal(t, "auth=new; csrftoken=c1", jar.String())
	})

	t.Run("delete", func(t *testing.T) {
		jar := cookies.ParseJar("a=1; b=2; c=3")
		jar.Delete("b")
		jar.Delete("missing")

		_, ok := jar.Get("b")
		require.False(t, ok)
		require.Equal(t, "a=1; c=3", jar.String())
	})

	t.Run("parse skips malformed pairs", func(t *testing.T) {
		jar := cookies.ParseJar("good=1; =bad; also=2")
		require.Equal(t, "good=1; also=2", jar.String())
		require.Zero(t, cookies.ParseJar("  ").Len())
	})

	t.Run("from request and apply", func(t *testing.T) {
		in := httptest.NewRequest(http.MethodGet, "/", nil)
		in.AddCookie(&http.Cookie{Name: "auth", Value: "browser"})
		in.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

		jar := cookies.JarFromRequest(in)
		jar.Set("auth", "minted")

		out := httptest.NewRequest(http.MethodGet, "/", nil)
		out.Header.Set("Cookie", "stale=1")
		jar.Apply(out)
		require.Equal(t, "auth=minted; theme=dark", out.Header.Get("Cookie"))

		cookies.NewJar().Apply(out)
		require.Empty(t, out.Header.Get("Cookie"))
	})
}
