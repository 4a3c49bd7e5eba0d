package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/metrics"
	"github.com/jrsteele09/go-adventure-bff/server"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/jrsteele09/go-adventure-bff/upstream/upstreamfake"
	"github.com/jrsteele09/go-adventure-bff/users"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var alice = &users.User{PK: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice"}

func newTestServer(t *testing.T) (*server.Server, *upstreamfake.Fake) {
	t.Helper()
	fake := upstreamfake.New()
	t.Cleanup(fake.Close)

	cfg := config.New()
	m := metrics.New()
	client := upstream.New(fake.URL, fake.Client(), cfg, m)
	return server.New(cfg, client, m, server.WithNowTime(func() time.Time { return fixedNow })), fake
}

func serve(s *server.Server, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	return rec
}

func formRequest(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func getRequest(target string, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func cookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
