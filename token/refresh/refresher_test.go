package refresh_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/token/refresh"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/jrsteele09/go-adventure-bff/upstream/upstreamfake"
	"github.com/stretchr/testify/require"
)

func newRefresher(fake *upstreamfake.Fake) *refresh.Refresher {
	cfg := config.New()
	return refresh.NewRefresher(upstream.New(fake.URL, nil, cfg, nil), cfg, nil)
}

func TestRefresher_Refresh(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	t.Run("mints a sixty minute access credential", func(t *testing.T) {
		fake := upstreamfake.New()
		defer fake.Close()
		fake.Refresh["refresh-1"] = "access-2"

		tok, err := newRefresher(fake).Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)
		require.Equal(t, "access-2", tok.AccessToken)
		require.Equal(t, now.Add(60*time.Minute), tok.Expiry)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointCSRF))
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointRefresh))
	})

	t.Run("rejected refresh credential is not retried", func(t *testing.T) {
		fake := upstreamfake.New()
		defer fake.Close()

		tok, err := newRefresher(fake).Refresh(context.Background(), "revoked")
		require.Nil(t, tok)
		require.ErrorIs(t, err, errors.ErrRefreshFailed)
		require.Equal(t, 1, fake.Calls(upstreamfake.EndpointRefresh))
	})

	t.Run("csrf failure skips the refresh call", func(t *testing.T) {
		fake := upstreamfake.New()
		defer fake.Close()
		fake.CSRFStatus = http.StatusInternalServerError
		fake.Refresh["refresh-1"] = "access-2"

		_, err := newRefresher(fake).Refresh(context.Background(), "refresh-1")
		require.ErrorIs(t, err, errors.ErrRefreshFailed)
		require.Zero(t, fake.Calls(upstreamfake.EndpointRefresh))
	})

	t.Run("empty credential makes no calls", func(t *testing.T) {
		fake := upstreamfake.New()
		defer fake.Close()

		_, err := newRefresher(fake).Refresh(context.Background(), "")
		require.ErrorIs(t, err, errors.ErrRefreshFailed)
		require.Zero(t, fake.TotalCalls())
	})

	t.Run("transport failure", func(t *testing.T) {
		fake := upstreamfake.New()
		fake.Close()

		_, err := newRefresher(fake).Refresh(context.Background(), "refresh-1")
		require.ErrorIs(t, err, errors.ErrRefreshFailed)
	})
}
