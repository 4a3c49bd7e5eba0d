package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestUpstreamError(t *testing.T) {
	t.Run("401 unwraps to unauthenticated", func(t *testing.T) {
		err := errors.Wrapf(&errors.UpstreamError{Status: http.StatusUnauthorized}, "whoami")
		require.True(t, errors.Is(err, errors.ErrUnauthenticated))
		require.False(t, errors.Is(err, errors.ErrUpstreamRejected))
		require.Equal(t, http.StatusUnauthorized, errors.StatusOf(err))
	})

	t.Run("500 unwraps to rejected", func(t *testing.T) {
		err := &errors.UpstreamError{Status: http.StatusInternalServerError}
		require.True(t, errors.Is(err, errors.ErrUpstreamRejected))
		require.Equal(t, "upstream returned 500 Internal Server Error", err.Error())
	})

	t.Run("plain errors carry no status", func(t *testing.T) {
		require.Zero(t, errors.StatusOf(stderrors.New("boom")))
	})
}

func TestWrapf(t *testing.T) {
	require.Nil(t, errors.Wrapf(nil, "ignored"))

	err := errors.Wrapf(errors.ErrCSRFUnavailable, "signup %s", "alice")
	require.EqualError(t, err, "signup alice: csrf token unavailable")
	require.True(t, errors.Is(err, errors.ErrCSRFUnavailable))
}
