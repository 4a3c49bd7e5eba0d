package sessions_test

import "github.com/jrsteele09/go-adventure-bff/internal/errors"

func upstreamErr(status int) error {
	return errors.Wrapf(&errors.UpstreamError{Status: status}, "[test WhoAmI]")
}
