package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
)

const (
	allauthLoginPath   = "/_allauth/browser/v1/auth/login"
	allauthMFAPath     = "/_allauth/browser/v1/auth/2fa/authenticate"
	allauthSignupPath  = "/_allauth/browser/v1/auth/signup"
	allauthSessionPath = "/_allauth/browser/v1/auth/session"

	mfaAuthenticateFlow = "mfa_authenticate"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type mfaRequest struct {
	Code string `json:"code"`
}

// AuthResult describes an allauth response. Non-2xx statuses are not Go
// errors here: a 401 asking for a second factor is a normal step of login.
type AuthResult struct {
	Status int

	// Session is the upstream session cookie, when one was issued.
	Session    cookies.Record
	HasSession bool

	// Cookies holds every cookie the upstream set, for follow-up calls that
	// must continue the same upstream session (e.g. a pending MFA login).
	Cookies *cookies.Jar

	MFARequired bool
	Message     string
	Body        []byte
}

func (r *AuthResult) OK() bool {
	return isSuccess(r.Status)
}

// Err is nil for a 2xx answer, ErrMFARequired when a second factor is
// pending, and an *errors.UpstreamError otherwise.
func (r *AuthResult) Err() error {
	switch {
	case r.OK():
		return nil
	case r.MFARequired:
		return errors.Wrapf(errors.ErrMFARequired, "[upstream] login pending")
	}
	return &errors.UpstreamError{Status: r.Status, Body: r.Body}
}

type allauthEnvelope struct {
	Data struct {
		Flows []struct {
			ID        string `json:"id"`
			IsPending bool   `json:"is_pending"`
		} `json:"flows"`
	} `json:"data"`
}

// Login submits username and password.
func (c *Client) Login(ctx context.Context, csrf string, login LoginRequest) (*AuthResult, error) {
	resp, err := c.PostJSON(ctx, allauthLoginPath, "login", login, nil, csrf)
	if err != nil {
		return nil, err
	}
	return c.authResult(resp)
}

// AuthenticateMFA completes a pending login with a TOTP code. pending must
// carry the cookies returned by the Login call that asked for the code.
func (c *Client) AuthenticateMFA(ctx context.Context, csrf string, pending *cookies.Jar, code string) (*AuthResult, error) {
	resp, err := c.PostJSON(ctx, allauthMFAPath, "mfa", mfaRequest{Code: code}, pending, csrf)
	if err != nil {
		return nil, err
	}
	return c.authResult(resp)
}

func (c *Client) Signup(ctx context.Context, csrf string, signup SignupRequest) (*AuthResult, error) {
	resp, err := c.PostJSON(ctx, allauthSignupPath, "signup", signup, nil, csrf)
	if err != nil {
		return nil, err
	}
	return c.authResult(resp)
}

// Logout ends the upstream session identified by session.
func (c *Client) Logout(ctx context.Context, csrf, session string) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, allauthSessionPath, nil)
	if err != nil {
		return err
	}
	jar := cookies.NewJar()
	jar.Set(c.session.GetRefreshCookieName(), session)
	c.AttachCSRF(req, jar, csrf)

	resp, err := c.Do(req, "logout")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// allauth answers a successful logout with 401: the session is gone.
	if isSuccess(resp.StatusCode) || resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return errors.Wrapf(errorFromResponse(resp), "[upstream Logout]")
}

func (c *Client) authResult(resp *http.Response) (*AuthResult, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "[upstream] read auth response: %v", err)
	}

	result := &AuthResult{
		Status:  resp.StatusCode,
		Cookies: cookies.NewJar(),
		Body:    body,
	}
	for _, ck := range resp.Cookies() {
		result.Cookies.Set(ck.Name, ck.Value)
	}
	result.Session, result.HasSession = cookies.FindSetCookie(resp.Header, c.session.GetRefreshCookieName())

	if !result.OK() {
		result.Message = FirstError(body)
		result.MFARequired = resp.StatusCode == http.StatusUnauthorized && pendingMFA(body)
	}
	return result, nil
}

func pendingMFA(body []byte) bool {
	var envelope allauthEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	for _, flow := range envelope.Data.Flows {
		if flow.ID == mfaAuthenticateFlow && flow.IsPending {
			return true
		}
	}
	return false
}
