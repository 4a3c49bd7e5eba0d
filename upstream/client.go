// Package upstream talks to the REST API that owns all accounts and domain
// data. Every call is made on behalf of one inbound browser request.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/internal/metrics"
	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response is buffered.
const maxErrorBody = 1 << 20

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	baseURL string
	http    *http.Client
	session config.SessionConfig
	metrics *metrics.Metrics
}

func New(baseURL string, httpClient *http.Client, session config.SessionConfig, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
		metrics: m,
	}
}

// NewFromConfig builds the client main uses. Redirects are never followed so
// upstream 3xx responses reach the browser untouched.
func NewFromConfig(cfg config.Config, m *metrics.Metrics) *Client {
	httpClient := &http.Client{
		Timeout: cfg.GetUpstreamTimeout(),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return New(cfg.GetServerURL(), httpClient, cfg, m)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path (which must start with '/') and an optional raw query onto
// the base URL.
func (c *Client) URL(path, rawQuery string) string {
	u := c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, ""), body)
	if err != nil {
		return nil, errors.Wrapf(err, "[upstream] build %s %s", method, path)
	}
	return req, nil
}

// Do sends req. Transport failures are wrapped in ErrUpstreamUnavailable; any
// HTTP response, whatever its status, is returned to the caller.
func (c *Client) Do(req *http.Request, endpoint string) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(endpoint, 0)
		zerolog.Ctx(req.Context()).Warn().Err(err).Str("endpoint", endpoint).Msg("upstream request failed")
		return nil, errors.Wrapf(errors.ErrUpstreamUnavailable, "[upstream] %s: %v", endpoint, err)
	}
	c.metrics.UpstreamRequest(endpoint, resp.StatusCode)
	zerolog.Ctx(req.Context()).Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("upstream response")
	return resp, nil
}

// AttachCSRF puts token where the upstream double-submit check looks for it:
// the CSRF header and the CSRF cookie of jar. The jar is applied to req.
func (c *Client) AttachCSRF(req *http.Request, jar *cookies.Jar, token string) {
	req.Header.Set(c.session.GetCSRFHeaderName(), token)
	req.Header.Set("Referer", c.baseURL)
	jar.Set(c.session.GetCSRFCookieName(), token)
	jar.Apply(req)
}

// PostJSON sends payload as JSON with the CSRF token attached.
func (c *Client) PostJSON(ctx context.Context, path, endpoint string, payload any, jar *cookies.Jar, csrf string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[upstream] encode %s", endpoint)
	}
	req, err := c.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if jar == nil {
		jar = cookies.NewJar()
	}
	c.AttachCSRF(req, jar, csrf)
	return c.Do(req, endpoint)
}

// GetJSON decodes a 2xx JSON response into out. A non-2xx response becomes
// an *errors.UpstreamError.
func (c *Client) GetJSON(ctx context.Context, path, rawQuery, endpoint string, jar *cookies.Jar, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path, rawQuery), nil)
	if err != nil {
		return errors.Wrapf(err, "[upstream] build %s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if jar != nil {
		jar.Apply(req)
	}
	resp, err := c.Do(req, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[upstream] decode %s", endpoint)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &errors.UpstreamError{Status: resp.StatusCode, Body: body}
}
