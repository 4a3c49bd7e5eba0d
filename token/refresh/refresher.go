package refresh

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/internal/metrics"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const refreshPath = "/auth/token/refresh/"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Refresher exchanges a refresh credential for a new access credential. It
// never retries; callers decide whether a failure is worth another attempt.
type Refresher struct {
	client  *upstream.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewRefresher(client *upstream.Client, cfg config.SessionConfig, m *metrics.Metrics) *Refresher {
	return &Refresher{
		client:  client,
		ttl:     cfg.GetAccessTokenExpiry(),
		metrics: m,
	}
}

// Refresh fetches a CSRF token, posts the refresh credential and returns the
// minted access credential, valid client-side for the configured TTL. Every
// failure wraps ErrRefreshFailed.
func (r *Refresher) Refresh(ctx context.Context, refreshCredential string) (*oauth2.Token, error) {
	tok, err := r.refresh(ctx, refreshCredential)
	r.metrics.Refresh(err == nil)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Msg("access credential refresh failed")
		return nil, err
	}
	return tok, nil
}

func (r *Refresher) refresh(ctx context.Context, refreshCredential string) (*oauth2.Token, error) {
	if refreshCredential == "" {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] no refresh credential")
	}

	csrf, err := r.client.FetchCSRF(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] csrf: %v", err)
	}

	resp, err := r.client.PostJSON(ctx, refreshPath, "refresh", refreshRequest{Refresh: refreshCredential}, nil, csrf)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] status %d", resp.StatusCode)
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] decode: %v", err)
	}
	if body.Access == "" {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "[Refresher] empty access credential")
	}

	return &oauth2.Token{
		AccessToken: body.Access,
		TokenType:   "Bearer",
		Expiry:      NowTimeFunc().Add(r.ttl),
	}, nil
}
