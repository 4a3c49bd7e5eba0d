package sessions

import (
	"context"

	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/internal/metrics"
	"github.com/jrsteele09/go-adventure-bff/token"
	"github.com/jrsteele09/go-adventure-bff/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type WhoAmIer interface {
	WhoAmI(ctx context.Context, access string) (*users.User, error)
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshCredential string) (*oauth2.Token, error)
}

// Credentials are the two credential cookies as the browser sent them.
type Credentials struct {
	Access  string
	Refresh string
}

// Outcome is what the resolver decided for one request. The caller applies
// it: Clear deletes both credential cookies, otherwise a non-nil Minted
// replaces the access cookie.
type Outcome struct {
	User   *users.User
	Access string // credential that authenticated User, if any
	Minted *oauth2.Token
	Clear  bool
}

// Resolver determines the current user for a request. It keeps no state
// between requests.
type Resolver struct {
	upstream  WhoAmIer
	refresher TokenRefresher
	metrics   *metrics.Metrics
}

func NewResolver(upstream WhoAmIer, refresher TokenRefresher, m *metrics.Metrics) *Resolver {
	return &Resolver{
		upstream:  upstream,
		refresher: refresher,
		metrics:   m,
	}
}

// Resolve runs at most one refresh-and-retry. Any unexpected failure,
// including a panic, fails closed: no user, both cookies cleared.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (out Outcome) {
	logger := zerolog.Ctx(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("session resolution panicked")
			out = r.cleared()
		}
	}()

	access := creds.Access
	if access != "" && token.Expired(access) {
		logger.Debug().Msg("access credential expired, treating as absent")
		access = ""
	}

	if access == "" && creds.Refresh == "" {
		if creds.Access != "" {
			return r.cleared()
		}
		r.metrics.Session(metrics.SessionAnonymous)
		return Outcome{}
	}

	var minted *oauth2.Token
	if access == "" {
		tok, err := r.refresher.Refresh(ctx, creds.Refresh)
		if err != nil {
			return r.cleared()
		}
		minted = tok
		access = tok.AccessToken
	}

	user, err := r.upstream.WhoAmI(ctx, access)
	if err == nil {
		return r.resolved(user, access, minted)
	}
	if errors.Is(err, errors.ErrUpstreamUnavailable) {
		logger.Warn().Err(err).Msg("session resolution failed")
		return r.cleared()
	}
	logger.Debug().Err(err).Msg("access credential not accepted, refreshing")

	// The credential we just minted was rejected; a second refresh would be
	// a second retry.
	if minted != nil || creds.Refresh == "" {
		return r.cleared()
	}

	tok, err := r.refresher.Refresh(ctx, creds.Refresh)
	if err != nil {
		return r.cleared()
	}
	user, err = r.upstream.WhoAmI(ctx, tok.AccessToken)
	if err != nil {
		logger.Info().Err(err).Msg("refreshed access credential rejected")
		return r.cleared()
	}
	return r.resolved(user, tok.AccessToken, tok)
}

func (r *Resolver) resolved(user *users.User, access string, minted *oauth2.Token) Outcome {
	if minted != nil {
		r.metrics.Session(metrics.SessionRefreshed)
	} else {
		r.metrics.Session(metrics.SessionAuthenticated)
	}
	return Outcome{User: user, Access: access, Minted: minted}
}

func (r *Resolver) cleared() Outcome {
	r.metrics.Session(metrics.SessionCleared)
	return Outcome{Clear: true}
}
