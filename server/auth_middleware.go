package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/sessions"
	"github.com/jrsteele09/go-adventure-bff/users"
	"github.com/rs/zerolog"
)

// UnauthenticatedPolicy decides what a protected route does without a user.
type UnauthenticatedPolicy int

const (
	// PagePolicy redirects the browser to the login page.
	PagePolicy UnauthenticatedPolicy = iota
	// APIPolicy answers 401 with a JSON body.
	APIPolicy
)

// sessionExempt routes never touch the upstream.
var sessionExempt = map[string]bool{
	RouteHealth:  true,
	RouteMetrics: true,
}

// SessionMiddleware resolves the current user before any handler runs. The
// outcome is applied to the response cookies and to the request: a cleared
// session strips both credential cookies so nothing downstream forwards them.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionExempt[r.URL.Path] {
			next(w, r)
			return
		}

		creds := sessions.Credentials{
			Access:  cookieValue(r, s.policy.AccessName),
			Refresh: cookieValue(r, s.policy.RefreshName),
		}
		out := s.resolver.Resolve(r.Context(), creds)

		switch {
		case out.Clear:
			http.SetCookie(w, s.policy.ExpireAccess(r))
			http.SetCookie(w, s.policy.ExpireRefresh(r))
			stripCookies(r, s.policy.AccessName, s.policy.RefreshName)
		case out.Minted != nil:
			http.SetCookie(w, s.policy.Access(r, out.Minted.AccessToken, s.nowTime()))
		}

		ctx := r.Context()
		if out.User != nil {
			ctx = users.NewContext(ctx, out.User)
			ctx = sessions.WithAccess(ctx, out.Access)
			ctx = zerolog.Ctx(ctx).With().Str("username", out.User.Username).Logger().WithContext(ctx)
		}
		next(w, r.WithContext(ctx))
	}
}

// RequireUser rejects requests without a resolved user according to policy.
func (s *Server) RequireUser(policy UnauthenticatedPolicy) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if users.FromContext(r.Context()) != nil {
				next(w, r)
				return
			}
			if policy == APIPolicy {
				writeUnauthorized(w)
				return
			}
			http.Redirect(w, r, RouteLogin+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		}
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// stripCookies removes names from the request's Cookie header.
func stripCookies(r *http.Request, names ...string) {
	jar := cookies.JarFromRequest(r)
	for _, name := range names {
		jar.Delete(name)
	}
	jar.Apply(r)
}
