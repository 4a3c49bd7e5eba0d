package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/proxy"
	"github.com/jrsteele09/go-adventure-bff/sessions"
	"github.com/jrsteele09/go-adventure-bff/users"
)

// maxGuardedBody is the largest location payload inspected before forwarding.
// Larger bodies are forwarded unchecked.
const maxGuardedBody = 1 << 20

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CurrentUserHandler returns the resolved user (GET /user).
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := users.FromContext(r.Context())
		if user == nil {
			writeUnauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ThemePreferenceHandler() http.HandlerFunc {
	return s.preferenceHandler("theme", themeCookieName, s.validator.ValidateTheme)
}

func (s *Server) LocalePreferenceHandler() http.HandlerFunc {
	return s.preferenceHandler("locale", localeCookieName, s.validator.ValidateLocale)
}

func (s *Server) preferenceHandler(field, cookieName string, validate func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := auth.ParsePreferenceParameters(r, field)
		if err := validate(params.Value); err != nil {
			writeMessage(w, http.StatusBadRequest, auth.MessageKey(err))
			return
		}
		http.SetCookie(w, s.policy.Preference(r, cookieName, params.Value, s.nowTime()))
		http.Redirect(w, r, refererPath(r, params.Referer), http.StatusSeeOther)
	}
}

// ProxyHandler relays /<family>/... to the same path upstream with the
// session's access credential.
func (s *Server) ProxyHandler(family proxy.Family) http.HandlerFunc {
	prefix := "/" + string(family) + "/"
	return func(w http.ResponseWriter, r *http.Request) {
		remainder := strings.TrimPrefix(r.URL.EscapedPath(), prefix)
		s.forwarder.Forward(w, r, family, remainder, sessions.AccessFromContext(r.Context()))
	}
}

// LocationGuardMiddleware rejects JSON location writes whose coordinates are
// out of range. The body is put back unchanged for the forwarder.
func (s *Server) LocationGuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" || r.Body == nil || r.Body == http.NoBody {
			next(w, r)
			return
		}

		head, err := io.ReadAll(io.LimitReader(r.Body, maxGuardedBody+1))
		if err != nil {
			writeInternalError(w)
			return
		}
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
		if len(head) > maxGuardedBody {
			next(w, r)
			return
		}

		coords, err := auth.ParseCoordinates(bytes.NewReader(head))
		if err == nil {
			err = s.validator.ValidateLocation(coords)
		}
		if err != nil {
			writeMessage(w, http.StatusBadRequest, auth.MessageKey(err))
			return
		}
		next(w, r)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}
