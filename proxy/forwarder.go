// Package proxy relays browser requests to the upstream API on behalf of the
// current session.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/internal/config"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/rs/zerolog"
)

// Family is the upstream namespace a proxy route mirrors.
type Family string

const (
	FamilyAPI  Family = "api"
	FamilyAuth Family = "auth"
)

const (
	MessageCSRFFailed = "csrf_failed"

	internalServerError = "Internal Server Error"
)

// hopHeaders are connection-scoped and never forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

type Forwarder struct {
	client       *upstream.Client
	accessCookie string
}

func NewForwarder(client *upstream.Client, cfg config.SessionConfig) *Forwarder {
	return &Forwarder{
		client:       client,
		accessCookie: cfg.GetAccessCookieName(),
	}
}

// Forward sends r to /<family>/<remainder> upstream and relays the response.
// access, when non-empty, replaces whatever access cookie the browser sent.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, family Family, remainder, access string) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	path := TargetPath(family, remainder, r.Method)
	req, err := http.NewRequestWithContext(ctx, r.Method, f.client.URL(path, TargetQuery(r)), requestBody(r))
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to build upstream request")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalServerError})
		return
	}
	if hasBody(r.Method) {
		req.ContentLength = r.ContentLength
	}
	copyHeaders(req.Header, r.Header)
	req.Header.Del("Host")

	jar := cookies.JarFromRequest(r)
	if access != "" {
		jar.Set(f.accessCookie, access)
	}

	if IsMutating(r.Method) {
		csrf, err := f.client.FetchCSRF(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrUpstreamUnavailable) {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalServerError})
				return
			}
			logger.Warn().Err(err).Str("path", path).Msg("csrf fetch failed, not forwarding")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": MessageCSRFFailed})
			return
		}
		f.client.AttachCSRF(req, jar, csrf)
	} else {
		jar.Apply(req)
	}

	resp, err := f.client.Do(req, "proxy_"+string(family))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalServerError})
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if resp.StatusCode == http.StatusNoContent || r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("relaying upstream body interrupted")
	}
}

// TargetPath maps a proxy route remainder onto the upstream path. Mutating
// calls into the auth family always end in a slash, as the upstream expects.
func TargetPath(family Family, remainder, method string) string {
	path := "/" + string(family) + "/" + strings.TrimPrefix(remainder, "/")
	if family == FamilyAuth && IsMutating(method) && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

// TargetQuery keeps the inbound query and asks for JSON on GET.
func TargetQuery(r *http.Request) string {
	query := r.URL.RawQuery
	if r.Method != http.MethodGet || r.URL.Query().Has("format") {
		return query
	}
	if query != "" {
		query += "&"
	}
	return query + "format=json"
}

func IsMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func hasBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

// requestBody streams the inbound body untouched so multipart uploads survive.
func requestBody(r *http.Request) io.Reader {
	if !hasBody(r.Method) || r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	return r.Body
}

// copyHeaders replaces dst's values with src's. Set-Cookie is appended so
// cookies already written for this response survive the relay.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopHeader(name) {
			continue
		}
		if http.CanonicalHeaderKey(name) != "Set-Cookie" {
			dst.Del(name)
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isHopHeader(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
