package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/upstream"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	messageCSRFFailed   = "csrf_failed"
	internalServerError = "Internal Server Error"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage answers {"message": key}, the shape form actions report
// validation and upstream errors in.
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalServerError})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

// writeAuthFailure relays a non-2xx allauth answer with its first message.
func writeAuthFailure(w http.ResponseWriter, result *upstream.AuthResult) {
	message := result.Message
	if message == "" {
		message = http.StatusText(result.Status)
	}
	writeMessage(w, result.Status, message)
}

// redirectLocal sends the browser to target when it is a local path,
// otherwise to "/".
func redirectLocal(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, auth.LocalPath(target, "/"), http.StatusSeeOther)
}

// refererPath is the path and query of the Referer when it points at this
// host, so preference forms bounce back to the page they came from.
func refererPath(r *http.Request, referer string) string {
	if referer == "" {
		return "/"
	}
	u, err := url.Parse(referer)
	if err != nil {
		return "/"
	}
	if u.Host != "" && u.Host != r.Host {
		return "/"
	}
	return auth.LocalPath(u.RequestURI(), "/")
}
