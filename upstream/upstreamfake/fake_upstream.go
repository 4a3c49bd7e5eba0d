// Package upstreamfake is an in-process stand-in for the upstream API. It
// implements just enough of the CSRF, token, allauth and user endpoints to
// drive the session proxy, and counts every call by endpoint.
package upstreamfake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/jrsteele09/go-adventure-bff/users"
)

// Endpoint names used by Calls.
const (
	EndpointCSRF    = "csrf"
	EndpointRefresh = "refresh"
	EndpointWhoAmI  = "whoami"
	EndpointLogin   = "login"
	EndpointMFA     = "mfa"
	EndpointSignup  = "signup"
	EndpointLogout  = "logout"
	EndpointAPI     = "api"
)

const (
	csrfCookieName    = "csrftoken"
	csrfHeaderName    = "X-CSRFToken"
	accessCookieName  = "auth"
	sessionCookieName = "sessionid"
	sessionMaxAge     = 1209600
)

type Account struct {
	Password string
	TOTP     string // non-empty enables MFA
	User     users.User
}

// Echo is what the default API handler returns: a description of the
// request it received.
type Echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Query       string `json:"query"`
	Cookie      string `json:"cookie"`
	CSRF        string `json:"csrf"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type Fake struct {
	*httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	sessions map[string]string // session id -> username
	pending  map[string]string // pending MFA session id -> username
	nextID   int

	// CSRFStatus overrides the /csrf/ status when non-zero.
	CSRFStatus int
	CSRFToken  string

	// Users maps an access credential to the account it authenticates.
	Users map[string]*users.User
	// Refresh maps a refresh credential to the access credential it mints.
	Refresh map[string]string
	// Accounts maps usernames to login credentials.
	Accounts map[string]Account

	// API serves /api/ and anything else not handled above. Defaults to an
	// Echo responder.
	API http.Handler
}

func New() *Fake {
	f := &Fake{
		calls:     make(map[string]int),
		sessions:  make(map[string]string),
		pending:   make(map[string]string),
		CSRFToken: "csrf-token-1",
		Users:     make(map[string]*users.User),
		Refresh:   make(map[string]string),
		Accounts:  make(map[string]Account),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /csrf/", f.count(EndpointCSRF, f.csrf))
	mux.HandleFunc("POST /auth/token/refresh/", f.count(EndpointRefresh, f.requireCSRF(f.refresh)))
	mux.HandleFunc("GET /auth/user/", f.count(EndpointWhoAmI, f.whoAmI))
	mux.HandleFunc("POST /_allauth/browser/v1/auth/login", f.count(EndpointLogin, f.requireCSRF(f.login)))
	mux.HandleFunc("POST /_allauth/browser/v1/auth/2fa/authenticate", f.count(EndpointMFA, f.requireCSRF(f.mfa)))
	mux.HandleFunc("POST /_allauth/browser/v1/auth/signup", f.count(EndpointSignup, f.requireCSRF(f.signup)))
	mux.HandleFunc("DELETE /_allauth/browser/v1/auth/session", f.count(EndpointLogout, f.requireCSRF(f.logout)))
	mux.HandleFunc("/", f.count(EndpointAPI, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		api := f.API
		f.mu.Unlock()
		if api == nil {
			api = http.HandlerFunc(EchoHandler)
		}
		api.ServeHTTP(w, r)
	}))

	f.Server = httptest.NewServer(mux)
	return f
}

// Calls returns how many requests endpoint has received.
func (f *Fake) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// SetAPI swaps the handler behind /api/.
func (f *Fake) SetAPI(h http.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.API = h
}

// EchoHandler describes the request back as JSON.
func EchoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	writeJSON(w, http.StatusOK, Echo{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Cookie:      r.Header.Get("Cookie"),
		CSRF:        r.Header.Get(csrfHeaderName),
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
}

func (f *Fake) count(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[endpoint]++
		f.mu.Unlock()
		next(w, r)
	}
}

// requireCSRF enforces the double-submit check: header and cookie must match.
func (f *Fake) requireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(csrfCookieName)
		header := r.Header.Get(csrfHeaderName)
		if err != nil || header == "" || cookie.Value != header {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed: CSRF token missing."})
			return
		}
		next(w, r)
	}
}

func (f *Fake) csrf(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status, token := f.CSRFStatus, f.CSRFToken
	f.mu.Unlock()
	if status != 0 && status != http.StatusOK {
		writeJSON(w, status, map[string]string{"detail": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

func (f *Fake) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}
	f.mu.Lock()
	access, ok := f.Refresh[body.Refresh]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (f *Fake) whoAmI(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(accessCookieName)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	f.mu.Lock()
	u, ok := f.Users[cookie.Value]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (f *Fake) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	account, ok := f.Accounts[body.Username]
	f.mu.Unlock()
	if !ok || account.Password != body.Password {
		writeAllauthError(w, http.StatusBadRequest, "invalid_login", "The username and/or password you specified are not correct.")
		return
	}

	if account.TOTP != "" {
		id := f.newSession(f.pending, body.Username)
		setSession(w, id)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"status": http.StatusUnauthorized,
			"data": map[string]any{
				"flows": []map[string]any{{"id": "login"}, {"id": "mfa_authenticate", "is_pending": true}},
			},
			"meta": map[string]any{"is_authenticated": false},
		})
		return
	}

	f.authenticated(w, body.Username, account)
}

func (f *Fake) mfa(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		writeAllauthError(w, http.StatusConflict, "no_pending_login", "No login in progress.")
		return
	}
	f.mu.Lock()
	username, ok := f.pending[cookie.Value]
	account := f.Accounts[username]
	f.mu.Unlock()
	if !ok {
		writeAllauthError(w, http.StatusConflict, "no_pending_login", "No login in progress.")
		return
	}
	if body.Code != account.TOTP {
		writeAllauthError(w, http.StatusBadRequest, "incorrect_code", "Incorrect code.")
		return
	}

	f.mu.Lock()
	delete(f.pending, cookie.Value)
	f.mu.Unlock()
	f.authenticated(w, username, account)
}

func (f *Fake) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	_, exists := f.Accounts[body.Username]
	f.mu.Unlock()
	if exists {
		writeAllauthError(w, http.StatusBadRequest, "username_taken", "A user with that username already exists.")
		return
	}

	account := Account{
		Password: body.Password,
		User: users.User{
			Username:  body.Username,
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
		},
	}
	f.mu.Lock()
	f.Accounts[body.Username] = account
	f.mu.Unlock()
	f.authenticated(w, body.Username, account)
}

func (f *Fake) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		f.mu.Lock()
		delete(f.sessions, cookie.Value)
		f.mu.Unlock()
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"status": http.StatusUnauthorized, "meta": map[string]any{"is_authenticated": false}})
}

func (f *Fake) authenticated(w http.ResponseWriter, username string, account Account) {
	id := f.newSession(f.sessions, username)
	setSession(w, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   map[string]any{"user": account.User},
		"meta":   map[string]any{"is_authenticated": true},
	})
}

// HasSession reports whether id is a live (fully authenticated) session.
func (f *Fake) HasSession(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok
}

func (f *Fake) newSession(store map[string]string, username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("session-%d", f.nextID)
	store[id] = username
	return id
}

func setSession(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeAllauthError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"status": status,
		"errors": []map[string]string{{"code": code, "message": message}},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// IsSessionID reports whether v looks like an id this fake issued.
func IsSessionID(v string) bool {
	return strings.HasPrefix(v, "session-")
}
