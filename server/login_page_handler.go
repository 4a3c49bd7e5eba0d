package server

import (
	"net/http"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/rs/zerolog"
)

// mfaRequiredResponse tells the login form to ask for a TOTP code and resubmit.
type mfaRequiredResponse struct {
	MFARequired bool   `json:"mfa_required"`
	Username    string `json:"username,omitempty"`
	Message     string `json:"message,omitempty"`
}

// LoginHandler processes the login form submission (POST /login). A login
// that needs a second factor answers 401 mfa_required; the browser then
// resubmits the same form with a totp field.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		params := auth.ParseLoginParameters(r)
		if err := s.validator.ValidateLogin(params); err != nil {
			writeMessage(w, http.StatusBadRequest, auth.MessageKey(err))
			return
		}

		csrf, err := s.upstream.FetchCSRF(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("login: csrf fetch failed")
			writeMessage(w, http.StatusInternalServerError, messageCSRFFailed)
			return
		}

		result, err := s.upstream.Login(ctx, csrf, upstream.LoginRequest{Username: params.Username, Password: params.Password})
		if err != nil {
			logger.Err(err).Msg("login: upstream call failed")
			writeInternalError(w)
			return
		}
		switch err := result.Err(); {
		case err == nil:
			s.completeLogin(w, r, result, params.Next)
		case !errors.Is(err, errors.ErrMFARequired):
			writeAuthFailure(w, result)
		case params.TOTP == "":
			writeJSON(w, http.StatusUnauthorized, mfaRequiredResponse{MFARequired: true, Username: params.Username})
		default:
			s.authenticateMFA(w, r, result, params)
		}
	}
}

// authenticateMFA completes a pending login with the submitted TOTP code.
func (s *Server) authenticateMFA(w http.ResponseWriter, r *http.Request, pending *upstream.AuthResult, params auth.LoginParameters) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	csrf, err := s.upstream.FetchCSRF(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("mfa: csrf fetch failed")
		writeMessage(w, http.StatusInternalServerError, messageCSRFFailed)
		return
	}

	result, err := s.upstream.AuthenticateMFA(ctx, csrf, pending.Cookies, params.TOTP)
	if err != nil {
		logger.Err(err).Msg("mfa: upstream call failed")
		writeInternalError(w)
		return
	}
	if result.OK() {
		s.completeLogin(w, r, result, params.Next)
		return
	}

	message := result.Message
	if message == "" {
		message = auth.MessageInvalidTOTP
	}
	writeJSON(w, http.StatusUnauthorized, mfaRequiredResponse{MFARequired: true, Message: message})
}

// completeLogin stores the upstream session as the refresh credential and
// drops any access credential left over from a previous session.
func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request, result *upstream.AuthResult, next string) {
	if !result.HasSession {
		zerolog.Ctx(r.Context()).Error().Int("status", result.Status).Msg("upstream accepted credentials but set no session cookie")
		writeInternalError(w)
		return
	}
	http.SetCookie(w, s.policy.Refresh(r, result.Session, s.nowTime()))
	http.SetCookie(w, s.policy.ExpireAccess(r))
	redirectLocal(w, r, next)
}

// LogoutHandler ends the upstream session on a best-effort basis and always
// clears both credential cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		if session := cookieValue(r, s.policy.RefreshName); session != "" {
			if csrf, err := s.upstream.FetchCSRF(ctx); err != nil {
				logger.Warn().Err(err).Msg("logout: csrf fetch failed, skipping upstream logout")
			} else if err := s.upstream.Logout(ctx, csrf, session); err != nil {
				logger.Warn().Err(err).Msg("logout: upstream logout failed")
			}
		}

		http.SetCookie(w, s.policy.ExpireAccess(r))
		http.SetCookie(w, s.policy.ExpireRefresh(r))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
