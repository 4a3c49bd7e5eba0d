package server

import (
	"net/http"

	"github.com/jrsteele09/go-adventure-bff/auth"
	"github.com/jrsteele09/go-adventure-bff/upstream"
	"github.com/rs/zerolog"
)

// SignupHandler processes the signup form submission (POST /signup). Nothing
// is sent upstream until the form validates.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		params := auth.ParseSignupParameters(r)
		if err := s.validator.ValidateSignup(params); err != nil {
			writeMessage(w, http.StatusBadRequest, auth.MessageKey(err))
			return
		}

		csrf, err := s.upstream.FetchCSRF(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("signup: csrf fetch failed")
			writeMessage(w, http.StatusInternalServerError, messageCSRFFailed)
			return
		}

		result, err := s.upstream.Signup(ctx, csrf, upstream.SignupRequest{
			Username:  params.Username,
			Email:     params.Email,
			Password:  params.Password1,
			FirstName: params.FirstName,
			LastName:  params.LastName,
		})
		if err != nil {
			logger.Err(err).Msg("signup: upstream call failed")
			writeInternalError(w)
			return
		}
		if !result.OK() {
			writeAuthFailure(w, result)
			return
		}

		logger.Info().Str("username", params.Username).Msg("account created")
		s.completeLogin(w, r, result, "/")
	}
}
