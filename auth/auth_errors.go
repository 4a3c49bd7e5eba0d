package auth

import "github.com/jrsteele09/go-adventure-bff/internal/errors"

// Message keys sent back to the browser. The UI owns their translations.
const (
	MessageMissingFields        = "missing_fields"
	MessagePasswordsDoNotMatch  = "passwords_do_not_match"
	MessageInvalidEmail         = "invalid_email"
	MessageInvalidTOTP          = "invalid_totp"
	MessageInvalidTheme         = "invalid_theme"
	MessageInvalidLocale        = "invalid_locale"
	MessageInvalidCoordinates   = "invalid_coordinates"
	MessageInvalidRequestFormat = "invalid_request_format"
)

var (
	MissingFieldsErr        = &ValidationError{Key: MessageMissingFields}
	PasswordsDontMatchErr   = &ValidationError{Key: MessagePasswordsDoNotMatch}
	InvalidEmailErr         = &ValidationError{Key: MessageInvalidEmail}
	InvalidThemeErr         = &ValidationError{Key: MessageInvalidTheme}
	InvalidLocaleErr        = &ValidationError{Key: MessageInvalidLocale}
	InvalidCoordinatesErr   = &ValidationError{Key: MessageInvalidCoordinates}
	InvalidRequestFormatErr = &ValidationError{Key: MessageInvalidRequestFormat}
)

// ValidationError is a rejected form field. It unwraps to errors.ErrValidation.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Key
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

// MessageKey returns the message key carried by err, or "" when err is not a
// validation error.
func MessageKey(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Key
	}
	return ""
}
