package services

import (
	"errors"
	"strings"
)

// Service-boundary errors. Handlers map these to HTTP status codes; anything
// else coming out of a service is treated as an internal error and never
// leaked to the client.
var (
	// ErrInvalidCredentials deliberately covers both "no such email" and
	// "wrong password" so login responses cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateEmail is surfaced as 400, matching the original API.
	ErrDuplicateEmail = errors.New("email already in use")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrSelfRating: a host may never rate their own home.
	ErrSelfRating = errors.New("you cannot rate your own home")

	// ErrInvalidOrExpiredCode covers wrong and expired codes without
	// distinguishing them externally.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired OTP")

	ErrAccountNotFound = errors.New("account not found")

	// ErrDeliveryFailed: the OTP email could not be sent. The stored code
	// stays valid regardless of delivery outcome.
	ErrDeliveryFailed = errors.New("failed to send email")
)

// ValidationError collects per-field messages for malformed input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// AsValidation returns the ValidationError inside err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
