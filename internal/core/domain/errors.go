package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrForbidden           = errors.New("access forbidden")
	ErrCredentialRejected  = errors.New("credential rejected")
	ErrIdentityUnavailable = errors.New("identity check unavailable")
	ErrInvalidTransition   = errors.New("invalid view transition")
)

// ValidationError carries a message meant to be shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
