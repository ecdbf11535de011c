package dashboard

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindConfirmation    ErrorKind = "confirmation_required"
	KindUnavailable     ErrorKind = "unavailable"
	KindRemote          ErrorKind = "remote"
)

// MutationError is what every create/edit/delete returns on failure. The
// Message is meant for the user; Err keeps the cause for logs.
type MutationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Retryable is true when submitting the same form again may succeed.
func (e *MutationError) Retryable() bool {
	return e.Kind == KindRemote
}

var errNoIdentity = &MutationError{
	Kind:    KindUnauthenticated,
	Message: "Your session has ended. Please log in again.",
}

func invalid(message string) *MutationError {
	return &MutationError{Kind: KindValidation, Message: message}
}

func notFound(message string) *MutationError {
	return &MutationError{Kind: KindNotFound, Message: message}
}

func remoteFailure(message string, err error) *MutationError {
	return &MutationError{Kind: KindRemote, Message: message, Err: err}
}

// AsMutationError extracts a *MutationError from err, if any.
func AsMutationError(err error) (*MutationError, bool) {
	var me *MutationError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
