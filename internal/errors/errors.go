package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard
var (
	// Authentication errors. The credentials message is shown to users verbatim
	// and must not reveal whether the login or the password was wrong.
	ErrInvalidCredentials = errors.New("Usuário ou senha inválidos")
	ErrLoginInProgress    = errors.New("login already in progress")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Session storage errors
	ErrCorruptSessionData = errors.New("corrupt session data")

	// Credential / store backend errors
	ErrTransport = errors.New("backend unavailable")

	// Record editing errors
	ErrForbidden  = errors.New("Você não tem permissão para editar este usuário")
	ErrValidation = errors.New("validation failed")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Transport marks err as a backend failure while keeping the cause in the chain.
func Transport(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, fmt.Sprintf(format, args...), err)
}

// Validation returns an ErrValidation carrying a user facing message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
