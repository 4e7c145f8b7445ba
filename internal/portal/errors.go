package portal

import (
	"errors"
	"sort"
	"strings"
)

// ValidationError is returned before any request is sent when user input is
// incomplete or malformed.
type ValidationError struct {
	// Message is the form-level message, if any.
	Message string
	// Fields maps a JSON field name to its message.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// DuplicateError is returned when a record with the same business key
// already exists. Nothing is written.
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

var (
	// ErrLoginRequired is returned for actions that need the registered flag.
	ErrLoginRequired = errors.New("portal: login required")
	// ErrAdminRequired is returned for admin actions without the admin flag.
	ErrAdminRequired = errors.New("portal: admin login required")
	// ErrAccountNotFound is returned by Login when no user has the email.
	ErrAccountNotFound = errors.New("portal: no account with that email")
	// ErrNotFound is returned for an unknown local id.
	ErrNotFound = errors.New("portal: not found")
)

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsDuplicate reports whether err is a *DuplicateError.
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}
