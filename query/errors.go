package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPermit matches every *PermitValidationError.
	ErrInvalidPermit = errors.New("invalid permit")
	// ErrUnsupportedAuth matches every *UnsupportedAuthError.
	ErrUnsupportedAuth = errors.New("unsupported authentication")
	// ErrMissingField matches every *BuilderError.
	ErrMissingField = errors.New("missing required field")
)

// PermitValidationError reports a structural problem with a raw permit.
type PermitValidationError struct {
	Field  string
	Reason string
}

func (e *PermitValidationError) Error() string {
	return fmt.Sprintf("invalid permit: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidPermit.
func (e *PermitValidationError) Is(target error) bool {
	return target == ErrInvalidPermit
}

// UnsupportedAuthError is returned when an auth method cannot be applied to a
// query shape. It indicates a builder paired with the wrong credential type.
type UnsupportedAuthError struct {
	AuthType  string
	QueryType string
	Reason    string
}

func (e *UnsupportedAuthError) Error() string {
	if e.QueryType == "" {
		return fmt.Sprintf("%s auth cannot wrap query: %s", e.AuthType, e.Reason)
	}
	return fmt.Sprintf("%s auth cannot wrap %q query: %s", e.AuthType, e.QueryType, e.Reason)
}

// Is lets errors.Is match ErrUnsupportedAuth.
func (e *UnsupportedAuthError) Is(target error) bool {
	return target == ErrUnsupportedAuth
}

// BuilderError is returned by Build when a required setter was not called.
type BuilderError struct {
	QueryType string
	Field     string
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("%s query requires %s to be set before build", e.QueryType, e.Field)
}

// Is lets errors.Is match ErrMissingField.
func (e *BuilderError) Is(target error) bool {
	return target == ErrMissingField
}
