// Package errs defines the error taxonomy shared by the registry and
// provider layers.
//
// Five failure classes exist:
//   - NotFound: an object identity is absent from the registry
//   - VersionConflict: an optimistic-concurrency check failed
//   - InvalidType: fields do not match the declared type shape
//   - Immutable: a write targeted a frozen object
//   - Unimplemented: a placeholder backend operation was invoked
//
// Each class has a sentinel for errors.Is checks and a concrete type for
// errors.As when callers need the attached detail.
package errs

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. Concrete error types below unwrap to
// these, so callers never need to depend on the concrete types unless they
// want the detail fields.
var (
	ErrNotFound        = errors.New("object not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalidType     = errors.New("invalid type")
	ErrImmutable       = errors.New("object is immutable")
	ErrUnimplemented   = errors.New("provider operation not implemented")
)

// NotFoundError reports an identity absent from the registry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound creates a NotFoundError for an object identity.
func NotFound(id string) error {
	return &NotFoundError{ID: id}
}

// VersionConflictError reports a stale expected version on mutation.
type VersionConflictError struct {
	ID       string
	Expected uint64
	Actual   uint64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("object %s version conflict: expected %d, at %d", e.ID, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// VersionConflict creates a VersionConflictError.
func VersionConflict(id string, expected, actual uint64) error {
	return &VersionConflictError{ID: id, Expected: expected, Actual: actual}
}

// InvalidTypeError reports fields that violate a declared type shape.
type InvalidTypeError struct {
	Tag    string
	Reason string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("type %s: %s", e.Tag, e.Reason)
}

func (e *InvalidTypeError) Unwrap() error { return ErrInvalidType }

// InvalidType creates an InvalidTypeError.
func InvalidType(tag, format string, args ...interface{}) error {
	return &InvalidTypeError{Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

// ImmutableError reports a write against a frozen object.
type ImmutableError struct {
	ID string
}

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("object %s is immutable", e.ID)
}

func (e *ImmutableError) Unwrap() error { return ErrImmutable }

// Immutable creates an ImmutableError for an object identity.
func Immutable(id string) error {
	return &ImmutableError{ID: id}
}

// UnimplementedError reports a call into a placeholder backend. Op names the
// attempted operation so misuse surfaces unambiguously in logs.
type UnimplementedError struct {
	Op string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("provider operation %s not implemented", e.Op)
}

func (e *UnimplementedError) Unwrap() error { return ErrUnimplemented }

// Unimplemented creates an UnimplementedError for the named operation.
func Unimplemented(op string) error {
	return &UnimplementedError{Op: op}
}
