package r2

import "errors"

// ErrNotFound is the sentinel for a missing object. Store implementations
// wrap it with the key; callers test with errors.Is. A missing object is not
// by itself a UsageError - what it means depends on which object was asked
// for (a missing repository config becomes ErrUnknownRepositoryLayout at the
// repository layer).
var ErrNotFound = errors.New("object not found")

// UsageError represents a typed error from store access or usage accounting.
//
// These carry an ErrorCode so callers can react per category (retry advice,
// exit codes, diagnostics) without string matching. All operations in this
// module return their failures as *UsageError values; errors are never
// swallowed internally except for the store's own bounded listing retries.
type UsageError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Key is the object key related to the error (if applicable)
	// This helps with debugging and error reporting
	Key string

	// Err is the underlying cause (if any)
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg += ": " + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a usage error.
type ErrorCode int

const (
	// ErrStoreUnavailable indicates a transient network/object-store failure
	// that persisted after bounded retries were exhausted. Re-invoking the
	// operation may succeed.
	ErrStoreUnavailable ErrorCode = iota

	// ErrAccessDenied indicates a credential or permission failure.
	// Fatal, never retried automatically.
	ErrAccessDenied

	// ErrUnknownRepositoryLayout indicates the repository config object is
	// missing, malformed, or reports an unsupported format version.
	// Fatal for the whole accounting run.
	ErrUnknownRepositoryLayout

	// ErrUnclassifiedObject indicates an object under the prefix matches no
	// known repository namespace. Fatal, surfaced with the offending key so
	// an operator can investigate.
	ErrUnclassifiedObject

	// ErrCancelled indicates the invocation was cancelled before completion.
	// No report is produced.
	ErrCancelled
)

// String returns the error category name used in diagnostics.
func (c ErrorCode) String() string {
	switch c {
	case ErrStoreUnavailable:
		return "store unavailable"
	case ErrAccessDenied:
		return "access denied"
	case ErrUnknownRepositoryLayout:
		return "unknown repository layout"
	case ErrUnclassifiedObject:
		return "unclassified object"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// ============================================================================
// Error Factory Functions
// ============================================================================
// These factory functions provide a consistent way to create common errors
// across all store implementations.

// NewStoreUnavailableError creates a UsageError for a transient store
// failure after retries were exhausted.
func NewStoreUnavailableError(message string, err error) *UsageError {
	return &UsageError{
		Code:    ErrStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewAccessDeniedError creates a UsageError for a credential or permission
// failure.
func NewAccessDeniedError(message string, err error) *UsageError {
	return &UsageError{
		Code:    ErrAccessDenied,
		Message: message,
		Err:     err,
	}
}

// NewUnknownRepositoryLayoutError creates a UsageError for a missing,
// malformed, or unsupported repository config.
func NewUnknownRepositoryLayoutError(message string, err error) *UsageError {
	return &UsageError{
		Code:    ErrUnknownRepositoryLayout,
		Message: message,
		Err:     err,
	}
}

// NewUnclassifiedObjectError creates a UsageError for an object key that
// matches no known repository namespace.
func NewUnclassifiedObjectError(key string) *UsageError {
	return &UsageError{
		Code:    ErrUnclassifiedObject,
		Message: "object matches no known repository namespace",
		Key:     key,
	}
}

// NewCancelledError creates a UsageError for a cancelled invocation.
func NewCancelledError(err error) *UsageError {
	return &UsageError{
		Code:    ErrCancelled,
		Message: "operation cancelled",
		Err:     err,
	}
}

// ============================================================================
// Error Inspection Helpers
// ============================================================================

// CodeOf extracts the ErrorCode from an error chain.
// Returns false if the chain contains no *UsageError.
func CodeOf(err error) (ErrorCode, bool) {
	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Code, true
	}
	return 0, false
}

// IsCode reports whether the error chain contains a *UsageError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsCancelled reports whether the error chain contains a cancellation.
func IsCancelled(err error) bool {
	return IsCode(err, ErrCancelled)
}
