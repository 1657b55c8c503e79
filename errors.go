package pagemirror

import (
	"context"
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECOLLISION   = "collision"
	ECONFLICT    = "conflict"
	EFILESYSTEM  = "filesystem"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	ERESTRICTED  = "restricted"
	EUNREACHABLE = "unreachable"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pagemirror error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("pagemirror error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code and message that wraps err.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// FetchErrorKind classifies why a single fetch attempt failed.
type FetchErrorKind int

const (
	// Unreachable covers name resolution and connection failures.
	Unreachable FetchErrorKind = iota + 1
	// NotFound is an HTTP 404 response.
	NotFound
	// ServerError is an HTTP 500 response.
	ServerError
	// Transient covers timeouts and any other non-2xx status.
	Transient
)

func (k FetchErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case NotFound:
		return "not found"
	case ServerError:
		return "server error"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind is worth another attempt.
func (k FetchErrorKind) Retryable() bool {
	return k == Unreachable || k == Transient
}

// FetchError is a classified failure of a single fetch attempt.
type FetchError struct {
	URL        string
	Kind       FetchErrorKind
	StatusCode int // zero for transport failures
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is worth retrying.
// Application errors such as EINVALID are deterministic and never retried.
// Other unclassified errors are treated as transient, except context
// cancellation and deadline errors from the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind.Retryable()
	}
	var e *Error
	if errors.As(err, &e) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RetryExhaustedError is returned when every attempt allowed by the retry
// budget failed with a retryable error.
type RetryExhaustedError struct {
	URL      string
	Attempts int
	Err      error // last attempt's error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s: gave up after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// AssetError records why a single asset could not be mirrored.
// It never aborts a run.
type AssetError struct {
	URL string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.URL, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
