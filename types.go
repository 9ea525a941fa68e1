package sitesearch

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode represents specific error codes for search operations.
type ErrorCode int

const (
	// ErrCodeNetwork is returned when the request could not complete.
	ErrCodeNetwork ErrorCode = iota + 1000

	// ErrCodeService is returned when the service answered with an error payload.
	ErrCodeService

	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption

	// ErrCodeTimeout is returned when a search operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the search backend cannot be reached or configured.
	ErrCodeBackendUnavailable
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeNetwork:
		return "network error"
	case ErrCodeService:
		return "service error"
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by search operations.
var (
	// ErrNetwork is returned when the request could not complete.
	ErrNetwork = newErrorWithCode(ErrCodeNetwork, "sitesearch: network error")

	// ErrService is returned when the response carried an errors payload or was unusable.
	ErrService = newErrorWithCode(ErrCodeService, "sitesearch: service error")

	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "sitesearch: invalid option")

	// ErrTimeout is returned when a search operation times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "sitesearch: operation timed out")

	// ErrCanceled is returned when a search operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "sitesearch: operation canceled")

	// ErrBackendUnavailable is returned when the search backend is unavailable.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "sitesearch: backend unavailable")
)

// ErrorKind is the coarse classification the widget reports on.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindNetwork means the request never produced a usable response.
	KindNetwork
	// KindService means a response arrived but carried errors.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "NetworkError"
	case KindService:
		return "ServiceError"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Timeouts, cancellations and unreachable backends count
// as network errors; anything else that is not nil counts as a service error.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNetwork),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrCanceled),
		errors.Is(err, ErrBackendUnavailable):
		return KindNetwork
	default:
		return KindService
	}
}

// ServiceError carries the messages of an errors payload. It unwraps to ErrService.
type ServiceError struct {
	Messages []string
}

func (e *ServiceError) Error() string {
	switch len(e.Messages) {
	case 0:
		return "sitesearch: service returned errors"
	case 1:
		return "sitesearch: service error: " + e.Messages[0]
	default:
		return fmt.Sprintf("sitesearch: service error: %s (and %d more)", e.Messages[0], len(e.Messages)-1)
	}
}

func (e *ServiceError) Unwrap() error {
	return ErrService
}

// NewServiceError builds a ServiceError from the payload messages.
func NewServiceError(messages ...string) error {
	return &ServiceError{Messages: messages}
}
