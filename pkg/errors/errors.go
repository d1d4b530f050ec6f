package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. The taxonomy mirrors how the
// console treats failures: local validation rejections never reach the
// network, transport failures are retryable by re-invoking the same
// operation, domain rejections carry the records service's reason
// verbatim, and processing failures belong to an exam's own lifecycle.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindTransport
	KindDomain
	KindProcessing
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindDomain:
		return "domain"
	case KindProcessing:
		return "processing"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// AppError is the failure value returned by console operations. Callers
// can always distinguish "request failed" from "no data".
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-invoking the failed operation may succeed.
// Only transport failures qualify; domain rejections and validation
// rejections will fail the same way again.
func (e *AppError) Retryable() bool {
	return e.Kind == KindTransport
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Transport(message string, err error) *AppError {
	return &AppError{Kind: KindTransport, Message: message, Err: err}
}

// Domain wraps a success=false reason from the records service. The
// message is surfaced to the caller as-is, never reinterpreted.
func Domain(message string) *AppError {
	return &AppError{Kind: KindDomain, Message: message}
}

func Processing(message string) *AppError {
	return &AppError{Kind: KindProcessing, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the Kind from any error in err's chain, defaulting to
// KindInternal for plain errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err (or anything it wraps) is a transport
// failure the caller may retry.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable()
	}
	return false
}
