// Package errors provides a typed error carrying the reason an iteration of the
// answer loop was skipped or a collaborator failed.
package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies an AppError.
type Code int32

const (
	CodeUnspecified Code = iota
	Unknown
	Internal
	InvalidArgument
	Unavailable
	Timeout
	Cancelled
	RateLimited

	// No-op conditions: nothing to do this iteration.
	NoChange
	NoPrompt
	NoTranslation
	NoMatch

	// Collaborator failures, treated as transient by the loop.
	CaptureFailed
	OCRFailed
	TranslateFailed
	ClickFailed

	ConfigInvalid
)

var codeNames = map[Code]string{
	CodeUnspecified: "UNSPECIFIED",
	Unknown:         "UNKNOWN",
	Internal:        "INTERNAL",
	InvalidArgument: "INVALID_ARGUMENT",
	Unavailable:     "UNAVAILABLE",
	Timeout:         "TIMEOUT",
	Cancelled:       "CANCELLED",
	RateLimited:     "RATE_LIMITED",
	NoChange:        "NO_CHANGE",
	NoPrompt:        "NO_PROMPT",
	NoTranslation:   "NO_TRANSLATION",
	NoMatch:         "NO_MATCH",
	CaptureFailed:   "CAPTURE_FAILED",
	OCRFailed:       "OCR_FAILED",
	TranslateFailed: "TRANSLATE_FAILED",
	ClickFailed:     "CLICK_FAILED",
	ConfigInvalid:   "CONFIG_INVALID",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", int32(c))
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// FromGRPCError converts a gRPC error into an AppError, keeping the status
// code in metadata so callers can still tell UNAVAILABLE from INTERNAL.
func FromGRPCError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: Unknown, Message: err.Error(), Cause: err}
	}
	return (&AppError{Code: grpcToErrorCode(st.Code()), Message: st.Message(), Cause: err}).
		WithMetadata("grpc_code", st.Code().String())
}

// grpcToErrorCode maps gRPC codes back to our error codes (best effort).
func grpcToErrorCode(c codes.Code) Code {
	switch c {
	case codes.InvalidArgument:
		return InvalidArgument
	case codes.Unavailable:
		return Unavailable
	case codes.DeadlineExceeded:
		return Timeout
	case codes.Canceled:
		return Cancelled
	case codes.Internal:
		return Internal
	case codes.ResourceExhausted:
		return RateLimited
	default:
		return Unknown
	}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if err == nil {
		return CodeUnspecified
	}
	return Unknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// IsSkip reports whether err only means "nothing to do this iteration".
func IsSkip(err error) bool {
	switch CodeOf(err) {
	case NoChange, NoPrompt, NoTranslation, NoMatch:
		return true
	default:
		return false
	}
}

// IsRetryable returns true if the error is potentially retryable.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case Unavailable, Timeout, RateLimited:
		return true
	default:
		return false
	}
}
