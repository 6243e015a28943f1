package apperror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services wrap these so handlers can map them to
// HTTP status codes with errors.Is without knowing about HTTP themselves.
var (
	ErrValidation          = errors.New("validation error")
	ErrRateLimited         = errors.New("rate limited")
	ErrNotFoundOrExpired   = errors.New("not found or expired")
	ErrInvalidCode         = errors.New("invalid code")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDeliveryFailed      = errors.New("delivery failed")
	ErrPersistence         = errors.New("persistence error")
)

// AppError carries a sentinel kind plus a user-facing message.
type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable, safe to return to the client
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns a 400-class error with a user-correctable message.
func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

// RateLimited returns a 429-class error.
func RateLimited(message string) *AppError {
	return &AppError{Err: ErrRateLimited, Message: message}
}

// NotFoundOrExpired returns a 400-class error for a missing or expired OTP.
func NotFoundOrExpired(message string) *AppError {
	return &AppError{Err: ErrNotFoundOrExpired, Message: message}
}

// InvalidCode returns a 400-class error for a code mismatch.
func InvalidCode(message string) *AppError {
	return &AppError{Err: ErrInvalidCode, Message: message}
}

// UpstreamUnavailable returns a 502-class error.
func UpstreamUnavailable(message string) *AppError {
	return &AppError{Err: ErrUpstreamUnavailable, Message: message}
}

// DeliveryFailed returns a 500-class error for a failed email send.
func DeliveryFailed(message string) *AppError {
	return &AppError{Err: ErrDeliveryFailed, Message: message}
}

// Persistence wraps a store failure. The cause is kept for logging but the
// message is what callers may expose.
func Persistence(cause error, message string) *AppError {
	return &AppError{Err: fmt.Errorf("%w: %w", ErrPersistence, cause), Message: message}
}
