// Package apperror defines the error taxonomy shared by every layer.
//
// Each constructor returns an *AppError wrapping one sentinel, so callers can
// branch with errors.Is(err, apperror.ErrValidation) no matter how many
// fmt.Errorf("...: %w") layers sit on top. The HTTP handlers translate the
// sentinels into status codes; nothing below the handlers knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a missing or empty required input (a caller bug).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrValidation marks a malformed or semantically invalid submission.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup miss the boundary should report as 404.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks missing or invalid process configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnauthorized marks a request without a usable identity.
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable, safe to show to the client
	Field   string // optional: input field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidArgument(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidArgument,
		Message: message,
		Field:   field,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
		Field:   resource,
	}
}

// Configuration reports a setting that is missing or unusable.
// These are fatal at startup and never produced per request.
func Configuration(setting, message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s: %s", setting, message),
		Field:   setting,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
