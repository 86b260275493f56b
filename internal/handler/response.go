// Package handler translates HTTP requests into service calls and service
// results into the JSON envelope the front end expects:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/apperror"
)

// Error codes in the response envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "AUTH_REQUIRED"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure here can only be a
	// dropped connection.
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeDataMessage(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

// writeError maps err onto a status and code.
//
// ERROR MAPPING:
// Services never pick HTTP statuses. They return apperror values wrapping a
// sentinel, and errors.Is finds the sentinel through any number of
// fmt.Errorf("...: %w") layers:
//
//	ErrValidation      → 400 VALIDATION_ERROR
//	ErrInvalidArgument → 400 BAD_REQUEST
//	ErrNotFound        → 404 NOT_FOUND
//	ErrUnauthorized    → 401 AUTH_REQUIRED
//	anything else      → 500 INTERNAL_SERVER_ERROR
//
// Only the 500s are logged here, and their details never reach the client:
// a storage error message can name tables or hosts.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, code = http.StatusBadRequest, CodeValidation
	case errors.Is(err, apperror.ErrInvalidArgument):
		status, code = http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperror.ErrUnauthorized):
		status, code = http.StatusUnauthorized, CodeUnauthorized
	}

	message := "An unexpected error occurred while processing the request"
	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// ErrorWriter adapts writeError for middleware outside this package
// (auth.SyncUser, auth.RequireUser).
func ErrorWriter(logger *zap.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, logger, err)
	}
}

// NotFound answers unknown API routes, echoing the path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: errorBody{
		Code:    CodeNotFound,
		Message: "The requested API endpoint does not exist",
		Path:    r.URL.Path,
	}})
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Type mismatches on a known
// field come back as a validation error naming that field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, fieldMessages map[string]string) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			if msg, ok := fieldMessages[typeErr.Field]; ok {
				return apperror.ValidationFailed(typeErr.Field, msg)
			}
			return apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "Request body is required")
		default:
			return apperror.ValidationFailed("body", "Request body must be valid JSON")
		}
	}
	return nil
}
