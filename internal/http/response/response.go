// Package response provides standardized HTTP response formatting and error handling utilities.
//
// Every response is an envelope: {"ok":true,"data":...} on success,
// {"ok":false,"error":{"message":...,"code":...}} on failure. Clients branch
// on the ok flag and on the machine-readable code, never on the message.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	apperrors "github.com/rankdeck/rankdeck-server/internal/errors"
)

// Envelope is the top-level response structure.
type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the wire form of a failure.
type ErrorBody struct {
	Message string         `json:"message"`
	Code    apperrors.Code `json:"code"`
	Details any            `json:"details,omitempty"`
}

// JSON writes a success envelope with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		OK:   true,
		Data: data,
	}

	// json/v2 MarshalWrite doesn't add a newline, but that's fine for HTTP responses.
	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// Error writes an error envelope with the given status, message, and code.
func Error(w http.ResponseWriter, status int, message string, code apperrors.Code, logger *slog.Logger) {
	ErrorWithDetails(w, status, message, code, nil, logger)
}

// ErrorWithDetails writes an error envelope carrying structured details,
// typically per-field validation messages.
func ErrorWithDetails(w http.ResponseWriter, status int, message string, code apperrors.Code, details any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		OK: false,
		Error: &ErrorBody{
			Message: message,
			Code:    code,
			Details: details,
		},
	}

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode error response", "error", err)
		}
	}
}

// HandleError writes an appropriate HTTP response based on the error type.
// Coded errors carry their own status and code; anything else becomes a 500
// with the caller's fallback code and a generic message, so internal detail
// never leaks to clients.
func HandleError(w http.ResponseWriter, err error, fallback apperrors.Code, logger *slog.Logger) {
	var appErr *apperrors.Error
	if apperrors.As(err, &appErr) {
		ErrorWithDetails(w, appErr.HTTPStatus(), appErr.Message, appErr.Code, appErr.Details, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err, "code", fallback)
	}
	Error(w, http.StatusInternalServerError, "Internal server error", fallback, logger)
}
