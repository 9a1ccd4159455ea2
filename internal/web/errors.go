package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API clients and as a plain page otherwise
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is written in the format the client expects

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/export"
	"github.com/JonMunkholm/catalog/internal/importer"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// statusFor picks the HTTP status for an error returned by the service or
// the import parser.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrMalformedBody),
		errors.Is(err, core.ErrNoRecords),
		errors.Is(err, core.ErrTooManyRecords),
		errors.Is(err, core.ErrNoValidRecords),
		errors.Is(err, importer.ErrUnsupportedFile),
		errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrMalformedFile),
		errors.Is(err, importer.ErrUnknownHeader),
		errors.Is(err, importer.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and writes a
// user-friendly response.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	respondErrorDetails(w, r, err, statusCode, nil)
}

// respondErrorDetails is respondError with extra machine-readable details,
// such as the rejected rows of an import.
func respondErrorDetails(w http.ResponseWriter, r *http.Request, err error, statusCode int, details any) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode, details)
	} else {
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int, details any) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Details: details,
	})
}

// respondErrorHTML writes a plain text error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
