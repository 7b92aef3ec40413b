// Error handling utilities for the admin API. Full errors are logged
// server-side; clients get generic messages to avoid leaking internals.

package admin

import (
	"errors"
	"log/slog"

	"github.com/getpressed/pressed/internal/storage"
)

// Safe error messages for client responses.
const (
	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgOperationFailed is returned for generic operation failures.
	ErrMsgOperationFailed = "Operation failed"

	// ErrMsgNotFound is returned when a resource is not found.
	ErrMsgNotFound = "Resource not found"

	// ErrMsgConflict is returned for duplicate resource conflicts.
	ErrMsgConflict = "Resource already exists"

	// ErrMsgProviderUnavailable is returned when the payment provider
	// cannot be reached.
	ErrMsgProviderUnavailable = "Payment provider is temporarily unavailable"
)

// sanitizeError logs the full error and returns a safe client message.
func sanitizeError(err error, log *slog.Logger, operation string, details ...any) string {
	if log != nil {
		args := []any{"operation", operation, "error", err}
		args = append(args, details...)
		log.Error("operation failed", args...)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return ErrMsgNotFound
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return ErrMsgConflict
	}
	return ErrMsgOperationFailed
}

// sanitizeJSONError returns a safe error message for JSON parsing errors.
func sanitizeJSONError(err error, log *slog.Logger) string {
	if log != nil {
		log.Debug("JSON parsing failed", "error", err)
	}
	return ErrMsgInvalidJSON
}
