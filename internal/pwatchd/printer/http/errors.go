package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	werrors "github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// writeError renders any error as the standard API error envelope.
// Domain and coded errors carry their own status mapping; everything
// else falls back to defaultStatus.
func (h *Handler) writeError(w http.ResponseWriter, err error, defaultStatus int) {
	code, message, status := mapError(err, defaultStatus)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	response := v1alpha1.Error{
		Code:    code,
		Message: message,
	}
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		h.logger.Error("failed to write error response",
			"error", encodeErr,
			"originalError", err,
		)
	}
}

// mapError resolves an error chain to an API code, message and HTTP
// status
func mapError(err error, defaultStatus int) (code, message string, status int) {
	var notFound printer.ErrNotFound
	var exists printer.ErrExists
	var invalidState printer.ErrInvalidState
	var invalidName printer.ErrInvalidName
	var invalidEndpoint printer.ErrInvalidEndpoint
	var versionMismatch printer.ErrVersionMismatch

	switch {
	case errors.As(err, &notFound):
		return "NOT_FOUND", notFound.Error(), http.StatusNotFound
	case errors.As(err, &exists):
		return "CONFLICT", exists.Error(), http.StatusConflict
	case errors.As(err, &invalidState):
		return "INVALID_STATE", invalidState.Error(), http.StatusConflict
	case errors.As(err, &invalidName):
		return "INVALID_INPUT", invalidName.Error(), http.StatusBadRequest
	case errors.As(err, &invalidEndpoint):
		return "INVALID_INPUT", invalidEndpoint.Error(), http.StatusBadRequest
	case errors.As(err, &versionMismatch):
		return "CONFLICT", "printer was modified by another request", http.StatusConflict
	}

	var coded *werrors.Error
	if errors.As(err, &coded) {
		return coded.Code, coded.Message, statusForCoded(coded, defaultStatus)
	}

	switch {
	case werrors.IsNotFound(err):
		return "NOT_FOUND", "resource not found", http.StatusNotFound
	case werrors.IsConflict(err):
		return "CONFLICT", "resource already exists", http.StatusConflict
	case werrors.IsInvalidInput(err):
		return "INVALID_INPUT", "invalid input", http.StatusBadRequest
	case werrors.IsLinkDown(err):
		return "LINK_DOWN", "printer link is not established", http.StatusBadGateway
	}

	return "INTERNAL", "an unexpected error occurred", defaultStatus
}

func statusForCoded(err *werrors.Error, defaultStatus int) int {
	switch {
	case werrors.IsNotFound(err):
		return http.StatusNotFound
	case werrors.IsConflict(err), werrors.IsVersionMismatch(err):
		return http.StatusConflict
	case werrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case werrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case werrors.IsLinkDown(err):
		return http.StatusBadGateway
	}

	// Coded errors without a sentinel keep the caller's default
	return defaultStatus
}
