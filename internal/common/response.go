package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"gochat/internal/logger"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

// WriteError maps err onto an HTTP status. AppErrors keep their reason string
// so clients can tell expected conflicts from real failures.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed", "error", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	WriteJSON(w, StatusFor(appErr.Kind), map[string]string{
		"error": appErr.Reason,
		"kind":  string(appErr.Kind),
	})
}

// StatusFor returns the HTTP status of an error kind.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ValidationError("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ValidationError("Malformed request body")
	}
	return nil
}
