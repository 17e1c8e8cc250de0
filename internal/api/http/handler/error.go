package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors to client-facing status+message pairs.
// Anything unrecognized is logged and returned as a generic 500 with no
// internal detail leaked.
func handleError(w http.ResponseWriter, l *logger.Logger, err error) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Message)
		return
	}

	switch {
	case errors.Is(err, model.ErrPayloadTooLarge):
		writeError(w, http.StatusBadRequest, "file too large")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, model.ErrAuthFailed):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, model.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "username already exists")
	case errors.Is(err, model.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, model.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "already exists")
	default:
		l.Error("request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
