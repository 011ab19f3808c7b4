package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/progress"
)

// Handler holds all dependencies needed by HTTP handlers. Every handler
// method receives its dependencies through this struct instead of
// package-level globals.
type Handler struct {
	engine *progress.Service
	logger *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(engine *progress.Service, logger *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON parses the request body into v. On failure it writes a 400 and
// returns false; the caller should return immediately.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// handleEngineError maps engine errors onto HTTP responses. Validation and
// not-found failures are reported as such, never masked with a default
// payload; anything else is a store failure the caller may retry. Returns
// true if an error was handled.
func (h *Handler) handleEngineError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, progress.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, progress.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("engine error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return true
}
