package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"seabattle/internal/game"
	"seabattle/internal/repository"
	"seabattle/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps the engine's error taxonomy onto HTTP statuses.
// The message always names the precondition that failed so the client can
// tell "not your turn" from "cell already attacked" from "game over".
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "game changed concurrently, refresh and retry")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case game.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case game.IsIllegalTransition(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
