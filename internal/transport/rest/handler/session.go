package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"seabattle/internal/model"
	"seabattle/internal/service"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSessionRequest is the request body for starting a new game
type CreateSessionRequest struct {
	Name string         `json:"name,omitempty"`
	Mode model.GameMode `json:"mode"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode == "" {
		req.Mode = model.ModePVP
	}

	grant, err := h.sessions.CreateSession(r.Context(), req.Name, req.Mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, grant)
}

// JoinRequest is the request body for joining a game
type JoinRequest struct {
	Name string `json:"name,omitempty"`
}

// Join handles POST /v1/sessions/{code}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.sessions.JoinSession(r.Context(), code, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, grant)
}

// Get handles GET /v1/sessions/{code}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	session, err := h.sessions.GetSession(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
