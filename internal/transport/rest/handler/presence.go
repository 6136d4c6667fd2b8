package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"seabattle/internal/service"
	"seabattle/internal/transport/rest/middleware"
)

// PresenceHandler handles liveness endpoints
type PresenceHandler struct {
	presence *service.PresenceService
	sessions *service.SessionService
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presence *service.PresenceService, sessions *service.SessionService) *PresenceHandler {
	return &PresenceHandler{presence: presence, sessions: sessions}
}

// Heartbeat handles POST /v1/sessions/{code}/heartbeat
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	session, err := h.presence.Heartbeat(r.Context(), code, slotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Disconnect handles POST /v1/sessions/{code}/disconnect
func (h *PresenceHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	session, err := h.presence.MarkDisconnected(r.Context(), code, slotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// ForfeitRequest names the slot being forfeited out of the game
type ForfeitRequest struct {
	SlotID string `json:"slotId"`
}

// Forfeit handles POST /v1/sessions/{code}/forfeit
func (h *PresenceHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req ForfeitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, "slotId is required")
		return
	}

	session, err := h.presence.Forfeit(r.Context(), code, req.SlotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// OpponentPresenceResponse reports derived opponent liveness
type OpponentPresenceResponse struct {
	Connected          bool    `json:"connected"`
	DisconnectedForSec float64 `json:"disconnectedForSec"`
}

// OpponentPresence handles GET /v1/sessions/{code}/presence
func (h *PresenceHandler) OpponentPresence(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	session, err := h.sessions.GetSession(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	connected, disconnectedFor := h.presence.OpponentPresence(session, slotID, time.Now().UTC())
	writeJSON(w, http.StatusOK, OpponentPresenceResponse{
		Connected:          connected,
		DisconnectedForSec: disconnectedFor.Seconds(),
	})
}
