package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/service"
	"seabattle/internal/transport/rest/middleware"
)

// BattleHandler handles fleet setup and attack endpoints
type BattleHandler struct {
	fleet  *service.FleetService
	battle *service.BattleService
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(fleet *service.FleetService, battle *service.BattleService) *BattleHandler {
	return &BattleHandler{fleet: fleet, battle: battle}
}

// SubmitFleetRequest is the request body for submitting placements
type SubmitFleetRequest struct {
	Fleet []model.ShipPlacement `json:"fleet"`
}

// SubmitFleet handles PUT /v1/sessions/{code}/fleet
func (h *BattleHandler) SubmitFleet(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	var req SubmitFleetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.fleet.SubmitFleet(r.Context(), code, slotID, req.Fleet)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// RetractShip handles DELETE /v1/sessions/{code}/fleet/{kind}
func (h *BattleHandler) RetractShip(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	kind := model.ShipKind(vars["kind"])
	slotID := middleware.GetSlotID(r.Context())

	session, err := h.fleet.RetractShip(r.Context(), code, slotID, kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SetReady handles POST /v1/sessions/{code}/ready
func (h *BattleHandler) SetReady(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	session, err := h.fleet.SetReady(r.Context(), code, slotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// AttackRequest is the request body for an attack
type AttackRequest struct {
	Cell string `json:"cell"`
}

// AttackResponse pairs the attack outcome with the committed snapshot
type AttackResponse struct {
	Result  game.AttackResult `json:"result"`
	Session *model.Session    `json:"session"`
}

// Attack handles POST /v1/sessions/{code}/attack
func (h *BattleHandler) Attack(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	slotID := middleware.GetSlotID(r.Context())

	var req AttackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, session, err := h.battle.Attack(r.Context(), code, slotID, req.Cell)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AttackResponse{Result: result, Session: session})
}
