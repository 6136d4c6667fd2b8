package model

import "time"

type SessionStatus string

const (
	SessionSetup     SessionStatus = "setup"
	SessionActive    SessionStatus = "active"
	SessionFinished  SessionStatus = "finished"
	SessionAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the status admits no further gameplay mutation.
func (s SessionStatus) Terminal() bool {
	return s == SessionFinished || s == SessionAbandoned
}

type GameMode string

const (
	ModePVP GameMode = "pvp"
	ModeBot GameMode = "bot"
)

// SlotRef names one of the two player slots. The values double as the
// MongoDB field prefix for that slot, so conditional updates can address
// slot-local fields directly ("slotA.shots", "slotB.ready", ...).
type SlotRef string

const (
	SlotA SlotRef = "slotA"
	SlotB SlotRef = "slotB"
)

// PlayerSlot is one participant in a session (human or bot).
type PlayerSlot struct {
	ID         string          `json:"id" bson:"id"`
	Name       string          `json:"name,omitempty" bson:"name,omitempty"`
	Bot        bool            `json:"bot,omitempty" bson:"bot,omitempty"`
	Fleet      []ShipPlacement `json:"fleet,omitempty" bson:"fleet,omitempty"`
	Ready      bool            `json:"ready" bson:"ready"`
	Shots      []string        `json:"shots" bson:"shots"`
	Connected  bool            `json:"connected" bson:"connected"`
	LastSeenAt *time.Time      `json:"lastSeenAt,omitempty" bson:"lastSeenAt,omitempty"`
}

// HasShot reports whether the slot has already attacked the given cell.
func (p *PlayerSlot) HasShot(cell string) bool {
	for _, s := range p.Shots {
		if s == cell {
			return true
		}
	}
	return false
}

// Session is one match, identified by a short shareable code.
type Session struct {
	Code          string        `json:"code" bson:"code"`
	Mode          GameMode      `json:"mode" bson:"mode"`
	Status        SessionStatus `json:"status" bson:"status"`
	SlotA         *PlayerSlot   `json:"slotA" bson:"slotA"`
	SlotB         *PlayerSlot   `json:"slotB,omitempty" bson:"slotB,omitempty"`
	TurnOwner     string        `json:"turnOwner,omitempty" bson:"turnOwner,omitempty"`
	TurnStartedAt *time.Time    `json:"turnStartedAt,omitempty" bson:"turnStartedAt,omitempty"`
	Winner        string        `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Slot returns the slot holding the given player ID, or nil.
func (s *Session) Slot(playerID string) *PlayerSlot {
	if s.SlotA != nil && s.SlotA.ID == playerID {
		return s.SlotA
	}
	if s.SlotB != nil && s.SlotB.ID == playerID {
		return s.SlotB
	}
	return nil
}

// SlotRefOf returns which slot holds the given player ID.
func (s *Session) SlotRefOf(playerID string) (SlotRef, bool) {
	if s.SlotA != nil && s.SlotA.ID == playerID {
		return SlotA, true
	}
	if s.SlotB != nil && s.SlotB.ID == playerID {
		return SlotB, true
	}
	return "", false
}

// Opponent returns the slot opposing the given player ID, or nil.
func (s *Session) Opponent(playerID string) *PlayerSlot {
	if s.SlotA != nil && s.SlotA.ID == playerID {
		return s.SlotB
	}
	if s.SlotB != nil && s.SlotB.ID == playerID {
		return s.SlotA
	}
	return nil
}

// BothReady reports whether both slots are occupied and ready.
func (s *Session) BothReady() bool {
	return s.SlotA != nil && s.SlotA.Ready && s.SlotB != nil && s.SlotB.Ready
}
