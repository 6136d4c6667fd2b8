package model

import "github.com/golang-jwt/jwt/v5"

// SlotClaims is a session-scoped JWT binding a slot to its game code.
type SlotClaims struct {
	GameCode string `json:"gameCode"`
	SlotID   string `json:"slotId"`
	jwt.RegisteredClaims
}
