package model

// ShipKind identifies one of the five catalog ship types.
type ShipKind string

const (
	KindCarrier    ShipKind = "carrier"
	KindBattleship ShipKind = "battleship"
	KindCruiser    ShipKind = "cruiser"
	KindSubmarine  ShipKind = "submarine"
	KindDestroyer  ShipKind = "destroyer"
)

// ShipInfo describes a catalog entry.
type ShipInfo struct {
	ID     ShipKind `json:"id" bson:"id"`
	Name   string   `json:"name" bson:"name"`
	Length int      `json:"length" bson:"length"`
}

// ShipPlacement is one placed ship: its catalog entry plus the contiguous
// run of grid cells it occupies, in canonical "row-col" form.
type ShipPlacement struct {
	Info  ShipInfo `json:"info" bson:"info"`
	Cells []string `json:"cells" bson:"cells"`
}

type SlotAuth struct {
	SlotID string `json:"slotId"`
	Token  string `json:"token"`
}

// SessionGrant is returned by create/join: the committed snapshot plus the
// caller's slot identity and token.
type SessionGrant struct {
	Session *Session `json:"session"`
	SlotAuth
}
