package service

import (
	"time"

	"seabattle/internal/game"
	"seabattle/internal/model"
)

// testPlacement builds one placement from the catalog entry for kind.
func testPlacement(kind model.ShipKind, cells ...string) model.ShipPlacement {
	info, ok := game.CatalogEntry(kind)
	if !ok {
		panic("unknown ship kind " + kind)
	}
	return model.ShipPlacement{Info: info, Cells: cells}
}

// testFleet is a complete, valid fleet. The destroyer sits at (2,3)-(2,4)
// so single-hit scenarios have a short ship to aim at.
func testFleet() []model.ShipPlacement {
	return []model.ShipPlacement{
		testPlacement(model.KindCarrier, "0-0", "0-1", "0-2", "0-3", "0-4"),
		testPlacement(model.KindBattleship, "5-0", "5-1", "5-2", "5-3"),
		testPlacement(model.KindCruiser, "7-0", "7-1", "7-2"),
		testPlacement(model.KindSubmarine, "9-0", "9-1", "9-2"),
		testPlacement(model.KindDestroyer, "2-3", "2-4"),
	}
}

// newActiveSession builds an active PvP session between player-a and
// player-b, both using testFleet, with player-a owning the first turn
// started at turnStart.
func newActiveSession(code string, turnStart time.Time) *model.Session {
	turnStart = turnStart.UTC()
	return &model.Session{
		Code:   code,
		Mode:   model.ModePVP,
		Status: model.SessionActive,
		SlotA: &model.PlayerSlot{
			ID:         "player-a",
			Name:       "Alice",
			Fleet:      testFleet(),
			Ready:      true,
			Shots:      []string{},
			Connected:  true,
			LastSeenAt: &turnStart,
		},
		SlotB: &model.PlayerSlot{
			ID:         "player-b",
			Name:       "Bob",
			Fleet:      testFleet(),
			Ready:      true,
			Shots:      []string{},
			Connected:  true,
			LastSeenAt: &turnStart,
		},
		TurnOwner:     "player-a",
		TurnStartedAt: &turnStart,
		CreatedAt:     turnStart,
		UpdatedAt:     turnStart,
	}
}
