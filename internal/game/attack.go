package game

import (
	"math/rand"

	"seabattle/internal/model"
)

// AttackResult is the outcome of one resolved attack.
type AttackResult struct {
	Cell string `json:"cell"`
	Hit  bool   `json:"hit"`
	// Sunk names the ship kind whose last cell this attack hit, if any.
	// It is derived from the shot history, never stored.
	Sunk model.ShipKind `json:"sunk,omitempty"`
	Won  bool           `json:"won"`
}

// ResolveAttack computes the outcome of an attack against the opponent's
// fleet given the attacker's shot history so far. It assumes the target
// cell has already been checked against the history; the returned result
// reflects the history with the target appended.
func ResolveAttack(opponentFleet []model.ShipPlacement, priorShots []string, target string) AttackResult {
	res := AttackResult{Cell: target}

	shots := make(map[string]struct{}, len(priorShots)+1)
	for _, s := range priorShots {
		shots[s] = struct{}{}
	}
	shots[target] = struct{}{}

	for _, ship := range opponentFleet {
		hitThis := false
		sunk := true
		for _, c := range ship.Cells {
			if c == target {
				hitThis = true
			}
			if _, shot := shots[c]; !shot {
				sunk = false
			}
		}
		if hitThis {
			res.Hit = true
			if sunk {
				res.Sunk = ship.Info.ID
			}
		}
	}

	if res.Hit {
		res.Won = true
		for c := range FleetCells(opponentFleet) {
			if _, shot := shots[c]; !shot {
				res.Won = false
				break
			}
		}
	}
	return res
}

// RandomTarget picks a uniformly random in-bounds cell the attacker has not
// shot yet. ok is false when every cell has been attacked.
func RandomTarget(r *rand.Rand, priorShots []string) (cell string, ok bool) {
	shot := make(map[string]struct{}, len(priorShots))
	for _, s := range priorShots {
		shot[s] = struct{}{}
	}

	open := make([]string, 0, GridSize*GridSize-len(shot))
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			c := FormatCell(row, col)
			if _, taken := shot[c]; !taken {
				open = append(open, c)
			}
		}
	}
	if len(open) == 0 {
		return "", false
	}
	return open[r.Intn(len(open))], true
}
