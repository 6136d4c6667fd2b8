package game

import (
	"math/rand"

	"seabattle/internal/model"
)

// maxPlacementAttempts bounds the random sampling per ship. With a 10x10
// board and 17 fleet cells the budget is effectively never reached.
const maxPlacementAttempts = 100

// GenerateBotFleet produces a full legal fleet for a bot slot. Ships are
// placed in catalog order; for each one a random orientation and anchor
// are sampled until the run passes the same bounds, collision and
// separation checks applied to human placements.
func GenerateBotFleet(r *rand.Rand) ([]model.ShipPlacement, error) {
	fleet := make([]model.ShipPlacement, 0, len(Catalog))

	for _, info := range Catalog {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			horizontal := r.Intn(2) == 0
			row := r.Intn(GridSize)
			col := r.Intn(GridSize)

			cells := make([]string, 0, info.Length)
			for i := 0; i < info.Length; i++ {
				if horizontal {
					cells = append(cells, FormatCell(row, col+i))
				} else {
					cells = append(cells, FormatCell(row+i, col))
				}
			}

			if CanPlace(fleet, cells) != nil {
				continue
			}
			fleet = append(fleet, model.ShipPlacement{Info: info, Cells: cells})
			placed = true
			break
		}
		if !placed {
			return nil, ErrGeneratorExhausted
		}
	}
	return fleet, nil
}
