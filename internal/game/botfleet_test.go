package game_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabattle/internal/game"
)

func TestGenerateBotFleet_Legal(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))
		fleet, err := game.GenerateBotFleet(r)
		require.NoError(t, err, "seed %d", seed)
		require.NoError(t, game.ValidateFleet(fleet), "seed %d", seed)

		// One placement per catalog kind, in catalog order.
		require.Len(t, fleet, len(game.Catalog))
		for i, info := range game.Catalog {
			assert.Equal(t, info.ID, fleet[i].Info.ID)
			assert.Len(t, fleet[i].Cells, info.Length)
		}

		assert.Len(t, game.FleetCells(fleet), game.TotalFleetCells)
	}
}

func TestGenerateBotFleet_SeparationProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	fleet, err := game.GenerateBotFleet(r)
	require.NoError(t, err)

	// Any two cells of different ships are at Chebyshev distance >= 2.
	for i := 0; i < len(fleet); i++ {
		for j := i + 1; j < len(fleet); j++ {
			for _, a := range fleet[i].Cells {
				for _, b := range fleet[j].Cells {
					ar, ac, err := game.ParseCell(a)
					require.NoError(t, err)
					br, bc, err := game.ParseCell(b)
					require.NoError(t, err)

					dist := max(abs(ar-br), abs(ac-bc))
					assert.GreaterOrEqual(t, dist, 2,
						"%s cell %s touches %s cell %s", fleet[i].Info.ID, a, fleet[j].Info.ID, b)
				}
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
