package game

import (
	"fmt"

	"seabattle/internal/model"
)

// CanPlace decides whether a candidate ship occupying the given cells may
// be added to an existing fleet. The candidate must be a contiguous
// horizontal or vertical run inside the board, must not touch any already
// placed ship, and must keep at least one empty cell of separation in every
// direction, diagonals included.
func CanPlace(existing []model.ShipPlacement, candidate []string) error {
	if len(candidate) == 0 {
		return &ValidationError{Reason: "ship has no cells"}
	}

	rows := make([]int, len(candidate))
	cols := make([]int, len(candidate))
	for i, cell := range candidate {
		row, col, err := ParseCell(cell)
		if err != nil {
			return err
		}
		if !InBounds(row, col) {
			return &ValidationError{Reason: fmt.Sprintf("cell %s is out of bounds", cell)}
		}
		rows[i], cols[i] = row, col
	}

	if err := checkRun(rows, cols); err != nil {
		return err
	}

	// Direct collisions first, so an overlap is never misreported as a
	// buffer violation of a neighboring cell.
	occupied := FleetCells(existing)
	for i := range candidate {
		if _, taken := occupied[candidate[i]]; taken {
			return &ValidationError{Reason: fmt.Sprintf("cell %s is already occupied", candidate[i])}
		}
	}
	for i := range candidate {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				neighbor := FormatCell(rows[i]+dr, cols[i]+dc)
				if _, taken := occupied[neighbor]; taken {
					return &ValidationError{Reason: fmt.Sprintf("cell %s touches another ship", candidate[i])}
				}
			}
		}
	}
	return nil
}

// checkRun verifies the cells form a single straight contiguous run.
func checkRun(rows, cols []int) error {
	if len(rows) == 1 {
		return nil
	}
	horizontal := rows[0] == rows[1]
	for i := 1; i < len(rows); i++ {
		if horizontal {
			if rows[i] != rows[0] || cols[i] != cols[i-1]+1 {
				return &ValidationError{Reason: "ship cells must form a contiguous run"}
			}
		} else {
			if cols[i] != cols[0] || rows[i] != rows[i-1]+1 {
				return &ValidationError{Reason: "ship cells must form a contiguous run"}
			}
		}
	}
	return nil
}
