package game

import (
	"fmt"
	"strconv"
	"strings"
)

// GridSize is the side length of the square board. Rows and columns are
// addressed 0..GridSize-1.
const GridSize = 10

// FormatCell returns the canonical "row-col" form of a coordinate.
func FormatCell(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// ParseCell parses a canonical "row-col" cell. It does not bounds-check;
// use InBounds for that.
func ParseCell(cell string) (row, col int, err error) {
	r, c, ok := strings.Cut(cell, "-")
	if ok {
		var rerr, cerr error
		row, rerr = strconv.Atoi(r)
		col, cerr = strconv.Atoi(c)
		if rerr == nil && cerr == nil {
			return row, col, nil
		}
	}
	return 0, 0, &ValidationError{Reason: fmt.Sprintf("malformed cell %q", cell)}
}

// InBounds reports whether the coordinate lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}
