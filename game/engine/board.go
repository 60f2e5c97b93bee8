package engine

import (
	"math/rand"

	"github.com/partyline/lanboard/game/room"
)

const (
	// DefaultBoardSize is the number of cells on a generated board path.
	DefaultBoardSize = 30

	// boardColumns is the width of the snake layout the path winds over.
	boardColumns = 6

	trapRatio = 0.12
	starRatio = 0.12
)

// GenerateBoardPath builds an ordered path of size cells laid out as a
// snake over a fixed-width grid: left to right, down one row, right to
// left. The first cell is the start, the last the finish, and interior
// cells get a sprinkle of trap and star cells from rng. The path is
// immutable once stored on a room.
func GenerateBoardPath(size int, rng *rand.Rand) []room.BoardCell {
	if size < 2 {
		size = 2
	}

	cells := make([]room.BoardCell, size)
	for i := 0; i < size; i++ {
		row := i / boardColumns
		col := i % boardColumns

		x := col
		direction := "right"
		if row%2 == 1 {
			// Odd rows run right to left.
			x = boardColumns - 1 - col
			direction = "left"
		}
		if col == boardColumns-1 && i != size-1 {
			direction = "down"
		}

		cellType := room.CellPath
		switch {
		case i == 0:
			cellType = room.CellStart
		case i == size-1:
			cellType = room.CellEnd
			direction = "none"
		default:
			switch v := rng.Float64(); {
			case v < trapRatio:
				cellType = room.CellTrap
			case v < trapRatio+starRatio:
				cellType = room.CellStar
			}
		}

		cells[i] = room.BoardCell{
			ID:        i,
			X:         x,
			Y:         row,
			Type:      cellType,
			Direction: direction,
		}
	}

	return cells
}

// BouncePosition applies steps from current with reflection at the finish
// line: an overshoot bounces the player backward by the excess. The result
// is always within [0, finish].
func BouncePosition(current, steps, finish int) int {
	target := current + steps
	if target > finish {
		target = finish - (target - finish)
	}
	if target < 0 {
		target = 0
	}
	return target
}
