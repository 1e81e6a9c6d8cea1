package rules

// Offset is a (row, col) displacement from a cell to one of its neighbors
type Offset struct {
	Row int
	Col int
}

// MooreNeighborhood returns the 8 offsets surrounding a cell, excluding the cell itself
func MooreNeighborhood() []Offset {
	return []Offset{
		{0, 1},
		{0, -1},
		{1, -1},
		{-1, 1},
		{1, 1},
		{-1, -1},
		{1, 0},
		{-1, 0},
	}
}

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next state of a cell.

Fewer than 2 or more than 3 living neighbors kills the cell, a dead cell with
exactly 3 living neighbors is born, and every other cell keeps its state.
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	switch {
	case neighbors < 2 || neighbors > 3:
		return false
	case !alive && neighbors == 3:
		return true
	default:
		return alive
	}
}
