package model

import (
	"sort"

	"github.com/pkg/errors"
)

// Pattern is a named arrangement of cells that can be stamped onto a grid
type Pattern struct {
	Name  string
	Cells [][]bool
}

var (
	// Glider travels one cell down and one cell right every 4 generations
	Glider = Pattern{Name: "glider", Cells: [][]bool{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}}

	// Blinker is a period 2 oscillator
	Blinker = Pattern{Name: "blinker", Cells: [][]bool{
		{true, true, true},
	}}

	// Block is a still life
	Block = Pattern{Name: "block", Cells: [][]bool{
		{true, true},
		{true, true},
	}}

	Toad = Pattern{Name: "toad", Cells: [][]bool{
		{false, true, true, true},
		{true, true, true, false},
	}}

	Beacon = Pattern{Name: "beacon", Cells: [][]bool{
		{true, true, false, false},
		{true, true, false, false},
		{false, false, true, true},
		{false, false, true, true},
	}}

	// LWSS is the lightweight spaceship, moving left two cells every 4 generations
	LWSS = Pattern{Name: "lwss", Cells: [][]bool{
		{false, true, false, false, true},
		{true, false, false, false, false},
		{true, false, false, false, true},
		{true, true, true, true, false},
	}}
)

var builtinPatterns = map[string]Pattern{
	Glider.Name:  Glider,
	Blinker.Name: Blinker,
	Block.Name:   Block,
	Toad.Name:    Toad,
	Beacon.Name:  Beacon,
	LWSS.Name:    LWSS,
}

// Patterns returns the built-in patterns sorted by name
func Patterns() []Pattern {
	out := make([]Pattern, 0, len(builtinPatterns))
	for _, p := range builtinPatterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPattern returns the built-in pattern with the given name
func LookupPattern(name string) (Pattern, bool) {
	p, ok := builtinPatterns[name]
	return p, ok
}

// Height returns the number of rows the pattern spans
func (p Pattern) Height() int {
	return len(p.Cells)
}

// Width returns the number of columns the pattern spans
func (p Pattern) Width() (w int) {
	for _, row := range p.Cells {
		w = max(w, len(row))
	}
	return
}

// Stamp returns a copy of the grid with the pattern's living cells set, its
// top-left corner placed at (row, col). Dead pattern cells leave the grid
// untouched. A living cell that lands outside the grid is ErrOutOfRange and
// the receiver is returned unchanged.
func (g Grid) Stamp(p Pattern, row, col int) (Grid, error) {
	next := g.clone()
	for dr, cells := range p.Cells {
		for dc, alive := range cells {
			if !alive {
				continue
			}
			r, c := row+dr, col+dc
			if !g.InBounds(r, c) {
				return g, errors.Wrapf(ErrOutOfRange, "[Stamp] %s at (%d, %d) outside %dx%d grid", p.Name, row, col, g.rows, g.cols)
			}
			next.cells[r*g.cols+c] = true
		}
	}
	return next, nil
}

// WithInterestingPatterns returns a copy of the grid seeded with gliders and
// blinkers where they fit. Patterns that do not fit are skipped.
func (g Grid) WithInterestingPatterns() Grid {
	if g.rows < 10 || g.cols < 10 {
		return g
	}
	placements := []struct {
		p        Pattern
		row, col int
	}{
		{Glider, 2, 2},
		{Glider, 2, g.cols - 8},
		{Blinker, g.rows / 4, g.cols / 4},
		{Blinker, 3 * g.rows / 4, 3 * g.cols / 4},
	}
	next := g
	for _, pl := range placements {
		if stamped, err := next.Stamp(pl.p, pl.row, pl.col); err == nil {
			next = stamped
		}
	}
	return next
}
