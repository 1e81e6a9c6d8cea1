package model

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when a cell coordinate falls outside the grid
var ErrOutOfRange = errors.New("cell coordinate out of range")

// ErrRaggedRows is returned when building a grid from rows of differing lengths
var ErrRaggedRows = errors.New("rows have differing lengths")

// Grid is an immutable rows x cols board of cells stored row-major with the
// origin at the top-left. Every method that changes a cell returns a new Grid,
// so a Grid value can be shared freely between goroutines.
type Grid struct {
	rows  int
	cols  int
	cells []bool
}

// Bounds is the smallest rectangle containing every living cell
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
	Valid          bool
}

// NewEmptyGrid creates a grid with every cell dead. Negative dimensions are treated as zero.
func NewEmptyGrid(rows, cols int) Grid {
	rows, cols = max(0, rows), max(0, cols)
	return Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]bool, rows*cols),
	}
}

// NewRandomGrid creates a grid where each cell is independently alive when a
// uniform draw from rng exceeds threshold. A nil rng is seeded from the clock.
func NewRandomGrid(rows, cols int, threshold float64, rng *rand.Rand) Grid {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Build(rows, cols, func(int, int) bool {
		return rng.Float64() > threshold
	})
}

// Build creates a grid whose cell at (row, col) is alive when fn reports true.
// fn is called exactly once per cell in row-major order.
func Build(rows, cols int, fn func(row, col int) bool) Grid {
	g := NewEmptyGrid(rows, cols)
	for r := range g.rows {
		for c := range g.cols {
			g.cells[r*g.cols+c] = fn(r, c)
		}
	}
	return g
}

// FromCells creates a grid from a row-major matrix of cell states
func FromCells(cells [][]bool) (Grid, error) {
	rows := len(cells)
	cols := 0
	if rows > 0 {
		cols = len(cells[0])
	}
	for r, row := range cells {
		if len(row) != cols {
			return Grid{}, errors.Wrapf(ErrRaggedRows, "[FromCells] row %d has %d cells, want %d", r, len(row), cols)
		}
	}
	return Build(rows, cols, func(r, c int) bool { return cells[r][c] }), nil
}

// Parse creates a grid from lines of text where '#', 'O', 'o', 'x', 'X' and '1'
// are alive and any other rune is dead. Blank leading and trailing lines are ignored.
func Parse(text string) (Grid, error) {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return NewEmptyGrid(0, 0), nil
	}
	cells := make([][]bool, len(lines))
	for r, line := range lines {
		runes := []rune(line)
		cells[r] = make([]bool, len(runes))
		for c, ch := range runes {
			switch ch {
			case '#', 'O', 'o', 'x', 'X', '1':
				cells[r][c] = true
			}
		}
	}
	g, err := FromCells(cells)
	if err != nil {
		return Grid{}, errors.Wrap(err, "[Parse] failed to build grid")
	}
	return g, nil
}

// Rows returns the number of rows in the grid
func (g Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns in the grid
func (g Grid) Cols() int {
	return g.cols
}

// InBounds reports whether (row, col) addresses a cell of the grid
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Alive returns the state of a cell. Coordinates outside the grid read as dead.
func (g Grid) Alive(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.cells[row*g.cols+col]
}

// WithCell returns a copy of the grid with the cell at (row, col) set to alive.
// On an out-of-range coordinate the receiver is returned unchanged with ErrOutOfRange.
func (g Grid) WithCell(row, col int, alive bool) (Grid, error) {
	if !g.InBounds(row, col) {
		return g, errors.Wrapf(ErrOutOfRange, "[WithCell] (%d, %d) outside %dx%d grid", row, col, g.rows, g.cols)
	}
	next := g.clone()
	next.cells[row*g.cols+col] = alive
	return next, nil
}

// Toggle returns a copy of the grid with the cell at (row, col) flipped.
// On an out-of-range coordinate the receiver is returned unchanged with ErrOutOfRange.
func (g Grid) Toggle(row, col int) (Grid, error) {
	if !g.InBounds(row, col) {
		return g, errors.Wrapf(ErrOutOfRange, "[Toggle] (%d, %d) outside %dx%d grid", row, col, g.rows, g.cols)
	}
	next := g.clone()
	next.cells[row*g.cols+col] = !g.cells[row*g.cols+col]
	return next, nil
}

// Cells returns a deep copy of the grid as a row-major matrix
func (g Grid) Cells() [][]bool {
	out := make([][]bool, g.rows)
	for r := range g.rows {
		out[r] = make([]bool, g.cols)
		copy(out[r], g.cells[r*g.cols:(r+1)*g.cols])
	}
	return out
}

// Equal reports whether both grids have the same dimensions and cell states
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Population returns the total number of living cells
func (g Grid) Population() (count int) {
	for _, alive := range g.cells {
		if alive {
			count++
		}
	}
	return
}

// Hash returns an MD5 digest of the grid dimensions and cell states
func (g Grid) Hash() string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d:", g.rows, g.cols)
	for _, alive := range g.cells {
		if alive {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// BoundingBox returns the bounds of the living cells
func (g Grid) BoundingBox() (b Bounds) {
	for r := range g.rows {
		for c := range g.cols {
			if !g.cells[r*g.cols+c] {
				continue
			}
			if !b.Valid {
				b = Bounds{MinRow: r, MaxRow: r, MinCol: c, MaxCol: c, Valid: true}
				continue
			}
			b.MinRow = min(b.MinRow, r)
			b.MaxRow = max(b.MaxRow, r)
			b.MinCol = min(b.MinCol, c)
			b.MaxCol = max(b.MaxCol, c)
		}
	}
	return
}

// BoundingBoxSize returns the area of the active region, zero when nothing lives
func (g Grid) BoundingBoxSize() int {
	b := g.BoundingBox()
	if !b.Valid {
		return 0
	}
	return (b.MaxRow - b.MinRow + 1) * (b.MaxCol - b.MinCol + 1)
}

// WithRandomLife returns a copy of the grid with count randomly chosen cells set alive
func (g Grid) WithRandomLife(count int, rng *rand.Rand) Grid {
	if len(g.cells) == 0 || count <= 0 {
		return g
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	next := g.clone()
	for range count {
		next.cells[rng.Intn(len(next.cells))] = true
	}
	return next
}

// String renders the grid with '#' for living and '.' for dead cells
func (g Grid) String() string {
	var sb strings.Builder
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r*g.cols+c] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g Grid) clone() Grid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return Grid{rows: g.rows, cols: g.cols, cells: cells}
}
