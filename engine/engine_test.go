package engine

import (
	"math/rand"
	"testing"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/rules"
)

func stamp(t *testing.T, g model.Grid, p model.Pattern, row, col int) model.Grid {
	t.Helper()
	out, err := g.Stamp(p, row, col)
	if err != nil {
		t.Fatalf("stamp %s failed: %v", p.Name, err)
	}
	return out
}

func parse(t *testing.T, text string) model.Grid {
	t.Helper()
	g, err := model.Parse(text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return g
}

func TestStepDoesNotMutateInput(t *testing.T) {
	e := New()
	for seed := int64(0); seed < 5; seed++ {
		g := model.NewRandomGrid(25, 50, 0.7, rand.New(rand.NewSource(seed)))
		before := g.Cells()

		_ = e.Step(g)

		after, err := model.FromCells(before)
		if err != nil {
			t.Fatalf("rebuild failed: %v", err)
		}
		if !g.Equal(after) {
			t.Fatalf("seed %d: Step mutated its input", seed)
		}
	}
}

func TestGliderTranslatesAfterFourSteps(t *testing.T) {
	e := New()
	g := stamp(t, model.NewEmptyGrid(20, 20), model.Glider, 5, 5)
	want := stamp(t, model.NewEmptyGrid(20, 20), model.Glider, 6, 6)

	got := e.StepN(g, 4)
	if !got.Equal(want) {
		t.Errorf("glider after 4 steps:\n%s\nwant:\n%s", got, want)
	}

	for i := 1; i < 4; i++ {
		if e.StepN(g, i).Population() != 5 {
			t.Errorf("glider should keep 5 cells at step %d", i)
		}
	}
}

func TestBlockIsStillLife(t *testing.T) {
	e := New()
	g := stamp(t, model.NewEmptyGrid(6, 6), model.Block, 2, 2)

	if got := e.Step(g); !got.Equal(g) {
		t.Errorf("block changed:\n%s", got)
	}
}

func TestBlinkerOscillates(t *testing.T) {
	e := New()
	horizontal := parse(t, `
.....
.....
.###.
.....
.....
`)
	vertical := parse(t, `
.....
..#..
..#..
..#..
.....
`)

	first := e.Step(horizontal)
	if !first.Equal(vertical) {
		t.Errorf("expected vertical blinker, got:\n%s", first)
	}
	if second := e.Step(first); !second.Equal(horizontal) {
		t.Errorf("expected horizontal blinker, got:\n%s", second)
	}
}

func TestBoundaryDoesNotWrap(t *testing.T) {
	e := New()
	// on a torus these three cells would all neighbor (0,0) and cause a birth
	g := parse(t, `
...#
....
....
#..#
`)
	if n := e.CountNeighbors(g, 0, 0); n != 0 {
		t.Errorf("expected 0 neighbors at corner, got %d", n)
	}
	if e.Step(g).Alive(0, 0) {
		t.Error("corner cell was born from wrapped neighbors")
	}
}

func TestBlinkerAgainstEdge(t *testing.T) {
	e := New()
	g := parse(t, `
###..
.....
.....
`)
	want := parse(t, `
.#...
.#...
.....
`)
	if got := e.Step(g); !got.Equal(want) {
		t.Errorf("unexpected edge evolution:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmptyGridStaysEmpty(t *testing.T) {
	e := New()
	sizes := [][2]int{{0, 0}, {0, 5}, {5, 0}, {1, 1}, {25, 50}}
	for _, size := range sizes {
		g := model.NewEmptyGrid(size[0], size[1])
		got := e.Step(g)
		if got.Rows() != size[0] || got.Cols() != size[1] {
			t.Errorf("%v: dimensions changed to %dx%d", size, got.Rows(), got.Cols())
		}
		if got.Population() != 0 {
			t.Errorf("%v: empty grid produced life", size)
		}
	}
}

func TestCountNeighbors(t *testing.T) {
	e := New()
	g := parse(t, `
###
#.#
###
`)
	tests := []struct {
		row, col int
		want     int
	}{
		{1, 1, 8},
		{0, 0, 2},
		{0, 1, 4},
		{2, 2, 2},
	}
	for _, tt := range tests {
		if got := e.CountNeighbors(g, tt.row, tt.col); got != tt.want {
			t.Errorf("CountNeighbors(%d, %d) = %d, want %d", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestWithNeighborhood(t *testing.T) {
	vonNeumann := []rules.Offset{{Row: 0, Col: 1}, {Row: 0, Col: -1}, {Row: 1, Col: 0}, {Row: -1, Col: 0}}
	e := New(WithNeighborhood(vonNeumann))

	g := parse(t, `
#.#
...
#.#
`)
	if n := e.CountNeighbors(g, 1, 1); n != 0 {
		t.Errorf("diagonals should not count, got %d", n)
	}

	vonNeumann[0] = rules.Offset{Row: 1, Col: 1}
	if n := e.CountNeighbors(g, 1, 1); n != 0 {
		t.Error("engine should keep its own copy of the offsets")
	}
}
