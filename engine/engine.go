// Package engine computes successive generations of a grid.
package engine

import (
	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/rules"
)

// Engine applies Conway's rules over a configurable neighborhood
type Engine struct {
	offsets []rules.Offset
}

// Option configures an Engine
type Option func(*Engine)

// WithNeighborhood replaces the default Moore neighborhood
func WithNeighborhood(offsets []rules.Offset) Option {
	return func(e *Engine) {
		e.offsets = append([]rules.Offset(nil), offsets...)
	}
}

// New creates an Engine using the Moore neighborhood unless configured otherwise
func New(opts ...Option) *Engine {
	e := &Engine{offsets: rules.MooreNeighborhood()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step returns the next generation of g. The input grid is only read; every
// neighbor count is taken from g, never from the grid being built.
func (e *Engine) Step(g model.Grid) model.Grid {
	return model.Build(g.Rows(), g.Cols(), func(row, col int) bool {
		return rules.ApplyConwayRules(e.CountNeighbors(g, row, col), g.Alive(row, col))
	})
}

// StepN applies Step n times and returns the resulting generation
func (e *Engine) StepN(g model.Grid, n int) model.Grid {
	for range n {
		g = e.Step(g)
	}
	return g
}

// CountNeighbors counts living cells at the configured offsets from (row, col).
// Offsets falling outside the grid count as dead; the board does not wrap.
func (e *Engine) CountNeighbors(g model.Grid, row, col int) (count int) {
	for _, o := range e.offsets {
		if g.Alive(row+o.Row, col+o.Col) {
			count++
		}
	}
	return
}
