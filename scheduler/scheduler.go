// Package scheduler drives a grid through generations at a fixed cadence.
//
// The tick loop re-arms itself after every generation and checks the run flag
// at each tick boundary. Stopping never cancels a pending timer: a tick that is
// already computing installs its generation before the loop notices the flag,
// so a stop takes effect within at most one tick.
package scheduler

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/engine"
	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/utils"
)

// DefaultInterval is the delay between generations
const DefaultInterval = 100 * time.Millisecond

// Stepper computes the generation that follows g
type Stepper interface {
	Step(g model.Grid) model.Grid
}

// Clock schedules f to run once after d
type Clock interface {
	AfterFunc(d time.Duration, f func())
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Snapshot is a grid together with the number of generations computed since it was installed
type Snapshot struct {
	Grid       model.Grid
	Generation int
}

// Simulation owns the current grid and the tick loop evolving it
type Simulation struct {
	stepper   Stepper
	clock     Clock
	interval  time.Duration
	logger    *slog.Logger
	observers []func(Snapshot)

	current atomic.Pointer[Snapshot]
	running atomic.Bool

	mu    sync.Mutex
	armed bool
}

// Option configures a Simulation
type Option func(*Simulation)

// WithStepper replaces the default Conway engine
func WithStepper(s Stepper) Option {
	return func(sim *Simulation) { sim.stepper = s }
}

// WithClock replaces the wall clock used to schedule ticks
func WithClock(c Clock) Option {
	return func(sim *Simulation) { sim.clock = c }
}

// WithInterval sets the delay between generations
func WithInterval(d time.Duration) Option {
	return func(sim *Simulation) { sim.interval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(sim *Simulation) { sim.logger = l }
}

// WithObserver registers fn to be called after every generation the loop installs.
// Observers run on the tick goroutine and delay the next tick until they return.
func WithObserver(fn func(Snapshot)) Option {
	return func(sim *Simulation) { sim.observers = append(sim.observers, fn) }
}

// New creates a stopped simulation holding initial
func New(initial model.Grid, opts ...Option) *Simulation {
	sim := &Simulation{
		stepper:  engine.New(),
		clock:    realClock{},
		interval: DefaultInterval,
		logger:   utils.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(sim)
	}
	sim.current.Store(&Snapshot{Grid: initial})
	return sim
}

// Grid returns the current grid. The value is immutable and safe to keep.
func (s *Simulation) Grid() model.Grid {
	return s.current.Load().Grid
}

// Snapshot returns the current grid and its generation number
func (s *Simulation) Snapshot() Snapshot {
	return *s.current.Load()
}

// Generation returns the number of generations computed since the grid was last set
func (s *Simulation) Generation() int {
	return s.current.Load().Generation
}

// SetGrid installs g as the current grid and resets the generation counter
func (s *Simulation) SetGrid(g model.Grid) {
	s.current.Store(&Snapshot{Grid: g})
}

// ToggleCell flips one cell of the current grid. Out-of-range coordinates
// leave the grid untouched and return an error wrapping model.ErrOutOfRange.
func (s *Simulation) ToggleCell(row, col int) error {
	err := s.Update(func(g model.Grid) (model.Grid, error) {
		return g.Toggle(row, col)
	})
	return errors.Wrap(err, "[ToggleCell] rejected")
}

// Update replaces the current grid with fn applied to it and keeps the
// generation counter. fn runs again if a tick lands while it is computing.
// An error from fn leaves the grid untouched and is returned as is.
func (s *Simulation) Update(fn func(model.Grid) (model.Grid, error)) error {
	for {
		cur := s.current.Load()
		next, err := fn(cur.Grid)
		if err != nil {
			return err
		}
		if s.current.CompareAndSwap(cur, &Snapshot{Grid: next, Generation: cur.Generation}) {
			return nil
		}
	}
}

// Running reports whether the tick loop is active
func (s *Simulation) Running() bool {
	return s.running.Load()
}

// SetRunning starts or stops the tick loop. Starting an already running
// simulation, or stopping a stopped one, does nothing.
func (s *Simulation) SetRunning(run bool) {
	if !run {
		if s.running.Swap(false) {
			s.logger.Debug("simulation stopped", "generation", s.Generation())
		}
		return
	}
	if s.running.Swap(true) {
		return
	}
	s.logger.Debug("simulation started", "generation", s.Generation(), "interval", s.interval)

	s.mu.Lock()
	defer s.mu.Unlock()
	// a tick from the previous run may still be pending; it will pick the flag up
	if s.armed {
		return
	}
	s.armed = true
	s.clock.AfterFunc(s.interval, s.tick)
}

// Step computes and installs a single generation regardless of the run flag
func (s *Simulation) Step() Snapshot {
	snap := s.advance()
	s.notify(snap)
	return snap
}

func (s *Simulation) tick() {
	s.mu.Lock()
	if !s.running.Load() {
		s.armed = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	snap := s.advance()
	s.logger.Debug("generation computed", "generation", snap.Generation, "population", snap.Grid.Population())
	s.notify(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		s.armed = false
		return
	}
	s.clock.AfterFunc(s.interval, s.tick)
}

// advance replaces the current grid with its successor. If the grid was
// replaced while the successor was computed, it is recomputed from the new grid.
func (s *Simulation) advance() Snapshot {
	for {
		cur := s.current.Load()
		next := &Snapshot{Grid: s.stepper.Step(cur.Grid), Generation: cur.Generation + 1}
		if s.current.CompareAndSwap(cur, next) {
			return *next
		}
	}
}

func (s *Simulation) notify(snap Snapshot) {
	for _, fn := range s.observers {
		fn(snap)
	}
}
