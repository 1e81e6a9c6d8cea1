package scheduler_test

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/engine"
	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
)

// manualClock queues callbacks until the test fires them
type manualClock struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, f)
	c.delays = append(c.delays, d)
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Fire runs the oldest pending callback on the calling goroutine
func (c *manualClock) Fire() {
	c.mu.Lock()
	Expect(c.pending).NotTo(BeEmpty(), "no pending tick to fire")
	f := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()
	f()
}

// hookStepper runs onStep before delegating to the Conway engine
type hookStepper struct {
	inner  *engine.Engine
	onStep func()
}

func (h *hookStepper) Step(g model.Grid) model.Grid {
	if h.onStep != nil {
		h.onStep()
	}
	return h.inner.Step(g)
}

func blinker() model.Grid {
	g, err := model.NewEmptyGrid(5, 5).Stamp(model.Blinker, 2, 1)
	Expect(err).NotTo(HaveOccurred())
	return g
}

var _ = Describe("Simulation", func() {
	var (
		clock     *manualClock
		stepper   *hookStepper
		sim       *scheduler.Simulation
		snapshots []scheduler.Snapshot
	)

	BeforeEach(func() {
		clock = &manualClock{}
		stepper = &hookStepper{inner: engine.New()}
		snapshots = nil
		sim = scheduler.New(blinker(),
			scheduler.WithClock(clock),
			scheduler.WithStepper(stepper),
			scheduler.WithInterval(50*time.Millisecond),
			scheduler.WithObserver(func(s scheduler.Snapshot) { snapshots = append(snapshots, s) }),
		)
	})

	It("starts stopped and does not schedule anything", func() {
		Expect(sim.Running()).To(BeFalse())
		Expect(clock.Pending()).To(BeZero())
		Expect(sim.Grid().Equal(blinker())).To(BeTrue())
	})

	Context("when running", func() {
		BeforeEach(func() {
			sim.SetRunning(true)
		})

		It("schedules one tick with the configured interval", func() {
			Expect(sim.Running()).To(BeTrue())
			Expect(clock.Pending()).To(Equal(1))
			Expect(clock.delays).To(ConsistOf(50 * time.Millisecond))
		})

		It("replaces the grid with the next generation and re-arms", func() {
			clock.Fire()

			expected := engine.New().Step(blinker())
			Expect(sim.Grid().Equal(expected)).To(BeTrue())
			Expect(sim.Generation()).To(Equal(1))
			Expect(clock.Pending()).To(Equal(1))

			clock.Fire()
			Expect(sim.Grid().Equal(blinker())).To(BeTrue())
			Expect(sim.Generation()).To(Equal(2))
			Expect(snapshots).To(HaveLen(2))
			Expect(snapshots[1].Generation).To(Equal(2))
		})

		It("ignores a second start", func() {
			sim.SetRunning(true)
			Expect(clock.Pending()).To(Equal(1))
		})

		It("exits at the next boundary when stopped while waiting", func() {
			sim.SetRunning(false)
			clock.Fire()

			Expect(sim.Generation()).To(BeZero())
			Expect(clock.Pending()).To(BeZero())
			Expect(snapshots).To(BeEmpty())
		})

		It("installs exactly one more generation when stopped during a tick", func() {
			stepper.onStep = func() { sim.SetRunning(false) }

			clock.Fire()

			Expect(sim.Running()).To(BeFalse())
			Expect(sim.Generation()).To(Equal(1))
			Expect(snapshots).To(HaveLen(1))
			Expect(clock.Pending()).To(BeZero())
		})

		It("keeps a single loop when restarted before the pending tick fires", func() {
			sim.SetRunning(false)
			sim.SetRunning(true)
			Expect(clock.Pending()).To(Equal(1))

			clock.Fire()
			Expect(sim.Generation()).To(Equal(1))
			Expect(clock.Pending()).To(Equal(1))
		})

		It("starts a fresh loop after the previous one has exited", func() {
			sim.SetRunning(false)
			clock.Fire()
			Expect(clock.Pending()).To(BeZero())

			sim.SetRunning(true)
			Expect(clock.Pending()).To(Equal(1))
		})

		It("recomputes from a grid installed while a generation was being computed", func() {
			block, err := model.NewEmptyGrid(5, 5).Stamp(model.Block, 1, 1)
			Expect(err).NotTo(HaveOccurred())

			var once sync.Once
			stepper.onStep = func() { once.Do(func() { sim.SetGrid(block) }) }

			clock.Fire()

			Expect(sim.Grid().Equal(block)).To(BeTrue())
			Expect(sim.Generation()).To(Equal(1))
		})
	})

	Describe("SetGrid", func() {
		It("installs the grid and resets the generation counter", func() {
			sim.Step()
			Expect(sim.Generation()).To(Equal(1))

			empty := model.NewEmptyGrid(3, 3)
			sim.SetGrid(empty)
			Expect(sim.Grid().Equal(empty)).To(BeTrue())
			Expect(sim.Generation()).To(BeZero())
		})
	})

	Describe("ToggleCell", func() {
		It("flips a cell and keeps the generation", func() {
			sim.Step()
			Expect(sim.ToggleCell(0, 0)).To(Succeed())
			Expect(sim.Grid().Alive(0, 0)).To(BeTrue())
			Expect(sim.Generation()).To(Equal(1))
		})

		It("rejects out-of-range coordinates without touching the grid", func() {
			before := sim.Grid()
			err := sim.ToggleCell(5, 0)
			Expect(errors.Is(err, model.ErrOutOfRange)).To(BeTrue())
			Expect(sim.Grid().Equal(before)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("applies the function and keeps the generation", func() {
			sim.Step()
			err := sim.Update(func(g model.Grid) (model.Grid, error) {
				return g.Stamp(model.Block, 0, 0)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Grid().Alive(0, 0)).To(BeTrue())
			Expect(sim.Generation()).To(Equal(1))
		})

		It("returns the function's error and leaves the grid alone", func() {
			before := sim.Grid()
			boom := errors.New("boom")
			err := sim.Update(func(g model.Grid) (model.Grid, error) {
				return model.NewEmptyGrid(1, 1), boom
			})
			Expect(err).To(MatchError(boom))
			Expect(sim.Grid().Equal(before)).To(BeTrue())
		})
	})

	Describe("Step", func() {
		It("advances once without starting the loop", func() {
			snap := sim.Step()
			Expect(snap.Generation).To(Equal(1))
			Expect(sim.Running()).To(BeFalse())
			Expect(clock.Pending()).To(BeZero())
			Expect(snapshots).To(HaveLen(1))
		})
	})

	Describe("with the wall clock", func() {
		It("ticks until stopped and then stays still", func() {
			var ticks atomic.Int32
			live := scheduler.New(blinker(),
				scheduler.WithInterval(5*time.Millisecond),
				scheduler.WithObserver(func(scheduler.Snapshot) { ticks.Add(1) }),
			)

			live.SetRunning(true)
			Eventually(ticks.Load).WithTimeout(time.Second).Should(BeNumerically(">=", 3))

			live.SetRunning(false)
			// allow an in-flight tick to land
			time.Sleep(20 * time.Millisecond)
			settled := ticks.Load()
			Consistently(ticks.Load).WithTimeout(50 * time.Millisecond).Should(Equal(settled))
			Expect(live.Generation()).To(BeNumerically("==", settled))
		})
	})
})
