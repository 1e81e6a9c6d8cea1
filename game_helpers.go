package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

const populationChartSamples = 500

// errFinished ends the headless run once a stop condition is met
var errFinished = errors.New("run finished")

type headlessOptions struct {
	config  utils.Config
	initial model.Grid
	rng     *rand.Rand
	logger  *slog.Logger
	out     io.Writer
	plain   bool
}

// game tracks the headless run across restarts
type game struct {
	headlessOptions
	sim      *scheduler.Simulation
	renderer *model.TerminalRenderer
	stats    *utils.Stats
	history  *utils.History

	generation     int
	stagnantCount  int
	lastRestartGen int
	lastFrameTime  time.Time
}

// playHeadless runs the simulation, printing every generation, until a stop
// condition is met or ctx is cancelled
func playHeadless(ctx context.Context, opts headlessOptions) error {
	frames := make(chan scheduler.Snapshot)
	eg, egCtx := errgroup.WithContext(ctx)

	gm := &game{
		headlessOptions: opts,
		renderer:        &model.TerminalRenderer{Plain: opts.plain},
		stats:           utils.NewStats(populationChartSamples),
		history:         utils.NewHistory(opts.config.HistorySize),
		lastFrameTime:   time.Now(),
	}
	gm.sim = scheduler.New(opts.initial,
		scheduler.WithInterval(opts.config.TickInterval),
		scheduler.WithLogger(opts.logger),
		scheduler.WithObserver(func(s scheduler.Snapshot) {
			select {
			case frames <- s:
			case <-egCtx.Done():
			}
		}),
	)

	gm.displayGameInfo()

	eg.Go(func() error {
		<-egCtx.Done()
		gm.sim.SetRunning(false)
		return nil
	})

	eg.Go(func() error {
		gm.sim.SetRunning(true)
		for {
			select {
			case <-egCtx.Done():
				return nil
			case snap := <-frames:
				if gm.frame(snap) {
					return errFinished
				}
			}
		}
	})

	err := eg.Wait()
	gm.displaySummary()
	if errors.Is(err, errFinished) {
		return nil
	}
	return err
}

// displayGameInfo shows the initial game information
func (gm *game) displayGameInfo() {
	fmt.Fprintf(gm.out, "Grid: %dx%d | Interval: %s | Initial living cells: %d\n",
		gm.initial.Rows(), gm.initial.Cols(), gm.config.TickInterval, gm.initial.Population())
	fmt.Fprintln(gm.out, "Press Ctrl+C to exit gracefully")
	fmt.Fprintln(gm.out)
}

// frame renders one generation and reports whether the run should end
func (gm *game) frame(snap scheduler.Snapshot) bool {
	gm.generation++
	frameStart := time.Now()

	livingCells := snap.Grid.Population()
	gm.stats.Update(gm.generation, livingCells, frameStart.Sub(gm.lastFrameTime))
	gm.lastFrameTime = frameStart

	if gm.history.Record(snap.Grid.Hash()) {
		gm.stagnantCount++
	} else {
		gm.stagnantCount = 0
	}

	status := "Active"
	if gm.stagnantCount > 0 {
		status = fmt.Sprintf("Stagnant (%d)", gm.stagnantCount)
	}
	if livingCells == 0 {
		status = "Extinct"
	}

	if !gm.plain {
		gm.renderer.Clear(gm.out)
	}
	gm.displayGameStatus(snap.Grid, livingCells, status)
	gm.renderer.Display(gm.out, snap.Grid)

	if gm.config.MaxGenerations > 0 && gm.generation >= gm.config.MaxGenerations {
		gm.logger.Info("reached maximum generations", "limit", gm.config.MaxGenerations)
		return true
	}

	reason, restart := gm.checkRestartConditions(livingCells)
	switch {
	case restart && gm.config.AutoRestart:
		gm.restartGame(reason)
	case livingCells == 0:
		gm.logger.Info("population extinct", "generation", gm.generation)
		return true
	case gm.stagnantCount >= 2 && gm.config.InjectionCount > 0:
		// try to break the stagnation before giving up on the pattern
		_ = gm.sim.Update(func(g model.Grid) (model.Grid, error) {
			return g.WithRandomLife(gm.config.InjectionCount, gm.rng), nil
		})
		gm.logger.Debug("injected random life", "cells", gm.config.InjectionCount)
	}
	return false
}

// displayGameStatus shows the current game status
func (gm *game) displayGameStatus(g model.Grid, livingCells int, status string) {
	density := 0.0
	if area := g.Rows() * g.Cols(); area > 0 {
		density = float64(livingCells) / float64(area) * 100
	}

	fmt.Fprintf(gm.out, "Gen: %d | Living: %d | Density: %.1f%% | Status: %s | Bounding box: %d cells\n",
		gm.generation, livingCells, density, status, g.BoundingBoxSize())
	fmt.Fprintf(gm.out, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		gm.stats.GenerationsPerSecond, gm.stats.AveragePopulation, gm.stats.Runtime().Seconds())

	if gm.generation > gm.lastRestartGen && gm.lastRestartGen > 0 {
		fmt.Fprintf(gm.out, "Generations since restart: %d\n", gm.generation-gm.lastRestartGen)
	}
}

// checkRestartConditions determines if the game should restart
func (gm *game) checkRestartConditions(livingCells int) (string, bool) {
	if livingCells == 0 {
		return "extinction", true
	}
	if gm.config.StagnationThreshold > 0 && gm.stagnantCount >= gm.config.StagnationThreshold {
		return "stagnation detected", true
	}
	return "", false
}

// restartGame reseeds the running simulation with random life and a few known patterns
func (gm *game) restartGame(reason string) {
	gm.logger.Info("restarting", "reason", reason, "generation", gm.generation)

	grid := model.NewRandomGrid(gm.config.Rows, gm.config.Cols, gm.config.RandomThreshold, gm.rng).WithInterestingPatterns()
	gm.sim.SetGrid(grid)

	gm.history.Reset()
	gm.stagnantCount = 0
	gm.lastRestartGen = gm.generation
	gm.stats.Restarts++
}

// displaySummary prints the final stats and a population chart
func (gm *game) displaySummary() {
	fmt.Fprintln(gm.out)
	fmt.Fprintf(gm.out, "Final stats: %d generations in %.1f seconds, %d restarts\n",
		gm.generation, gm.stats.Runtime().Seconds(), gm.stats.Restarts)
	fmt.Fprintf(gm.out, "Average: %.1f gen/sec, %.1f avg population\n",
		gm.stats.GenerationsPerSecond, gm.stats.AveragePopulation)

	if len(gm.stats.PopulationHistory) > 1 {
		fmt.Fprintln(gm.out, asciigraph.Plot(gm.stats.PopulationHistory,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("population"),
		))
	}
}
