// Package tui is the interactive terminal front end for a Simulation.
package tui

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/utils"
)

const refreshRate = time.Second / 30

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

type frameMsg time.Time

// App is the bubbletea model wrapping a Simulation
type App struct {
	sim      *scheduler.Simulation
	cfg      utils.Config
	rng      *rand.Rand
	logger   *slog.Logger
	renderer *model.TerminalRenderer
	patterns []model.Pattern

	cursor  model.Cursor
	pattern int
	status  string
	failed  bool
}

// NewApp builds the interface for sim, sizing new grids from cfg
func NewApp(sim *scheduler.Simulation, cfg utils.Config, rng *rand.Rand, logger *slog.Logger) App {
	return App{
		sim:      sim,
		cfg:      cfg,
		rng:      rng,
		logger:   logger,
		renderer: &model.TerminalRenderer{},
		patterns: model.Patterns(),
		cursor:   model.Cursor{Visible: true},
	}
}

// Run blocks until the user quits, stopping the simulation on the way out
func Run(app App) error {
	defer app.sim.SetRunning(false)
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func tickFrame() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (a App) Init() tea.Cmd {
	return tickFrame()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		return a, tickFrame()
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	g := a.sim.Grid()
	a.failed = false

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		a.cursor.Row = max(0, a.cursor.Row-1)
	case "down", "j":
		a.cursor.Row = min(max(g.Rows()-1, 0), a.cursor.Row+1)
	case "left", "h":
		a.cursor.Col = max(0, a.cursor.Col-1)
	case "right", "l":
		a.cursor.Col = min(max(g.Cols()-1, 0), a.cursor.Col+1)
	case " ", "enter":
		if err := a.sim.ToggleCell(a.cursor.Row, a.cursor.Col); err != nil {
			a.fail(err)
		}
	case "s":
		a.sim.SetRunning(!a.sim.Running())
		a.status = ""
	case "r":
		a.sim.SetGrid(model.NewRandomGrid(a.cfg.Rows, a.cfg.Cols, a.cfg.RandomThreshold, a.rng))
		a.sim.SetRunning(true)
		a.status = "randomized"
	case "c":
		a.sim.SetGrid(model.NewEmptyGrid(a.cfg.Rows, a.cfg.Cols))
		a.sim.SetRunning(false)
		a.status = "cleared"
	case "n":
		if !a.sim.Running() {
			a.sim.Step()
		}
	case "tab":
		a.pattern = (a.pattern + 1) % len(a.patterns)
		a.status = "pattern: " + a.patterns[a.pattern].Name
	case "p":
		a.stamp()
	}
	return a, nil
}

// stamp places the selected pattern with its top-left corner at the cursor
func (a *App) stamp() {
	p := a.patterns[a.pattern]
	err := a.sim.Update(func(g model.Grid) (model.Grid, error) {
		return g.Stamp(p, a.cursor.Row, a.cursor.Col)
	})
	if err != nil {
		a.fail(err)
		return
	}
	a.status = "placed " + p.Name
}

func (a *App) fail(err error) {
	a.logger.Warn("action rejected", "error", err)
	a.status = err.Error()
	a.failed = true
}

func (a App) View() string {
	snap := a.sim.Snapshot()

	state := stoppedStyle.Render("STOPPED")
	if a.sim.Running() {
		state = runningStyle.Render("RUNNING")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Conway's Game of Life"))
	sb.WriteString("  ")
	sb.WriteString(state)
	sb.WriteByte('\n')
	sb.WriteString(a.renderer.Render(snap.Grid, a.cursor))
	sb.WriteByte('\n')
	sb.WriteString(labelStyle.Render(fmt.Sprintf("Gen: %d | Living: %d | Cursor: (%d, %d) | Pattern: %s",
		snap.Generation, snap.Grid.Population(), a.cursor.Row, a.cursor.Col, a.patterns[a.pattern].Name)))
	sb.WriteByte('\n')
	if a.status != "" {
		if a.failed {
			sb.WriteString(errorStyle.Render(a.status))
		} else {
			sb.WriteString(labelStyle.Render(a.status))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(helpStyle.Render("arrows move • space toggle • s start/stop • r randomize • c clear • n step • tab/p pattern • q quit"))
	return sb.String()
}
