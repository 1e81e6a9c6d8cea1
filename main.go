package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/scheduler"
	"github.com/sheikhrachel/go-life/tui"
	"github.com/sheikhrachel/go-life/utils"
)

var (
	configFile  string
	logFile     string
	rows        int
	cols        int
	interval    time.Duration
	threshold   float64
	seed        int64
	patternName string
	generations int
	autoRestart bool
	plain       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "golife",
		Short:         "Conway's Game of Life",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (yaml or json)")
	flags.IntVar(&rows, "rows", 25, "grid rows")
	flags.IntVar(&cols, "cols", 50, "grid columns")
	flags.DurationVar(&interval, "interval", scheduler.DefaultInterval, "delay between generations")
	flags.Float64Var(&threshold, "threshold", 0.7, "random draw a cell must exceed to start alive")
	flags.Int64Var(&seed, "seed", 0, "random seed (0 seeds from the clock)")
	flags.StringVar(&patternName, "pattern", "", "start from a centered built-in pattern")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&generations, "generations", 0, "stop after this many generations (0 runs until interrupted)")
	runCmd.Flags().BoolVar(&autoRestart, "auto-restart", false, "reseed the grid on extinction or stagnation")
	runCmd.Flags().BoolVar(&plain, "plain", false, "disable colors and screen clearing")

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "list built-in patterns",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			listPatterns(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(runCmd, patternsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies explicitly set flags on top
func loadConfig(cmd *cobra.Command) (utils.Config, error) {
	cfg := utils.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = utils.LoadConfig(configFile); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("rows") {
		cfg.Rows = rows
	}
	if changed("cols") {
		cfg.Cols = cols
	}
	if changed("interval") {
		cfg.TickInterval = interval
	}
	if changed("threshold") {
		cfg.RandomThreshold = threshold
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("generations") {
		cfg.MaxGenerations = generations
	}
	if changed("auto-restart") {
		cfg.AutoRestart = autoRestart
	}

	return cfg, errors.Wrap(cfg.Validate(), "[loadConfig] invalid flags")
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := utils.DiscardLogger()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "[runInteractive] failed to open log file: %+v", logFile)
		}
		defer f.Close()
		if logger, err = utils.NewLogger(cfg.LogLevel, cfg.LogFormat, f); err != nil {
			return err
		}
	}

	rng := newRand(cfg.Seed)
	initial := model.NewEmptyGrid(cfg.Rows, cfg.Cols)
	if patternName != "" {
		if initial, err = patternGrid(cfg, patternName); err != nil {
			return err
		}
	}

	sim := scheduler.New(initial,
		scheduler.WithInterval(cfg.TickInterval),
		scheduler.WithLogger(logger),
	)
	logger.Info("interactive session started", "rows", cfg.Rows, "cols", cfg.Cols)
	return tui.Run(tui.NewApp(sim, cfg, rng, logger))
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	rng := newRand(cfg.Seed)
	initial := model.NewRandomGrid(cfg.Rows, cfg.Cols, cfg.RandomThreshold, rng)
	if patternName != "" {
		if initial, err = patternGrid(cfg, patternName); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return playHeadless(ctx, headlessOptions{
		config:  cfg,
		initial: initial,
		rng:     rng,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		plain:   plain,
	})
}

// patternGrid returns an empty grid with the named pattern stamped in its center
func patternGrid(cfg utils.Config, name string) (model.Grid, error) {
	p, ok := model.LookupPattern(name)
	if !ok {
		return model.Grid{}, errors.Errorf("unknown pattern %q, see the patterns command", name)
	}
	g, err := model.NewEmptyGrid(cfg.Rows, cfg.Cols).Stamp(p, (cfg.Rows-p.Height())/2, (cfg.Cols-p.Width())/2)
	return g, errors.Wrapf(err, "[patternGrid] %s does not fit a %dx%d grid", name, cfg.Rows, cfg.Cols)
}

func listPatterns(w io.Writer) {
	for _, p := range model.Patterns() {
		g, _ := model.NewEmptyGrid(p.Height(), p.Width()).Stamp(p, 0, 0)
		fmt.Fprintf(w, "%s (%dx%d)\n%s\n", p.Name, p.Height(), p.Width(), g)
	}
}
