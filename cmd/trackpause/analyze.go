package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/config"
	"github.com/optofluidics/trackpause/internal/db"
	"github.com/optofluidics/trackpause/internal/motion"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		threshold float64
		minFrames int
		window    int
		formula   string
		workers   int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Segment every stored track and record its features as a new run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			flags := cmd.Flags()
			if flags.Changed("threshold") {
				cfg.VelocityThreshold = &threshold
			}
			if flags.Changed("min-frames") {
				cfg.MinConsecutiveFrames = &minFrames
			}
			if flags.Changed("window") {
				cfg.SmoothingWindow = &window
			}
			if flags.Changed("formula") {
				cfg.VelocityFormula = &formula
			}
			if flags.Changed("workers") {
				cfg.Workers = &workers
			}
			return runAnalyze(cmd, a, &cfg, dryRun)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", motion.DefaultVelocityThreshold, "velocity threshold below which an edge is a pause")
	cmd.Flags().IntVar(&minFrames, "min-frames", motion.DefaultMinConsecutiveFrames, "minimum consecutive frames for a segment")
	cmd.Flags().IntVar(&window, "window", motion.DefaultSmoothingWindow, "Gaussian smoothing window in frames (0 disables)")
	cmd.Flags().StringVar(&formula, "formula", motion.Euclidean.String(), "velocity formula: euclidean or legacy-dzdx")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent tracks (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "analyse in memory without recording a run")
	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, cfg *config.AnalysisConfig, dryRun bool) error {
	p, err := cfg.ToParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	d, err := a.openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph := db.NewGraphStore(d)
	if err := graph.Load(ctx); err != nil {
		return err
	}

	analyzer := motion.NewAnalyzer(p, cfg.GetWorkers())
	if dryRun {
		summary, err := analyzer.Run(ctx, graph, motion.NewMemoryStore())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d tracks, %s, %s in %s\n",
			summary.Written, countOf(summary.Pauses, "pause"), countOf(summary.Runs, "run"), summary.Elapsed)
		return nil
	}

	runs := db.NewAnalysisRunStore(d, nil)
	runID, err := runs.StartRun(ctx, p)
	if err != nil {
		return err
	}

	summary, runErr := analyzer.Run(ctx, graph, db.NewFeatureStore(d, runID))

	// The run row is closed out even when ctx was cancelled.
	if err := runs.FinishRun(context.WithoutCancel(ctx), runID, summary.Written, runErr); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d tracks, %s, %s in %s\n",
		runID, summary.Written, countOf(summary.Pauses, "pause"), countOf(summary.Runs, "run"), summary.Elapsed)
	return nil
}

func countOf(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
