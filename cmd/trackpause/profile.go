package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/db"
	"github.com/optofluidics/trackpause/internal/motion"
	"github.com/optofluidics/trackpause/internal/profile"
	"github.com/optofluidics/trackpause/internal/security"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		trackID int64
		runID   string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Draw the smoothed velocity profile of one track",
		Long: `Draw the smoothed velocity of one track over time, one series per
RUN or PAUSE segment, against the velocity threshold.

The track is re-segmented with the parameters of the selected run (the
latest run by default, or the configured parameters when no run exists).
The output format follows the --out extension: .html, .png, .svg or .pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			p, err := profileParams(cmd, a, d, runID)
			if err != nil {
				return err
			}

			graph := db.NewGraphStore(d)
			if err := graph.Load(ctx); err != nil {
				return err
			}
			edges := graph.TrackEdges(trackID)
			if len(edges) == 0 {
				return fmt.Errorf("track %d not found or has no edges", trackID)
			}

			name := graph.TrackName(trackID)
			if out == "" {
				out = profile.FileName(name, ".html")
			}
			if err := security.ValidateOutputPath(out); err != nil {
				return err
			}

			result := motion.NewAnalyzer(p, 1).ProcessTrack(trackID, name, edges)
			if err := profile.Write(profile.Build(result, p.VelocityThreshold), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&trackID, "track", 0, "track ID")
	cmd.Flags().StringVar(&runID, "run", "", "take parameters from this run (default: latest run)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <track>_profile.html)")
	_ = cmd.MarkFlagRequired("track")
	return cmd
}

// profileParams returns the parameters of the selected run, falling back to
// the configuration when no run has been recorded yet.
func profileParams(cmd *cobra.Command, a *app, d *db.DB, runID string) (motion.Params, error) {
	run, err := findRun(cmd, d, runID)
	switch {
	case err == nil:
		return run.Params()
	case runID == "" && errors.Is(err, db.ErrRunNotFound):
		p, err := a.cfg.ToParams()
		if err != nil {
			return motion.Params{}, err
		}
		return p, p.Validate()
	default:
		return motion.Params{}, err
	}
}
