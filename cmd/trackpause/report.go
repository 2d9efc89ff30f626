package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/db"
	"github.com/optofluidics/trackpause/internal/motion"
	"github.com/optofluidics/trackpause/internal/units"
)

type trackRow struct {
	TrackID  int64               `json:"track_id"`
	Name     string              `json:"name"`
	Features map[string]*float64 `json:"features"`
}

func newReportCmd(a *app) *cobra.Command {
	var (
		runID      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the track features of an analysis run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			run, err := findRun(cmd, d, runID)
			if err != nil {
				return err
			}

			graph := db.NewGraphStore(d)
			if err := graph.Load(ctx); err != nil {
				return err
			}
			features, err := db.NewFeatureStore(d, run.RunID).TrackFeatures(ctx)
			if err != nil {
				return err
			}

			rows := make([]trackRow, 0, len(features))
			for _, id := range graph.TrackIDs() {
				values, ok := features[id]
				if !ok {
					continue
				}
				row := trackRow{TrackID: id, Name: graph.TrackName(id), Features: make(map[string]*float64, len(values))}
				for k, v := range values {
					row.Features[k] = nil
					if !math.IsNaN(v) {
						row.Features[k] = &v
					}
				}
				rows = append(rows, row)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s, %d tracks, started %s)\n",
				run.RunID, run.Status, run.TracksProcessed, time.Unix(0, run.StartedAt).Format("2006-01-02 15:04:05"))
			return printReportTable(cmd.OutOrStdout(), rows, a.cfg.GetSpaceUnits(), a.cfg.GetTimeUnits())
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID (default: latest run)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// findRun returns the run with the given ID, or the latest run.
func findRun(cmd *cobra.Command, d *db.DB, runID string) (*db.AnalysisRun, error) {
	runs := db.NewAnalysisRunStore(d, nil)
	if runID != "" {
		return runs.GetRun(cmd.Context(), runID)
	}
	return runs.LatestRun(cmd.Context())
}

func printReportTable(out io.Writer, rows []trackRow, space, timeUnit string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "TRACK")
	for _, f := range motion.TrackFeatures {
		fmt.Fprintf(w, "\t%s", units.Header(f.ShortName, units.UnitsFor(string(f.Dimension), space, timeUnit)))
	}
	fmt.Fprintln(w)

	for _, r := range rows {
		fmt.Fprint(w, r.Name)
		for _, f := range motion.TrackFeatures {
			fmt.Fprintf(w, "\t%s", formatFeature(r.Features[f.Key], f.IsInt))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func formatFeature(v *float64, isInt bool) string {
	switch {
	case v == nil:
		return "NaN"
	case isInt:
		return strconv.FormatInt(int64(*v), 10)
	default:
		return strconv.FormatFloat(*v, 'g', 4, 64)
	}
}
