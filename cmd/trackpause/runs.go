package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/db"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			runs, err := db.NewAnalysisRunStore(d, nil).ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTATUS\tTRACKS\tSTARTED\tDURATION\tVERSION")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					r.RunID, r.Status, r.TracksProcessed,
					time.Unix(0, r.StartedAt).Format("2006-01-02 15:04:05"),
					r.Duration().Round(time.Millisecond), r.Version)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}
