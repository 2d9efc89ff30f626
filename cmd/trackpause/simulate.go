package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/db"
	"github.com/optofluidics/trackpause/internal/trackgraph"
)

// simIDStride keeps spot and edge IDs of simulated tracks apart.
const simIDStride = 1_000_000

func newSimulateCmd(a *app) *cobra.Command {
	var (
		tracks  int
		firstID int64
		pattern string
		speed   float64
		noise   float64
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Store synthetic tracks that follow a run/pause pattern",
		Long: `Store synthetic linear tracks in the database.

The pattern lists stretches of running (R) and pausing (P) frames, e.g.
"R60 P60 R60". Running frames advance --speed along x; every spot then
receives Gaussian position noise of standard deviation --noise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tracks <= 0 {
				return fmt.Errorf("--tracks must be positive, got %d", tracks)
			}
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			store := db.NewGraphStore(d)
			for i := 0; i < tracks; i++ {
				id := firstID + int64(i)
				spots, err := trackgraph.PatternSpots(id*simIDStride, pattern, speed)
				if err != nil {
					return err
				}
				trackgraph.Jitter(spots, noise, rand.NewPCG(seed, uint64(id)))
				edges := trackgraph.ChainEdges(id*simIDStride, spots)
				if err := store.InsertTrack(cmd.Context(), id, fmt.Sprintf("Track_%d", id), edges); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d tracks in %s\n", tracks, a.database())
			return nil
		},
	}

	cmd.Flags().IntVar(&tracks, "tracks", 10, "number of tracks")
	cmd.Flags().Int64Var(&firstID, "first-id", 1, "ID of the first track")
	cmd.Flags().StringVar(&pattern, "pattern", "R60 P60 R60 P60 R60", "run/pause pattern")
	cmd.Flags().Float64Var(&speed, "speed", 0.2, "displacement per running frame")
	cmd.Flags().Float64Var(&noise, "noise", 0.002, "standard deviation of position noise")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
