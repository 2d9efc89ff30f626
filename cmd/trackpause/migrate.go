package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	// open skips the automatic migration so each subcommand controls it.
	open := func() (*db.DB, error) {
		d, err := db.OpenDB(a.database())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", a.database(), err)
		}
		return d, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.MigrateUp(); err != nil {
				return err
			}
			return printVersion(cmd, d)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.MigrateDown(); err != nil {
				return err
			}
			return printVersion(cmd, d)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			return printVersion(cmd, d)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long:  "Set the schema version without running migrations. Only use this to recover from a dirty migration.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			d, err := open()
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.MigrateForce(v); err != nil {
				return err
			}
			return printVersion(cmd, d)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, d *db.DB) error {
	version, dirty, err := d.MigrateVersion()
	if err != nil {
		return err
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d%s\n", version, suffix)
	return nil
}
