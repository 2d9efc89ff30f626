// Command trackpause splits microscopy tracks into RUN and PAUSE segments
// and stores per-track and per-edge motion features in a sqlite database.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/optofluidics/trackpause/internal/config"
	"github.com/optofluidics/trackpause/internal/db"
	"github.com/optofluidics/trackpause/internal/monitoring"
	"github.com/optofluidics/trackpause/internal/version"
)

// app holds the persistent flags and the configuration they resolve to.
type app struct {
	dbPath     string
	configPath string
	logLevel   string
	jsonLogs   bool

	cfg *config.AnalysisConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "trackpause",
		Short:         "Detect pauses and runs in particle tracks",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "sqlite database path (default from config or $"+config.DatabaseEnv+")")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "analysis config file (.toml or .json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "emit logs as JSON")

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newRunsCmd(a))
	root.AddCommand(newProfileCmd(a))
	root.AddCommand(newSimulateCmd(a))
	root.AddCommand(newMigrateCmd(a))
	return root
}

// setup loads the configuration and configures logging. An explicit
// --config must load; otherwise the repository defaults file is used when
// present and built-in defaults when not.
func (a *app) setup(cmd *cobra.Command) error {
	switch {
	case a.configPath != "":
		cfg, err := config.LoadAnalysisConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	default:
		cfg, err := config.LoadAnalysisConfig(config.DefaultConfigPath)
		switch {
		case err == nil:
			a.cfg = cfg
		case errors.Is(err, fs.ErrNotExist):
			a.cfg = config.DefaultAnalysisConfig()
		default:
			return err
		}
	}

	level := a.cfg.GetLogLevel()
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}
	jsonLogs := a.cfg.GetJSONLogs()
	if cmd.Flags().Changed("json-logs") {
		jsonLogs = a.jsonLogs
	}
	monitoring.SetOutput(cmd.ErrOrStderr())
	return monitoring.Configure(level, jsonLogs)
}

// database returns the database path: --db, then the environment, then
// the config file.
func (a *app) database() string {
	if a.dbPath != "" {
		return a.dbPath
	}
	return a.cfg.GetDatabase()
}

// openDB opens the database migrated to the latest schema.
func (a *app) openDB() (*db.DB, error) {
	d, err := db.NewDB(a.database())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", a.database(), err)
	}
	return d, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
