package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/internal/logging"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "cadence",
		Short:         "Cadence edits interactive scores with undoable commands",
		Long:          `Cadence keeps scenarios of time nodes, events and constraints, records every edit as a command and serves documents for collaborative editing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a cadence.yaml configuration file")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file history store (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("backend", "", "History backend: memory, file, redis, sqlite (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newPlayCmd(a),
		newInspectCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.History.Dir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.History.Backend = b
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWithOptions(logging.Options{
		Level:  level,
		JSON:   cfg.LogFormat == "json",
		Writer: cmd.ErrOrStderr(),
	})
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
