// Command eqcheck runs equivalence checks against the built-in contracts and
// keeps their results in a local store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gitlab.com/equivcheck-2025.net/internal/adapter/badger/runstore"
	"gitlab.com/equivcheck-2025.net/internal/adapter/logging"
	"gitlab.com/equivcheck-2025.net/internal/app"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
)

var (
	rootCmd = &cobra.Command{
		Use:           "eqcheck",
		Short:         "Check candidate implementations against their reference",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global Flags
	output        *string
	verbose       *bool
	storePath     *string
	overridesFile *string
	envFile       *string
)

func init() {
	output = rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text, json or yaml")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log engine activity to stderr")
	storePath = rootCmd.PersistentFlags().String("store", "", "Directory of the local run store (default $EQ_STORE_PATH)")
	overridesFile = rootCmd.PersistentFlags().String("overrides", "", "YAML file of per-contract overrides (default $EQ_OVERRIDES_FILE)")
	envFile = rootCmd.PersistentFlags().String("env", "", "Load environment variables from this file first")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session holds the services one command works with.
type session struct {
	runs    *run.RunService
	closeFn func()
}

func (s *session) Close() {
	s.closeFn()
}

func openSession() (*session, error) {
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", *envFile, err)
		}
	}
	cfg := config.NewSystemConfig()
	if *storePath != "" {
		cfg.BadgerConfig.Path = *storePath
	}
	if *overridesFile != "" {
		cfg.OverridesFile = *overridesFile
	}

	logger := logging.NewNopLogger()
	if *verbose {
		logger = logging.NewZapLoggerWithLevel(true)
	}

	fileOverrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}
	engine, err := app.NewEngine(cfg.RunDefaults, fileOverrides, logger)
	if err != nil {
		return nil, err
	}

	db, err := runstore.Open(runstore.DefaultConfig(cfg.BadgerConfig.Path), logger)
	if err != nil {
		return nil, err
	}
	store := runstore.NewStore(db, logger)
	runs := run.NewRunService(engine.Catalog, engine.TestRun, store, store, store, logger)

	return &session{
		runs: runs,
		closeFn: func() {
			_ = db.Close()
			_ = logger.Sync()
		},
	}, nil
}
