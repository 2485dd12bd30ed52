package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognitypin/cognitypin/internal/app"
	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/platform/config"
	"github.com/cognitypin/cognitypin/internal/platform/logging"
	"github.com/cognitypin/cognitypin/internal/platform/storage"
)

var (
	envFile string
	verbose bool

	svc       *app.Service
	backends  *storage.Backends
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "cognityctl",
	Short: "Inspect the CognityPin catalog and reading progress",
	Long: `cognityctl works on the same catalog and preferences store as the
CognityPin server, for scripting and offline use.`,
	SilenceUsage: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	// Assigned here rather than in the literal: setup refers to rootCmd.
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file to load before reading COGNITY_ variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the configured level instead of warn")
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when the command fails.
	teardown()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and opens the application service.
func setup(cmd *cobra.Command, args []string) error {
	if cmd == rootCmd {
		return nil
	}

	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := cfg.Log
	if !verbose {
		logCfg.Level = "warn"
	}
	logger, closer, err := logging.New(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logCloser = closer
	slog.SetDefault(logger)

	var catalog *content.Catalog
	if cfg.CatalogPath != "" {
		catalog, err = content.LoadDir(cfg.CatalogPath)
	} else {
		catalog, err = content.LoadSeed()
	}
	if err != nil {
		return err
	}

	backends, err = storage.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	svc = app.New(app.Config{
		Catalog:   catalog,
		Prefs:     backends.Prefs,
		DailyGoal: cfg.Reading.DailyGoal,
	})
	return nil
}

// teardown closes whatever setup opened. It is safe to call twice.
func teardown() error {
	var errs []error
	if svc != nil {
		svc.Close()
		svc = nil
	}
	if backends != nil {
		errs = append(errs, backends.Close())
		backends = nil
	}
	if logCloser != nil {
		errs = append(errs, logCloser.Close())
		logCloser = nil
	}
	return errors.Join(errs...)
}
