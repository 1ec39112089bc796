package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Onboard composes onboarding sequences and runs them for new hires",
	Long: `Onboard lets administrators build sequences of to-dos, resources, introductions,
messages and admin tasks, triggered around the start day of a new hire.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default onboard.yaml)")
}

// openApp loads the configuration named by --config and bootstraps an App.
func openApp(ctx context.Context, cmd *cobra.Command) (*onboard.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	app, err := onboard.New(ctx, cfg, onboard.WithLogger(logging.New(level)))
	if err != nil {
		return nil, fmt.Errorf("error initializing onboard: %w", err)
	}
	if err := app.Bootstrap(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("error bootstrapping onboard: %w", err)
	}
	return app, nil
}
