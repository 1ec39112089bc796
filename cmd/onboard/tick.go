package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Fire the scheduled conditions that are due now",
	Long:  `Runs one scheduler pass. Useful from cron when the server runs with --tick=0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.Trigger.Tick(ctx)
		if report != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d new hires, fired %d conditions\n", report.Users, report.Fired)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(tickCmd)
}
