package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import markdown templates into the template library",
	Long: `Reads every markdown file of dir. The front matter sets the kind and the fields
of the template, the body becomes its content. Templates whose kind already has
one with the same name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.ImportTemplates(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range report.Created {
			fmt.Fprintf(out, "created  %-13s %s\n", s.Kind, s.Title)
		}
		for _, name := range report.Skipped {
			fmt.Fprintf(out, "skipped  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
