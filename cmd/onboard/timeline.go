package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/onboard/internal/presentation/graph"
	"github.com/aretw0/onboard/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [sequence-id]",
	Short: "Show the timeline of a sequence or of a new hire",
	Long: `Prints a sequence timeline. With --new-hire the argument is a user id and the
dated timeline of that new hire is printed instead.

Formats:
- markdown (default): rendered with glamour when stdout is a terminal.
- mermaid: a flowchart (sequences only).
- json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		format, _ := cmd.Flags().GetString("format")
		newHire, _ := cmd.Flags().GetBool("new-hire")

		ctx := context.Background()
		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var (
			data     any
			markdown string
			mermaid  string
		)
		if newHire {
			tl, err := app.People.Timeline(ctx, id)
			if err != nil {
				return err
			}
			data, markdown = tl, tui.NewHireMarkdown(tl)
		} else {
			tl, err := app.Sequences.Timeline(ctx, id)
			if err != nil {
				return err
			}
			data, markdown, mermaid = tl, tui.SequenceMarkdown(tl), graph.GenerateMermaid(tl, nil)
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		case "mermaid":
			if mermaid == "" {
				return fmt.Errorf("mermaid output is only available for sequences")
			}
			fmt.Fprint(out, mermaid)
			return nil
		case "markdown":
			fd := int(os.Stdout.Fd())
			if !term.IsTerminal(fd) {
				fmt.Fprint(out, markdown)
				return nil
			}
			width, _, err := term.GetSize(fd)
			if err != nil {
				width = 0
			}
			render, err := tui.NewRenderer(width)
			if err != nil {
				return err
			}
			rendered, err := render(markdown)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		}
		return fmt.Errorf("unknown format %q (markdown, mermaid, json)", format)
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, mermaid or json")
	timelineCmd.Flags().Bool("new-hire", false, "Treat the argument as a new hire id")
}
