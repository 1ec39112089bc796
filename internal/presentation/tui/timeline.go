package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/onboard/internal/presentation/graph"
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/people"
	"github.com/aretw0/onboard/pkg/sequence"
)

// SequenceMarkdown renders a sequence timeline as a markdown document.
func SequenceMarkdown(tl *sequence.Timeline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", tl.Sequence.Name)
	for _, c := range tl.Conditions {
		fmt.Fprintf(&sb, "## %s\n\n", graph.ConditionLabel(c))
		writeItems(&sb, graph.Items(c))
	}
	return sb.String()
}

// NewHireMarkdown renders the dated timeline of a new hire.
func NewHireMarkdown(tl *people.Timeline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\nStarts on **%s**.\n\n", tl.NewHire.FullName(), tl.NewHire.StartDay)
	section := func(title string, conditions []people.DatedCondition) {
		if len(conditions) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, c := range conditions {
			mark := " "
			if c.Processed {
				mark = "x"
			}
			fmt.Fprintf(&sb, "### [%s] %s %s\n\n", mark, c.Date, c.Time)
			writeItems(&sb, c.Items)
		}
	}
	section("Before the first day", tl.Before)
	section("After the first day", tl.After)
	return sb.String()
}

func writeItems(sb *strings.Builder, items []catalog.Summary) {
	if len(items) == 0 {
		sb.WriteString("_Nothing assigned._\n\n")
		return
	}
	for _, s := range items {
		label := s.Label
		if label == "" {
			label = string(s.Kind)
		}
		fmt.Fprintf(sb, "- **%s** %s\n", label, s.Title)
	}
	sb.WriteString("\n")
}
