package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/sequence"
)

// Overlay marks the conditions that already fired for a new hire.
type Overlay struct {
	Processed []int64
}

// GenerateMermaid produces a Mermaid flowchart of a sequence timeline.
// Shapes follow the trigger:
// - Unconditioned: ((Circle))
// - Before start: [/Parallelogram/]
// - To-do based: [[Subroutine]]
// - After start: [Rectangle]
// Conditions are chained in timeline order. To-do based conditions also get
// a dotted edge from every condition that assigns one of their trigger to-dos.
func GenerateMermaid(tl *sequence.Timeline, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if tl == nil || tl.Sequence == nil {
		return sb.String()
	}

	root := fmt.Sprintf("seq_%d", tl.Sequence.ID)
	sb.WriteString(fmt.Sprintf("    %s{{\"%s\"}}\n", root, escape(tl.Sequence.Name)))

	prev := root
	for _, c := range tl.Conditions {
		id := conditionID(c.ID)
		opener, closer := "[", "]"
		switch c.Type {
		case domain.ConditionUnconditioned:
			opener, closer = "((", "))"
		case domain.ConditionBeforeStart:
			opener, closer = "[/", "/]"
		case domain.ConditionToDo:
			opener, closer = "[[", "]]"
		}

		lines := []string{ConditionLabel(c)}
		for _, s := range Items(c) {
			lines = append(lines, escape(s.Title))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, strings.Join(lines, " <br/> "), closer))

		if c.Type == domain.ConditionToDo {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}

	for _, c := range tl.Conditions {
		if c.Type != domain.ConditionToDo {
			continue
		}
		for _, trigger := range c.Triggers {
			for _, from := range tl.Conditions {
				if !slices.ContainsFunc(from.Items[domain.KindToDo], func(s catalog.Summary) bool { return s.ID == trigger.ID }) {
					continue
				}
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", conditionID(from.ID), escape(trigger.Title), conditionID(c.ID)))
			}
		}
	}

	if overlay != nil && len(overlay.Processed) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef processed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		for _, c := range tl.Conditions {
			if slices.Contains(overlay.Processed, c.ID) {
				sb.WriteString(fmt.Sprintf("    class %s processed;\n", conditionID(c.ID)))
			}
		}
	}

	return sb.String()
}

// ConditionLabel describes when a condition fires.
func ConditionLabel(c sequence.ConditionView) string {
	switch c.Type {
	case domain.ConditionUnconditioned:
		return "Without trigger"
	case domain.ConditionBeforeStart:
		return fmt.Sprintf("%s before start at %s", plural(c.Days, "day"), c.Time)
	case domain.ConditionAfterStart:
		return fmt.Sprintf("Workday %d at %s", max(c.Days, 1), c.Time)
	case domain.ConditionToDo:
		names := make([]string, 0, len(c.Triggers))
		for _, t := range c.Triggers {
			names = append(names, escape(t.Title))
		}
		return "When completed: " + strings.Join(names, ", ")
	}
	return c.TypeName
}

// Items flattens the summaries of a condition in kind order, messages last.
func Items(c sequence.ConditionView) []catalog.Summary {
	var out []catalog.Summary
	for _, k := range domain.ItemKinds {
		out = append(out, c.Items[k]...)
	}
	out = append(out, c.ExternalNewHire...)
	return append(out, c.ExternalAdmin...)
}

func conditionID(id int64) string {
	return fmt.Sprintf("cond_%d", id)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// escape keeps labels inside their double quotes.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
