package domain

import (
	"cmp"
	"slices"
)

// Sequence is a named onboarding plan.
type Sequence struct {
	Base
	Name string `json:"name"`
}

// DefaultSequenceName is given to freshly created sequences.
const DefaultSequenceName = "New sequence"

// ConditionType decides when the items of a condition are assigned.
type ConditionType int

const (
	// ConditionAfterStart fires a number of workdays after the start day.
	ConditionAfterStart ConditionType = 0
	// ConditionToDo fires once every trigger to-do is completed.
	ConditionToDo ConditionType = 1
	// ConditionBeforeStart fires a number of days before the start day.
	ConditionBeforeStart ConditionType = 2
	// ConditionUnconditioned fires as soon as the sequence is assigned.
	ConditionUnconditioned ConditionType = 3
)

func (t ConditionType) String() string {
	switch t {
	case ConditionAfterStart:
		return "after_start"
	case ConditionToDo:
		return "todo"
	case ConditionBeforeStart:
		return "before_start"
	case ConditionUnconditioned:
		return "unconditioned"
	}
	return "unknown"
}

// Valid reports whether t is a known condition type.
func (t ConditionType) Valid() bool {
	return t >= ConditionAfterStart && t <= ConditionUnconditioned
}

// Condition groups the items a sequence assigns at one trigger.
type Condition struct {
	Base
	SequenceID int64         `json:"sequence_id"`
	Type       ConditionType `json:"condition_type"`
	Days       int           `json:"days"`
	Time       string        `json:"time,omitempty"`
	ToDos      []int64       `json:"condition_to_dos,omitempty"`
	Items      ItemSet       `json:"items,omitempty"`
}

// AddItem references item from the condition.
func (c *Condition) AddItem(item Item) bool {
	return c.Items.Add(item.Kind(), item.EntityID())
}

// RemoveItem drops the reference to item.
func (c *Condition) RemoveItem(item Item) bool {
	return c.Items.Remove(item.Kind(), item.EntityID())
}

// Unconditioned reports whether c is the trigger-less condition of its sequence.
func (c *Condition) Unconditioned() bool {
	return c.Type == ConditionUnconditioned
}

// Validate checks the trigger fields. Whether the trigger to-dos exist is
// checked by the caller, which owns the store.
func (c *Condition) Validate() error {
	v := NewValidationError()
	if !c.Type.Valid() {
		v.Add("condition_type", "Select a valid choice.")
		return v
	}
	switch c.Type {
	case ConditionAfterStart, ConditionBeforeStart:
		if c.Type == ConditionBeforeStart && c.Days < 1 {
			v.Add("days", "Must be at least one day before the start day.")
		} else if c.Days < 0 {
			v.Add("days", "Must be zero or positive.")
		}
		if c.Time == "" {
			v.Add("time", "This field is required.")
		} else if !ValidClock(c.Time) {
			v.Add("time", "Enter a valid time (HH:MM).")
		}
	case ConditionToDo:
		if len(c.ToDos) == 0 {
			v.Add("condition_to_dos", "Select at least one to-do.")
		}
	}
	return v.OrNil()
}

// timelineRank orders condition types on a timeline.
func timelineRank(t ConditionType) int {
	switch t {
	case ConditionUnconditioned:
		return 0
	case ConditionBeforeStart:
		return 1
	case ConditionAfterStart:
		return 2
	default:
		return 3
	}
}

// CompareTimeline orders conditions the way a timeline displays them:
// unconditioned, before start (furthest first), after start, to-do based.
func CompareTimeline(a, b *Condition) int {
	if r := cmp.Compare(timelineRank(a.Type), timelineRank(b.Type)); r != 0 {
		return r
	}
	switch a.Type {
	case ConditionBeforeStart:
		if r := cmp.Compare(b.Days, a.Days); r != 0 {
			return r
		}
		if r := cmp.Compare(a.Time, b.Time); r != 0 {
			return r
		}
	case ConditionAfterStart:
		if r := cmp.Compare(a.Days, b.Days); r != 0 {
			return r
		}
		if r := cmp.Compare(a.Time, b.Time); r != 0 {
			return r
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTimeline sorts conditions in place in timeline order.
func SortTimeline(conditions []*Condition) {
	slices.SortStableFunc(conditions, CompareTimeline)
}
