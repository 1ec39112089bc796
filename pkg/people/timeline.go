package people

import (
	"context"
	"errors"

	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
)

// DatedCondition is a linked condition placed on the calendar of a new hire.
type DatedCondition struct {
	ID         int64                `json:"id"`
	SequenceID int64                `json:"sequence_id"`
	Type       domain.ConditionType `json:"condition_type"`
	Days       int                  `json:"days"`
	Time       string               `json:"time,omitempty"`
	Date       string               `json:"date"`
	Processed  bool                 `json:"processed"`
	Items      []catalog.Summary    `json:"items"`
}

// Timeline is what is scheduled for a new hire.
type Timeline struct {
	NewHire *domain.User     `json:"new_hire"`
	Before  []DatedCondition `json:"before_start"`
	After   []DatedCondition `json:"after_start"`
}

// Timeline places the linked conditions of a new hire on the calendar.
// Before start conditions are listed while they are still ahead, dated
// start minus days. After start conditions are dated on their workday.
func (s *Service) Timeline(ctx context.Context, id int64) (*Timeline, error) {
	u, err := s.NewHire(ctx, id)
	if err != nil {
		return nil, err
	}
	org, err := s.repo.Organization(ctx)
	if err != nil {
		return nil, err
	}
	loc := u.Location(org.Location())
	tl := &Timeline{NewHire: u, Before: []DatedCondition{}, After: []DatedCondition{}}
	start, ok := u.Start(loc)
	if !ok {
		return tl, nil
	}
	ahead := domain.DaysBeforeStarting(start, s.proc.Now().In(loc))

	conditions := make([]*domain.Condition, 0, len(u.Conditions))
	for _, cid := range u.Conditions {
		c, err := s.repo.Conditions.Get(ctx, cid)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	domain.SortTimeline(conditions)

	for _, c := range conditions {
		var date string
		switch {
		case c.Type == domain.ConditionBeforeStart && c.Days <= ahead:
			date = start.AddDate(0, 0, -c.Days).Format(domain.DateLayout)
		case c.Type == domain.ConditionAfterStart:
			date = domain.WorkdayDate(start, c.Days).Format(domain.DateLayout)
		default:
			continue
		}
		dc, err := s.dated(ctx, u, c, date)
		if err != nil {
			return nil, err
		}
		if c.Type == domain.ConditionBeforeStart {
			tl.Before = append(tl.Before, *dc)
		} else {
			tl.After = append(tl.After, *dc)
		}
	}
	return tl, nil
}

func (s *Service) dated(ctx context.Context, u *domain.User, c *domain.Condition, date string) (*DatedCondition, error) {
	dc := &DatedCondition{
		ID:         c.ID,
		SequenceID: c.SequenceID,
		Type:       c.Type,
		Days:       c.Days,
		Time:       c.Time,
		Date:       date,
		Processed:  u.Processed(c.ID),
		Items:      []catalog.Summary{},
	}
	resolved, err := s.repo.ResolveItems(ctx, c.Items)
	if err != nil {
		return nil, err
	}
	for _, kind := range domain.ItemKinds {
		for _, item := range resolved[kind] {
			dc.Items = append(dc.Items, catalog.Summarize(item))
		}
	}
	return dc, nil
}

// ToDoProgress is an assigned to-do with its state.
type ToDoProgress struct {
	catalog.Summary
	Completed bool `json:"completed"`
}

// Progress is how far a new hire got.
type Progress struct {
	ToDos     []ToDoProgress    `json:"todos"`
	Courses   []catalog.Summary `json:"courses"`
	Completed int               `json:"completed"`
}

// Progress lists the to-dos of a new hire with their completion and the
// assigned resources that are courses.
func (s *Service) Progress(ctx context.Context, id int64) (*Progress, error) {
	u, err := s.NewHire(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, err := s.repo.ResolveItems(ctx, u.Items)
	if err != nil {
		return nil, err
	}
	p := &Progress{ToDos: []ToDoProgress{}, Courses: []catalog.Summary{}}
	for _, item := range resolved[domain.KindToDo] {
		done := u.CompletedToDo(item.EntityID())
		if done {
			p.Completed++
		}
		p.ToDos = append(p.ToDos, ToDoProgress{Summary: catalog.Summarize(item), Completed: done})
	}
	for _, item := range resolved[domain.KindResource] {
		if r := item.(*domain.Resource); r.Course {
			p.Courses = append(p.Courses, catalog.Summarize(item))
		}
	}
	return p, nil
}

// CompleteToDo marks an assigned to-do of a new hire as completed and fires
// the to-do conditions waiting on it.
func (s *Service) CompleteToDo(ctx context.Context, id, todoID int64) ([]int64, error) {
	if _, err := s.NewHire(ctx, id); err != nil {
		return nil, err
	}
	return s.proc.CompleteToDo(ctx, id, todoID)
}
