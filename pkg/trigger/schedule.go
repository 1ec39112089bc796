package trigger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/onboard/pkg/domain"
)

// TickReport summarises a Tick.
type TickReport struct {
	Users int `json:"users"`
	Fired int `json:"fired"`
}

// Due reports whether a scheduled condition fires at local, the new hire's
// local time. Conditions fire on their day once the clock reaches their time.
// After start conditions count workdays, the start day being workday 1.
func Due(c *domain.Condition, start, local time.Time) bool {
	if local.Format("15:04") < c.Time {
		return false
	}
	switch c.Type {
	case domain.ConditionBeforeStart:
		return domain.DaysBetween(local, start) == c.Days
	case domain.ConditionAfterStart:
		return domain.Workday(start, local) == max(c.Days, 1)
	}
	return false
}

// Tick fires the scheduled conditions that are due for every new hire.
func (p *Processor) Tick(ctx context.Context) (*TickReport, error) {
	org, err := p.repo.Organization(ctx)
	if err != nil {
		return nil, err
	}
	hires, err := p.repo.Users.Filter(ctx, func(u *domain.User) bool {
		return u.Role == domain.RoleNewHire && u.StartDay != ""
	})
	if err != nil {
		return nil, err
	}

	now := p.now()
	report := &TickReport{}
	var errs []error
	for _, hire := range hires {
		report.Users++
		err := p.withUser(ctx, hire.ID, func(ctx context.Context, u *domain.User) (bool, error) {
			loc := u.Location(org.Location())
			local := now.In(loc)
			start, ok := u.Start(loc)
			if !ok {
				return false, nil
			}
			changed := false
			for _, id := range slices.Clone(u.Conditions) {
				if u.Processed(id) {
					continue
				}
				c, err := p.repo.Conditions.Get(ctx, id)
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				if err != nil {
					return changed, err
				}
				if !Due(c, start, local) {
					continue
				}
				fired, err := p.fire(ctx, u, c)
				if fired {
					changed = true
					report.Fired++
				}
				if err != nil {
					return changed, err
				}
			}
			return changed, nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	p.logger.Debug("Tick done", "users", report.Users, "fired", report.Fired)
	return report, errors.Join(errs...)
}

// CompleteToDo marks a to-do of the user as completed and fires the to-do
// conditions whose triggers are now all completed. It returns the ids of the
// fired conditions.
func (p *Processor) CompleteToDo(ctx context.Context, userID, todoID int64) ([]int64, error) {
	fired := []int64{}
	err := p.withUser(ctx, userID, func(ctx context.Context, u *domain.User) (bool, error) {
		if !u.Items.Contains(domain.KindToDo, todoID) {
			return false, fmt.Errorf("to-do %d of user %d: %w", todoID, userID, domain.ErrNotFound)
		}
		changed := u.CompleteToDo(todoID)
		for _, id := range slices.Clone(u.Conditions) {
			if u.Processed(id) {
				continue
			}
			c, err := p.repo.Conditions.Get(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return changed, err
			}
			if c.Type != domain.ConditionToDo || !allCompleted(u, c.ToDos) {
				continue
			}
			ok, err := p.fire(ctx, u, c)
			if ok {
				changed = true
				fired = append(fired, c.ID)
			}
			if err != nil {
				return changed, err
			}
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return fired, nil
}

func allCompleted(u *domain.User, ids []int64) bool {
	for _, id := range ids {
		if !u.CompletedToDo(id) {
			return false
		}
	}
	return true
}
