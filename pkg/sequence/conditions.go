package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
)

// conditionInput holds the editable fields of a condition.
type conditionInput struct {
	Type  domain.ConditionType `json:"condition_type"`
	Days  int                  `json:"days"`
	Time  string               `json:"time"`
	ToDos []int64              `json:"condition_to_dos"`
}

func decodeCondition(values forms.Values) (*conditionInput, error) {
	in := &conditionInput{}
	if err := forms.Decode(values, in); err != nil {
		return nil, err
	}
	return in, nil
}

// checkTriggers verifies every trigger to-do is an existing to-do template.
func (s *Service) checkTriggers(ctx context.Context, c *domain.Condition, v *domain.ValidationError) error {
	if c.Type != domain.ConditionToDo {
		return nil
	}
	for _, id := range c.ToDos {
		item, err := s.repo.Item(ctx, domain.KindToDo, id)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !item.IsTemplate()) {
			v.Add("condition_to_dos", fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validateCondition runs the field checks and the trigger lookup together so
// the caller gets every message at once.
func (s *Service) validateCondition(ctx context.Context, c *domain.Condition) error {
	v := domain.NewValidationError()
	if err := c.Validate(); err != nil {
		verr, ok := domain.AsValidation(err)
		if !ok {
			return err
		}
		v = verr
	}
	if err := s.checkTriggers(ctx, c, v); err != nil {
		return err
	}
	return v.OrNil()
}

// CreateCondition adds a condition to the sequence. The unconditioned type is
// reserved for the condition created with the sequence.
func (s *Service) CreateCondition(ctx context.Context, sequenceID int64, values forms.Values) (*domain.Condition, error) {
	in, err := decodeCondition(values)
	if err != nil {
		return nil, err
	}
	c := &domain.Condition{
		SequenceID: sequenceID,
		Type:       in.Type,
		Days:       in.Days,
		Time:       in.Time,
		ToDos:      in.ToDos,
	}
	if !usesTriggers(c) {
		c.ToDos = nil
	}

	err = s.mutate(ctx, sequenceID, "create_condition", func(ctx context.Context) error {
		if _, err := s.repo.Sequences.Get(ctx, sequenceID); err != nil {
			return err
		}
		if c.Unconditioned() {
			v := domain.NewValidationError()
			v.Add("condition_type", "Select a valid choice. A sequence has a single condition without trigger.")
			return v
		}
		if err := s.validateCondition(ctx, c); err != nil {
			return err
		}
		return s.repo.Conditions.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// usesTriggers reports whether the condition type uses trigger to-dos.
func usesTriggers(c *domain.Condition) bool {
	return c.Type == domain.ConditionToDo
}

// conditionOf loads a condition and checks it belongs to sequenceID.
func (s *Service) conditionOf(ctx context.Context, sequenceID, conditionID int64) (*domain.Condition, error) {
	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return nil, err
	}
	if c.SequenceID != sequenceID {
		return nil, fmt.Errorf("condition %d of sequence %d: %w", conditionID, sequenceID, domain.ErrNotFound)
	}
	return c, nil
}

// UpdateCondition changes the trigger of a condition. The unconditioned
// condition keeps its type and no other condition may take it.
func (s *Service) UpdateCondition(ctx context.Context, sequenceID, conditionID int64, values forms.Values) (*domain.Condition, error) {
	in, err := decodeCondition(values)
	if err != nil {
		return nil, err
	}

	var c *domain.Condition
	err = s.mutate(ctx, sequenceID, "update_condition", func(ctx context.Context) error {
		var err error
		if c, err = s.conditionOf(ctx, sequenceID, conditionID); err != nil {
			return err
		}

		wasUnconditioned := c.Unconditioned()
		if wasUnconditioned != (in.Type == domain.ConditionUnconditioned) {
			v := domain.NewValidationError()
			if wasUnconditioned {
				v.Add("condition_type", "The condition without trigger cannot change type.")
			} else {
				v.Add("condition_type", "Select a valid choice. A sequence has a single condition without trigger.")
			}
			return v
		}
		if wasUnconditioned {
			// Nothing else is editable on it.
			return nil
		}

		c.Type, c.Days, c.Time, c.ToDos = in.Type, in.Days, in.Time, in.ToDos
		if !usesTriggers(c) {
			c.ToDos = nil
		}
		if err := s.validateCondition(ctx, c); err != nil {
			return err
		}
		return s.repo.Conditions.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConditionToDos replaces the trigger to-dos of a to-do based condition
// and returns the refreshed condition.
func (s *Service) UpdateConditionToDos(ctx context.Context, conditionID int64, values forms.Values) (*ConditionView, error) {
	var in struct {
		ToDos []int64 `json:"condition_to_dos"`
	}
	if err := forms.Decode(values, &in); err != nil {
		return nil, err
	}

	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, c.SequenceID, "update_condition_todos", func(ctx context.Context) error {
		var err error
		if c, err = s.repo.Conditions.Get(ctx, conditionID); err != nil {
			return err
		}
		if c.Type != domain.ConditionToDo {
			return fmt.Errorf("condition %d is %s: %w", conditionID, c.Type, domain.ErrConflict)
		}
		c.ToDos = in.ToDos
		if err := s.validateCondition(ctx, c); err != nil {
			return err
		}
		return s.repo.Conditions.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// DeleteCondition removes a condition. The unconditioned condition and
// conditions of other sequences are reported as not found.
func (s *Service) DeleteCondition(ctx context.Context, sequenceID, conditionID int64) error {
	return s.mutate(ctx, sequenceID, "delete_condition", func(ctx context.Context) error {
		if _, err := s.repo.Sequences.Get(ctx, sequenceID); err != nil {
			return err
		}
		c, err := s.conditionOf(ctx, sequenceID, conditionID)
		if err != nil {
			return err
		}
		if c.Unconditioned() {
			return fmt.Errorf("condition %d: %w", conditionID, domain.ErrProtectedCondition)
		}
		return s.repo.Conditions.Delete(ctx, conditionID)
	})
}
