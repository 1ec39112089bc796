package sequence

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/lock"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/repository"
)

// Service edits sequences and the items referenced by their conditions.
type Service struct {
	repo    *repository.Repository
	locks   *lock.Manager
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLocks shares a lock manager with other services.
func WithLocks(m *lock.Manager) Option {
	return func(s *Service) {
		s.locks = m
	}
}

// WithMetrics reports mutations to m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service on repo.
func NewService(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = lock.NewManager(lock.WithLogger(s.logger))
	}
	return s
}

// mutate runs fn under the lock of sequenceID and records the operation.
func (s *Service) mutate(ctx context.Context, sequenceID int64, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := s.locks.WithLock(ctx, lock.SequenceKey(sequenceID), func(ctx context.Context) error {
		s.metrics.ObserveLockWait(time.Since(start))
		return fn(ctx)
	})
	if err != nil {
		return err
	}
	s.metrics.Mutation(op)
	s.logger.Debug("Sequence updated", "op", op, "sequence_id", sequenceID)
	return nil
}

// List returns every sequence ordered by name.
func (s *Service) List(ctx context.Context) ([]*domain.Sequence, error) {
	seqs, err := s.repo.Sequences.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(seqs, func(a, b *domain.Sequence) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return seqs, nil
}

// Create adds a sequence named DefaultSequenceName with its unconditioned condition.
func (s *Service) Create(ctx context.Context) (*domain.Sequence, error) {
	seq := &domain.Sequence{Name: domain.DefaultSequenceName}
	if err := s.repo.Sequences.Create(ctx, seq); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, seq.ID, "create", func(ctx context.Context) error {
		return s.repo.Conditions.Create(ctx, &domain.Condition{
			SequenceID: seq.ID,
			Type:       domain.ConditionUnconditioned,
		})
	})
	if err != nil {
		// A sequence never exists without its unconditioned condition.
		if derr := s.repo.Sequences.Delete(context.WithoutCancel(ctx), seq.ID); derr != nil {
			s.logger.Error("Failed to roll back sequence", "sequence_id", seq.ID, "error", derr)
		}
		return nil, err
	}
	s.logger.Info("Sequence created", "sequence_id", seq.ID)
	return seq, nil
}

// Get returns the sequence.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Sequence, error) {
	return s.repo.Sequences.Get(ctx, id)
}

// Timeline returns the sequence with its conditions in timeline order.
func (s *Service) Timeline(ctx context.Context, id int64) (*Timeline, error) {
	seq, err := s.repo.Sequences.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	conditions, err := s.repo.ConditionsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	tl := &Timeline{Sequence: seq, Conditions: make([]ConditionView, 0, len(conditions))}
	for _, c := range conditions {
		view, err := s.view(ctx, c)
		if err != nil {
			return nil, err
		}
		tl.Conditions = append(tl.Conditions, *view)
	}

	if tl.ToDos, err = s.ListTemplates(ctx, string(domain.KindToDo)); err != nil {
		return nil, err
	}
	return tl, nil
}

func (s *Service) view(ctx context.Context, c *domain.Condition) (*ConditionView, error) {
	v := &ConditionView{
		ID:              c.ID,
		SequenceID:      c.SequenceID,
		Type:            c.Type,
		TypeName:        c.Type.String(),
		Days:            c.Days,
		Time:            c.Time,
		Triggers:        []catalog.Summary{},
		Items:           map[domain.Kind][]catalog.Summary{},
		ExternalNewHire: []catalog.Summary{},
		ExternalAdmin:   []catalog.Summary{},
	}

	resolved, err := s.repo.ResolveItems(ctx, c.Items)
	if err != nil {
		return nil, err
	}
	for kind, items := range resolved {
		for _, item := range items {
			summary := catalog.Summarize(item)
			if msg, ok := item.(*domain.ExternalMessage); ok {
				if msg.ForNewHire() {
					v.ExternalNewHire = append(v.ExternalNewHire, summary)
				} else {
					v.ExternalAdmin = append(v.ExternalAdmin, summary)
				}
				continue
			}
			v.Items[kind] = append(v.Items[kind], summary)
		}
	}

	var triggers domain.ItemSet
	for _, id := range c.ToDos {
		triggers.Add(domain.KindToDo, id)
	}
	resolvedTriggers, err := s.repo.ResolveItems(ctx, triggers)
	if err != nil {
		return nil, err
	}
	for _, item := range resolvedTriggers[domain.KindToDo] {
		v.Triggers = append(v.Triggers, catalog.Summarize(item))
	}
	return v, nil
}

// Rename changes the sequence name.
func (s *Service) Rename(ctx context.Context, id int64, values forms.Values) (*domain.Sequence, error) {
	var seq *domain.Sequence
	err := s.mutate(ctx, id, "rename", func(ctx context.Context) error {
		var err error
		if seq, err = s.repo.Sequences.Get(ctx, id); err != nil {
			return err
		}
		var in struct {
			Name string `json:"name"`
		}
		if err := forms.Decode(values, &in); err != nil {
			return err
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			v := domain.NewValidationError()
			v.Add("name", "This field is required.")
			return v
		}
		seq.Name = in.Name
		return s.repo.Sequences.Save(ctx, seq)
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// Delete removes the sequence and its conditions. Items survive: templates stay
// in the library and edited copies remain assigned to users.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.mutate(ctx, id, "delete", func(ctx context.Context) error {
		if _, err := s.repo.Sequences.Get(ctx, id); err != nil {
			return err
		}
		conditions, err := s.repo.ConditionsOf(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range conditions {
			if err := s.repo.Conditions.Delete(ctx, c.ID); err != nil {
				return err
			}
		}
		if err := s.repo.Sequences.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("Sequence deleted", "sequence_id", id, "conditions", len(conditions))
		return nil
	})
}
