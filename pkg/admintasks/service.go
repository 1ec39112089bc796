// Package admintasks manages the work admins and managers do for new hires.
package admintasks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/repository"
)

// Service creates, edits and completes admin tasks.
type Service struct {
	repo       *repository.Repository
	dispatcher ports.ActionDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithDispatcher sends assignee notifications through d.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithClock overrides the time source used to date tasks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
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
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = dispatch.NewLogger(s.logger)
	}
	return s
}

// Lists splits the tasks of a new hire.
type Lists struct {
	Open      []*domain.AdminTask `json:"open"`
	Completed []*domain.AdminTask `json:"completed"`
}

// Get returns the task.
func (s *Service) Get(ctx context.Context, id int64) (*domain.AdminTask, error) {
	return s.repo.AdminTasks.Get(ctx, id)
}

// ForNewHire lists the tasks of a new hire ordered by date.
func (s *Service) ForNewHire(ctx context.Context, newHireID int64) (*Lists, error) {
	if _, err := s.repo.Users.Get(ctx, newHireID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.AdminTasks.Filter(ctx, func(t *domain.AdminTask) bool {
		return t.NewHireID == newHireID
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b *domain.AdminTask) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := &Lists{Open: []*domain.AdminTask{}, Completed: []*domain.AdminTask{}}
	for _, t := range tasks {
		if t.Completed {
			out.Completed = append(out.Completed, t)
		} else {
			out.Open = append(out.Open, t)
		}
	}
	return out, nil
}

// Create validates values and stores a new open task. The assignee is
// notified according to the task option.
func (s *Service) Create(ctx context.Context, values forms.Values) (*domain.AdminTask, error) {
	task := &domain.AdminTask{Priority: domain.PriorityMedium}
	if err := forms.Decode(values, task); err != nil {
		return nil, err
	}
	task.ID = 0
	task.Completed = false
	if task.Date == "" {
		task.Date = s.now().Format(domain.DateLayout)
	}
	if err := s.validate(ctx, task); err != nil {
		return nil, err
	}
	if err := s.repo.AdminTasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("Admin task created", "admin_task_id", task.ID, "new_hire_id", task.NewHireID)
	s.notify(ctx, task)
	return task, nil
}

// CreateFromPending turns a fired PendingAdminTask into an AdminTask dated today.
func (s *Service) CreateFromPending(ctx context.Context, p *domain.PendingAdminTask, newHireID int64) (*domain.AdminTask, error) {
	task := domain.FromPending(p, newHireID, s.now().Format(domain.DateLayout))
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("pending admin task %d: %w", p.ID, err)
	}
	if err := s.repo.AdminTasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("Admin task created from sequence", "admin_task_id", task.ID, "pending_admin_task_id", p.ID)
	s.notify(ctx, task)
	return task, nil
}

// Update edits the name, assignee, date and priority of an open task.
func (s *Service) Update(ctx context.Context, id int64, values forms.Values) (*domain.AdminTask, error) {
	task, err := s.repo.AdminTasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return nil, fmt.Errorf("admin task %d is completed: %w", id, domain.ErrConflict)
	}

	in := struct {
		Name       string          `json:"name"`
		AssignedTo int64           `json:"assigned_to"`
		Date       string          `json:"date"`
		Priority   domain.Priority `json:"priority"`
	}{task.Name, task.AssignedTo, task.Date, task.Priority}
	if err := forms.Decode(values, &in); err != nil {
		return nil, err
	}
	task.Name, task.AssignedTo, task.Date, task.Priority = in.Name, in.AssignedTo, in.Date, in.Priority

	if err := s.validate(ctx, task); err != nil {
		return nil, err
	}
	if err := s.repo.AdminTasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks the task as done. Completing twice is a no-op.
func (s *Service) Complete(ctx context.Context, id int64) (*domain.AdminTask, error) {
	task, err := s.repo.AdminTasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return task, nil
	}
	task.Completed = true
	if err := s.repo.AdminTasks.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("Admin task completed", "admin_task_id", id)
	return task, nil
}

func (s *Service) validate(ctx context.Context, task *domain.AdminTask) error {
	v := domain.NewValidationError()
	if err := task.Validate(); err != nil {
		verr, ok := domain.AsValidation(err)
		if !ok {
			return err
		}
		v = verr
	}
	if task.NewHireID > 0 {
		u, err := s.repo.Users.Get(ctx, task.NewHireID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			v.Add("new_hire", "Select a valid choice. That choice is not one of the available choices.")
		case err != nil:
			return err
		case u.Role != domain.RoleNewHire:
			v.Add("new_hire", "Select a new hire.")
		}
	}
	if task.AssignedTo > 0 {
		u, err := s.repo.Users.Get(ctx, task.AssignedTo)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			v.Add("assigned_to", "Select a valid choice. That choice is not one of the available choices.")
		case err != nil:
			return err
		case !u.IsAdminOrManager():
			v.Add("assigned_to", "Select an admin or manager.")
		}
	}
	return v.OrNil()
}

func (s *Service) notify(ctx context.Context, task *domain.AdminTask) {
	payload := domain.AdminTaskPayload{AdminTaskID: task.ID, Name: task.Name}
	switch task.Option {
	case domain.NotifyEmail:
		payload.Channel = domain.ChannelEmail.String()
		payload.Email = task.Email
	case domain.NotifySlack:
		payload.Channel = domain.ChannelSlack.String()
		payload.SlackUser = task.SlackUser
	default:
		return
	}
	err := s.dispatcher.Dispatch(ctx, domain.ActionRequest{
		Type:    domain.ActionNotifyAdmin,
		UserID:  task.AssignedTo,
		Payload: payload,
	})
	if err != nil {
		s.logger.Error("Failed to notify assignee", "admin_task_id", task.ID, "err", err)
	}
}
