package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/admintasks"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/lock"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/repository"
)

// Processor fires conditions for users.
type Processor struct {
	repo       *repository.Repository
	tasks      *admintasks.Service
	dispatcher ports.ActionDispatcher
	locks      *lock.Manager
	metrics    *observability.Metrics
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures the Processor.
type Option func(*Processor)

// WithDispatcher sends actions through d.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(p *Processor) {
		p.dispatcher = d
	}
}

// WithAdminTasks creates admin tasks through svc.
func WithAdminTasks(svc *admintasks.Service) Option {
	return func(p *Processor) {
		p.tasks = svc
	}
}

// WithLocks shares a lock manager with other services.
func WithLocks(m *lock.Manager) Option {
	return func(p *Processor) {
		p.locks = m
	}
}

// WithMetrics counts fired conditions and dispatched actions.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor on repo.
func NewProcessor(repo *repository.Repository, opts ...Option) *Processor {
	p := &Processor{
		repo:   repo,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewLogger(p.logger)
	}
	if p.locks == nil {
		p.locks = lock.NewManager(lock.WithLogger(p.logger))
	}
	if p.tasks == nil {
		p.tasks = admintasks.NewService(repo,
			admintasks.WithDispatcher(p.dispatcher),
			admintasks.WithClock(p.now),
			admintasks.WithLogger(p.logger),
		)
	}
	return p
}

// Now returns the current time of the processor clock.
func (p *Processor) Now() time.Time {
	return p.now()
}

// withUser loads the user under its lock, runs fn and saves the user when fn
// reports a change.
func (p *Processor) withUser(ctx context.Context, userID int64, fn func(ctx context.Context, u *domain.User) (bool, error)) error {
	return p.locks.WithLock(ctx, lock.UserKey(userID), func(ctx context.Context) error {
		u, err := p.repo.Users.Get(ctx, userID)
		if err != nil {
			return err
		}
		changed, err := fn(ctx, u)
		if changed {
			if serr := p.repo.Users.Save(ctx, u); serr != nil {
				return errors.Join(err, serr)
			}
		}
		return err
	})
}

// AddSequences links the conditions of the sequences to the user. Unconditioned
// conditions fire right away.
func (p *Processor) AddSequences(ctx context.Context, userID int64, sequenceIDs []int64) error {
	conditions := make([]*domain.Condition, 0)
	for _, id := range sequenceIDs {
		if _, err := p.repo.Sequences.Get(ctx, id); err != nil {
			return err
		}
		cs, err := p.repo.ConditionsOf(ctx, id)
		if err != nil {
			return err
		}
		conditions = append(conditions, cs...)
	}

	return p.withUser(ctx, userID, func(ctx context.Context, u *domain.User) (bool, error) {
		changed := false
		for _, c := range conditions {
			if c.Unconditioned() {
				fired, err := p.fire(ctx, u, c)
				changed = changed || fired
				if err != nil {
					return changed, err
				}
				continue
			}
			if u.LinkCondition(c.ID) {
				changed = true
			}
		}
		p.logger.Info("Sequences added", "user_id", userID, "sequences", sequenceIDs)
		return changed, nil
	})
}

// ProcessCondition fires a condition for the user. Firing an already
// processed condition does nothing.
func (p *Processor) ProcessCondition(ctx context.Context, userID, conditionID int64) error {
	c, err := p.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return err
	}
	return p.withUser(ctx, userID, func(ctx context.Context, u *domain.User) (bool, error) {
		return p.fire(ctx, u, c)
	})
}

// fire assigns the items of c to u and records c as processed. It reports
// whether u changed.
func (p *Processor) fire(ctx context.Context, u *domain.User, c *domain.Condition) (bool, error) {
	if u.Processed(c.ID) {
		return false, nil
	}
	resolved, err := p.repo.ResolveItems(ctx, c.Items)
	if err != nil {
		return false, err
	}

	var errs []error
	for _, kind := range domain.ItemKinds {
		for _, item := range resolved[kind] {
			if err := p.assign(ctx, u, item); err != nil {
				errs = append(errs, fmt.Errorf("%s %d: %w", kind, item.EntityID(), err))
			}
		}
	}

	u.MarkProcessed(c.ID)
	p.metrics.ConditionProcessed(c.Type.String())
	p.logger.Info("Condition processed",
		"user_id", u.ID,
		"condition_id", c.ID,
		"condition_type", c.Type.String(),
		"items", c.Items.Len(),
	)
	return true, errors.Join(errs...)
}

func (p *Processor) assign(ctx context.Context, u *domain.User, item domain.Item) error {
	switch it := item.(type) {
	case *domain.ExternalMessage:
		return p.sendMessage(ctx, u, it)
	case *domain.PendingAdminTask:
		_, err := p.tasks.CreateFromPending(ctx, it, u.ID)
		return err
	case *domain.AccountProvision:
		return p.dispatch(ctx, domain.ActionRequest{
			Type:   domain.ActionProvisionAccount,
			UserID: u.ID,
			Payload: domain.ProvisionPayload{
				ProvisionID:     it.ID,
				IntegrationID:   it.IntegrationID,
				IntegrationType: it.IntegrationType,
				Data:            it.AdditionalData,
			},
		})
	}
	u.Items.Add(item.Kind(), item.EntityID())
	return nil
}

func (p *Processor) sendMessage(ctx context.Context, u *domain.User, msg *domain.ExternalMessage) error {
	recipient, err := p.recipient(ctx, u, msg)
	if err != nil {
		return err
	}
	if recipient == nil {
		p.logger.Warn("External message has no recipient",
			"user_id", u.ID,
			"message_id", msg.ID,
			"person_type", msg.PersonType,
		)
		return nil
	}
	return p.dispatch(ctx, domain.ActionRequest{
		Type:   domain.ActionSendMessage,
		UserID: u.ID,
		Payload: domain.MessagePayload{
			MessageID:   msg.ID,
			Channel:     msg.SendVia.String(),
			RecipientID: recipient.ID,
			Email:       recipient.Email,
			SlackUserID: recipient.SlackUserID,
			Subject:     msg.Subject,
			Content:     msg.Content,
		},
	})
}

// recipient resolves who receives msg. A nil user means the new hire has no
// such person assigned.
func (p *Processor) recipient(ctx context.Context, u *domain.User, msg *domain.ExternalMessage) (*domain.User, error) {
	var id int64
	switch msg.PersonType {
	case domain.PersonNewHire:
		return u, nil
	case domain.PersonManager:
		id = u.ManagerID
	case domain.PersonBuddy:
		id = u.BuddyID
	case domain.PersonCustom:
		id = msg.SendTo
	}
	if id == 0 {
		return nil, nil
	}
	r, err := p.repo.Users.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (p *Processor) dispatch(ctx context.Context, req domain.ActionRequest) error {
	err := p.dispatcher.Dispatch(ctx, req)
	p.metrics.ActionDispatched(req.Type, err)
	return err
}
