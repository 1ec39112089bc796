package people

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/lock"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/aretw0/onboard/pkg/trigger"
)

// Service manages users.
type Service struct {
	repo       *repository.Repository
	proc       *trigger.Processor
	dispatcher ports.ActionDispatcher
	locks      *lock.Manager
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithProcessor assigns sequences through proc.
func WithProcessor(proc *trigger.Processor) Option {
	return func(s *Service) {
		s.proc = proc
	}
}

// WithDispatcher sends credentials through d.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithLocks shares a lock manager with other services.
func WithLocks(m *lock.Manager) Option {
	return func(s *Service) {
		s.locks = m
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
	if s.dispatcher == nil {
		s.dispatcher = dispatch.NewLogger(s.logger)
	}
	if s.locks == nil {
		s.locks = lock.NewManager(lock.WithLogger(s.logger))
	}
	if s.proc == nil {
		s.proc = trigger.NewProcessor(repo,
			trigger.WithDispatcher(s.dispatcher),
			trigger.WithLocks(s.locks),
			trigger.WithLogger(s.logger),
		)
	}
	return s
}

// profile holds the user fields an admin edits.
type profile struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	StartDay    string      `json:"start_day"`
	Timezone    string      `json:"timezone"`
	Position    string      `json:"position"`
	Message     string      `json:"message"`
	ManagerID   int64       `json:"manager_id"`
	BuddyID     int64       `json:"buddy_id"`
	SlackUserID string      `json:"slack_user_id"`
}

func applyProfile(u *domain.User, values forms.Values) error {
	p := profile{
		u.FirstName, u.LastName, u.Email, u.Role, u.StartDay, u.Timezone,
		u.Position, u.Message, u.ManagerID, u.BuddyID, u.SlackUserID,
	}
	if err := forms.Decode(values, &p); err != nil {
		return err
	}
	u.FirstName = strings.TrimSpace(p.FirstName)
	u.LastName = strings.TrimSpace(p.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(p.Email))
	u.Role = p.Role
	u.StartDay = p.StartDay
	u.Timezone = p.Timezone
	u.Position = p.Position
	u.Message = p.Message
	u.ManagerID = p.ManagerID
	u.BuddyID = p.BuddyID
	u.SlackUserID = p.SlackUserID
	return nil
}

// validate checks u and the users it references.
func (s *Service) validate(ctx context.Context, u *domain.User) error {
	v := domain.NewValidationError()
	if err := u.Validate(); err != nil {
		verr, ok := domain.AsValidation(err)
		if !ok {
			return err
		}
		v = verr
	}

	users, err := s.repo.Users.List(ctx)
	if err != nil {
		return err
	}
	ids := make(map[int64]bool, len(users))
	for _, other := range users {
		ids[other.ID] = true
		if other.ID != u.ID && u.Email != "" && strings.EqualFold(other.Email, u.Email) {
			v.Add("email", "User with this email already exists.")
		}
	}
	for field, id := range map[string]int64{"manager_id": u.ManagerID, "buddy_id": u.BuddyID} {
		if id != 0 && (!ids[id] || id == u.ID) {
			v.Add(field, "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	return v.OrNil()
}

// withUser runs fn on the user under its lock and saves it afterwards.
func (s *Service) withUser(ctx context.Context, id int64, fn func(u *domain.User) error) (*domain.User, error) {
	var u *domain.User
	err := s.locks.WithLock(ctx, lock.UserKey(id), func(ctx context.Context) error {
		var err error
		if u, err = s.repo.Users.Get(ctx, id); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		return s.repo.Users.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns any user.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.Users.Get(ctx, id)
}

// NewHire returns the user when it is a new hire.
func (s *Service) NewHire(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleNewHire {
		return nil, fmt.Errorf("new hire %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// NewHires lists the new hires, latest start day first.
func (s *Service) NewHires(ctx context.Context) ([]*domain.User, error) {
	hires, err := s.repo.Users.Filter(ctx, func(u *domain.User) bool {
		return u.Role == domain.RoleNewHire
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(hires, func(a, b *domain.User) int {
		if c := cmp.Compare(b.StartDay, a.StartDay); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return hires, nil
}

// AddNewHire creates a new hire and assigns the sequences listed under
// "sequences". Credentials are sent right away when the new hire already
// started, it is a weekday after 7:00 in their time zone, and the
// organization sends new hire emails.
func (s *Service) AddNewHire(ctx context.Context, values forms.Values) (*domain.User, error) {
	u := &domain.User{}
	if err := applyProfile(u, values); err != nil {
		return nil, err
	}
	u.Role = domain.RoleNewHire

	var in struct {
		Sequences []int64 `json:"sequences"`
	}
	if err := forms.Decode(values, &in); err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if err := s.validate(ctx, u); err != nil {
		var ok bool
		if verr, ok = domain.AsValidation(err); !ok {
			return nil, err
		}
	}
	for _, id := range in.Sequences {
		_, err := s.repo.Sequences.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add("sequences", fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id))
		} else if err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("New hire added", "user_id", u.ID, "start_day", u.StartDay, "sequences", in.Sequences)

	if len(in.Sequences) > 0 {
		if err := s.proc.AddSequences(ctx, u.ID, in.Sequences); err != nil {
			return nil, err
		}
	}
	if err := s.sendCredentialsIfStarted(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.Users.Get(ctx, u.ID)
}

func (s *Service) sendCredentialsIfStarted(ctx context.Context, u *domain.User) error {
	org, err := s.repo.Organization(ctx)
	if err != nil {
		return err
	}
	if !org.NewHireEmail {
		return nil
	}
	loc := u.Location(org.Location())
	start, ok := u.Start(loc)
	if !ok {
		return nil
	}
	local := s.proc.Now().In(loc)
	if domain.DateOf(local).Before(start) || local.Hour() < 7 || !domain.IsWeekday(local) {
		return nil
	}
	return s.dispatcher.Dispatch(ctx, domain.ActionRequest{
		Type:    domain.ActionSendCredentials,
		UserID:  u.ID,
		Payload: domain.CredentialsPayload{Email: u.Email},
	})
}

// UpdateNewHire edits the profile of a new hire. The role cannot change.
func (s *Service) UpdateNewHire(ctx context.Context, id int64, values forms.Values) (*domain.User, error) {
	if _, err := s.NewHire(ctx, id); err != nil {
		return nil, err
	}
	return s.withUser(ctx, id, func(u *domain.User) error {
		if err := applyProfile(u, values); err != nil {
			return err
		}
		u.Role = domain.RoleNewHire
		return s.validate(ctx, u)
	})
}

// AddSequences assigns more sequences to an existing new hire.
func (s *Service) AddSequences(ctx context.Context, id int64, sequenceIDs []int64) error {
	if _, err := s.NewHire(ctx, id); err != nil {
		return err
	}
	return s.proc.AddSequences(ctx, id, sequenceIDs)
}

// ToggleTemplate adds the template item to the user, or removes it when
// already assigned. It reports whether the item is assigned afterwards.
func (s *Service) ToggleTemplate(ctx context.Context, userID int64, slug string, itemID int64) (bool, error) {
	e, ok := catalog.TemplateLookup(slug)
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownKind, slug)
	}
	if _, err := s.repo.Item(ctx, e.Kind, itemID); err != nil {
		return false, err
	}
	var assigned bool
	_, err := s.withUser(ctx, userID, func(u *domain.User) error {
		assigned = u.Items.Toggle(e.Kind, itemID)
		return nil
	})
	return assigned, err
}

// Colleagues lists every user ordered by first name.
func (s *Service) Colleagues(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(users, func(a, b *domain.User) int {
		if c := cmp.Compare(a.FirstName, b.FirstName); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return users, nil
}

// CreateColleague adds a user who is not a new hire. The role defaults to employee.
func (s *Service) CreateColleague(ctx context.Context, values forms.Values) (*domain.User, error) {
	u := &domain.User{Role: domain.RoleEmployee}
	if err := applyProfile(u, values); err != nil {
		return nil, err
	}
	if err := s.validateColleague(ctx, u); err != nil {
		return nil, err
	}
	if err := s.repo.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("Colleague added", "user_id", u.ID, "role", u.Role.String())
	return u, nil
}

// UpdateColleague edits the profile of a colleague.
func (s *Service) UpdateColleague(ctx context.Context, id int64, values forms.Values) (*domain.User, error) {
	return s.withUser(ctx, id, func(u *domain.User) error {
		if u.Role == domain.RoleNewHire {
			return fmt.Errorf("colleague %d: %w", id, domain.ErrNotFound)
		}
		if err := applyProfile(u, values); err != nil {
			return err
		}
		return s.validateColleague(ctx, u)
	})
}

func (s *Service) validateColleague(ctx context.Context, u *domain.User) error {
	if u.Role == domain.RoleNewHire {
		v := domain.NewValidationError()
		v.Add("role", "New hires are added through the new hire form.")
		return v
	}
	return s.validate(ctx, u)
}

// DeleteColleague removes a user. Tasks and items referencing it are kept.
func (s *Service) DeleteColleague(ctx context.Context, id int64) error {
	return s.locks.WithLock(ctx, lock.UserKey(id), func(ctx context.Context) error {
		if _, err := s.repo.Users.Get(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Users.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("User deleted", "user_id", id)
		return nil
	})
}

// ToggleResource adds a resource to the user or removes it.
func (s *Service) ToggleResource(ctx context.Context, userID, resourceID int64) (bool, error) {
	return s.ToggleTemplate(ctx, userID, string(domain.KindResource), resourceID)
}
