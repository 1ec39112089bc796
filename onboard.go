package onboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/internal/logging"
	loamAdapter "github.com/aretw0/onboard/pkg/adapters/loam"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/adapters/postgres"
	redisAdapter "github.com/aretw0/onboard/pkg/adapters/redis"
	"github.com/aretw0/onboard/pkg/admintasks"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/integrations"
	"github.com/aretw0/onboard/pkg/lock"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/people"
	"github.com/aretw0/onboard/pkg/persistence/middleware"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/aretw0/onboard/pkg/sequence"
	"github.com/aretw0/onboard/pkg/templates"
	"github.com/aretw0/onboard/pkg/trigger"
)

// App wires the services of onboard on one store.
type App struct {
	Config     config.Config
	Store      ports.DocumentStore
	Repo       *repository.Repository
	Locks      *lock.Manager
	Metrics    *observability.Metrics
	Dispatcher ports.ActionDispatcher
	Logger     *slog.Logger

	Sequences    *sequence.Service
	Templates    *templates.Service
	People       *people.Service
	Trigger      *trigger.Processor
	AdminTasks   *admintasks.Service
	Integrations *integrations.Service

	clock   func() time.Time
	redis   *redisAdapter.Store
	closers []io.Closer
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the logger shared by every service.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithStore bypasses the configured store driver.
func WithStore(store ports.DocumentStore) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithDispatcher bypasses the configured dispatcher.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(a *App) {
		a.Dispatcher = d
	}
}

// WithClock overrides the time source of the scheduler.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.clock = now
	}
}

// New builds an App from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = logging.NewNop()
	}

	var locker ports.DistributedLocker
	if a.Store == nil {
		store, l, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.Store, locker = store, l
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Store.EncryptionKey)
		if err != nil || len(key) != 32 {
			_ = a.Close()
			return nil, errors.New("store.encryption_key must be 32 bytes encoded in base64")
		}
		a.Store = middleware.Chain(a.Store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
			Kinds:     middleware.DefaultSensitiveKinds,
		}))
	}

	if a.Dispatcher == nil {
		d, err := a.openDispatcher()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Dispatcher = d
	}

	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics()
	}
	lockOpts := []lock.Option{lock.WithLogger(a.Logger)}
	if locker != nil {
		lockOpts = append(lockOpts, lock.WithLocker(locker))
	}
	a.Locks = lock.NewManager(lockOpts...)
	a.Repo = repository.New(a.Store)

	a.AdminTasks = admintasks.NewService(a.Repo,
		admintasks.WithDispatcher(a.Dispatcher),
		admintasks.WithClock(a.clock),
		admintasks.WithLogger(a.Logger),
	)
	a.Trigger = trigger.NewProcessor(a.Repo,
		trigger.WithDispatcher(a.Dispatcher),
		trigger.WithAdminTasks(a.AdminTasks),
		trigger.WithLocks(a.Locks),
		trigger.WithMetrics(a.Metrics),
		trigger.WithClock(a.clock),
		trigger.WithLogger(a.Logger),
	)
	a.Sequences = sequence.NewService(a.Repo,
		sequence.WithLocks(a.Locks),
		sequence.WithMetrics(a.Metrics),
		sequence.WithLogger(a.Logger),
	)
	a.Templates = templates.NewService(a.Repo, templates.WithLogger(a.Logger))
	a.People = people.NewService(a.Repo,
		people.WithProcessor(a.Trigger),
		people.WithDispatcher(a.Dispatcher),
		people.WithLocks(a.Locks),
		people.WithLogger(a.Logger),
	)
	a.Integrations = integrations.NewService(a.Repo, integrations.WithLogger(a.Logger))
	return a, nil
}

func (a *App) openStore(ctx context.Context) (ports.DocumentStore, ports.DistributedLocker, error) {
	switch a.Config.Store.Driver {
	case config.DriverRedis:
		rc := a.Config.Store.Redis
		store := redisAdapter.New(rc.Addr, rc.Password, rc.DB, redisAdapter.WithPrefix(rc.Prefix))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
		}
		a.redis = store
		a.closers = append(a.closers, store)
		a.Logger.Info("Using redis store", "addr", rc.Addr, "prefix", rc.Prefix)
		return store, redisAdapter.NewLocker(store.Client(), rc.Prefix), nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, a.Config.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store)
		a.Logger.Info("Using postgres store")
		return store, nil, nil
	default:
		a.Logger.Info("Using in-memory store")
		return memory.NewStore(), nil, nil
	}
}

func (a *App) openDispatcher() (ports.ActionDispatcher, error) {
	if a.Config.Dispatch.Driver != "redis" {
		return dispatch.NewLogger(a.Logger), nil
	}
	if a.redis == nil {
		return nil, errors.New("the redis dispatcher needs the redis store")
	}
	outbox := redisAdapter.NewOutbox(a.redis.Client(), a.Config.Store.Redis.Prefix, a.Config.Dispatch.MaxLen)
	a.Logger.Info("Dispatching actions to redis stream", "stream", outbox.Stream())
	return outbox, nil
}

// Bootstrap seeds the organization and the builtin integrations, then imports
// the template directory when one is configured.
func (a *App) Bootstrap(ctx context.Context) error {
	if _, err := a.Repo.Organizations.Get(ctx, domain.OrganizationID); errors.Is(err, domain.ErrNotFound) {
		org := a.Config.Organization
		err := a.Repo.SaveOrganization(ctx, &domain.Organization{
			Name:         org.Name,
			Timezone:     org.Timezone,
			NewHireEmail: org.NewHireEmail,
		})
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if _, err := a.Integrations.Seed(ctx); err != nil {
		return err
	}
	if dir := a.Config.Templates.Dir; dir != "" {
		if _, err := a.ImportTemplates(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

// ImportTemplates adds the markdown templates found in dir to the library.
func (a *App) ImportTemplates(ctx context.Context, dir string) (*templates.ImportReport, error) {
	src, err := loamAdapter.Open(dir)
	if err != nil {
		return nil, err
	}
	report, err := a.Templates.Import(ctx, src)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("Templates imported", "dir", dir, "created", len(report.Created), "skipped", len(report.Skipped))
	return report, nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
