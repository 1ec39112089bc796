// Package integrations manages the third parties accounts are provisioned in.
package integrations

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/repository"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin is the definition of an integration shipped with onboard.
type Builtin struct {
	Name            string                  `yaml:"name"`
	ProvisionName   string                  `yaml:"provision_name"`
	ProvisionFields []domain.ProvisionField `yaml:"provision_fields"`
}

// Builtins returns the integrations shipped with onboard.
func Builtins() ([]Builtin, error) {
	var out []Builtin
	if err := yaml.Unmarshal(builtinYAML, &out); err != nil {
		return nil, fmt.Errorf("failed to parse builtin integrations: %w", err)
	}
	return out, nil
}

// Service lists and creates integrations.
type Service struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service on repo.
func NewService(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed stores the builtin integrations missing from the store, matched by
// provision name. It returns how many were added.
func (s *Service) Seed(ctx context.Context) (int, error) {
	builtins, err := Builtins()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.Integrations.List(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, b := range builtins {
		if slices.ContainsFunc(existing, func(i *domain.Integration) bool {
			return strings.EqualFold(i.ProvisionName, b.ProvisionName)
		}) {
			continue
		}
		integration := &domain.Integration{
			Name:            b.Name,
			ProvisionName:   b.ProvisionName,
			ProvisionFields: b.ProvisionFields,
		}
		if err := s.repo.Integrations.Create(ctx, integration); err != nil {
			return added, err
		}
		added++
	}
	if added > 0 {
		s.logger.Info("Builtin integrations seeded", "count", added)
	}
	return added, nil
}

// List returns every integration ordered by name.
func (s *Service) List(ctx context.Context) ([]*domain.Integration, error) {
	list, err := s.repo.Integrations.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b *domain.Integration) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

// Get returns the integration.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Integration, error) {
	return s.repo.Integrations.Get(ctx, id)
}

// Create validates values and stores a new integration.
func (s *Service) Create(ctx context.Context, values forms.Values) (*domain.Integration, error) {
	integration := &domain.Integration{}
	if err := forms.Decode(values, integration); err != nil {
		return nil, err
	}
	integration.ID = 0
	integration.Name = strings.TrimSpace(integration.Name)
	if err := integration.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Integrations.Create(ctx, integration); err != nil {
		return nil, err
	}
	s.logger.Info("Integration created", "integration_id", integration.ID, "provision_name", integration.ProvisionName)
	return integration, nil
}
