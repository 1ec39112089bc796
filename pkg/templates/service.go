// Package templates manages the template library: the reusable to-dos,
// resources, introductions, badges, appointments and preboarding pages that
// sequences reference.
package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/repository"
)

// Service edits templates.
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

// NewService creates a Service.
func NewService(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func lookup(slug string) (catalog.Entry, error) {
	e, ok := catalog.TemplateLookup(slug)
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, slug)
	}
	return e, nil
}

// List returns the templates of slug sorted by name.
func (s *Service) List(ctx context.Context, slug string) ([]domain.Item, error) {
	e, err := lookup(slug)
	if err != nil {
		return nil, err
	}
	return s.repo.Templates(ctx, e.Kind)
}

// Get returns a template. Items that are not templates are reported as not found.
func (s *Service) Get(ctx context.Context, slug string, id int64) (domain.Item, error) {
	e, err := lookup(slug)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Item(ctx, e.Kind, id)
	if err != nil {
		return nil, err
	}
	if !item.IsTemplate() {
		return nil, fmt.Errorf("%s %d is not a template: %w", e.Kind, id, domain.ErrNotFound)
	}
	return item, nil
}

// Create validates values and stores a new template.
func (s *Service) Create(ctx context.Context, slug string, values forms.Values) (domain.Item, error) {
	e, err := lookup(slug)
	if err != nil {
		return nil, err
	}
	item := e.New()
	if err := forms.Decode(values, item); err != nil {
		return nil, err
	}
	item.AssignID(0)
	item.SetTemplate(true)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("Template created", "kind", item.Kind(), "id", item.EntityID())
	return item, nil
}

// Update replaces the fields of a template.
func (s *Service) Update(ctx context.Context, slug string, id int64, values forms.Values) (domain.Item, error) {
	if _, err := s.Get(ctx, slug, id); err != nil {
		return nil, err
	}
	e, _ := lookup(slug)
	item := e.New()
	if err := forms.Decode(values, item); err != nil {
		return nil, err
	}
	item.AssignID(id)
	item.SetTemplate(true)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a template. Sequences still referencing it skip it.
func (s *Service) Delete(ctx context.Context, slug string, id int64) error {
	item, err := s.Get(ctx, slug, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, item.Kind(), id); err != nil {
		return err
	}
	s.logger.Info("Template deleted", "kind", item.Kind(), "id", id)
	return nil
}

// Duplicate copies a template under the name "<name> (copy)".
func (s *Service) Duplicate(ctx context.Context, slug string, id int64) (domain.Item, error) {
	item, err := s.Get(ctx, slug, id)
	if err != nil {
		return nil, err
	}
	values, err := forms.FromStruct(item)
	if err != nil {
		return nil, err
	}
	values["name"] = fmt.Sprintf("%s (copy)", item.Title())
	return s.Create(ctx, slug, values)
}

// Document is one template read from an external library.
type Document struct {
	Path   string
	Slug   string
	Values forms.Values
}

// Source lists template documents, e.g. a directory of markdown files.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// ImportReport summarises an Import run.
type ImportReport struct {
	Created []catalog.Summary `json:"created"`
	Skipped []string          `json:"skipped"`
}

// Import creates a template for every document of src. Documents whose kind
// already has a template with the same name are skipped.
func (s *Service) Import(ctx context.Context, src Source) (*ImportReport, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Created: []catalog.Summary{}, Skipped: []string{}}
	existing := map[string]bool{}
	loaded := map[domain.Kind]bool{}
	for _, doc := range docs {
		e, err := lookup(doc.Slug)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		name, _ := doc.Values["name"].(string)
		key := string(e.Kind) + "/" + strings.ToLower(strings.TrimSpace(name))

		if !loaded[e.Kind] {
			if err := s.loadNames(ctx, e.Kind, existing); err != nil {
				return nil, err
			}
			loaded[e.Kind] = true
		}
		if existing[key] {
			report.Skipped = append(report.Skipped, doc.Path)
			s.logger.Debug("Template already present", "path", doc.Path)
			continue
		}

		item, err := s.Create(ctx, e.Slug, doc.Values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		existing[key] = true
		report.Created = append(report.Created, catalog.Summarize(item))
	}
	s.logger.Info("Templates imported", "created", len(report.Created), "skipped", len(report.Skipped))
	return report, nil
}

func (s *Service) loadNames(ctx context.Context, kind domain.Kind, into map[string]bool) error {
	items, err := s.repo.Templates(ctx, kind)
	if err != nil {
		return err
	}
	for _, item := range items {
		into[string(kind)+"/"+strings.ToLower(strings.TrimSpace(item.Title()))] = true
	}
	return nil
}
