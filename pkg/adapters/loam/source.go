// Package loam reads the template library from a directory of markdown (or
// JSON/YAML) documents using Loam.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/templates"
)

var _ templates.Source = (*Source)(nil)

// Source adapts a Loam repository to templates.Source.
type Source struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initialises a read-only Loam repository on dir.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across formats; the form
	// decoder converts them.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// Documents lists every document as a template payload. List only carries the
// cached index, so each document is read again for its body and nested fields.
func (s *Source) Documents(ctx context.Context) ([]templates.Document, error) {
	listed, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make([]templates.Document, 0, len(listed))
	for _, entry := range listed {
		doc, err := s.Repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}
		meta := doc.Data
		if meta.Kind == "" {
			return nil, fmt.Errorf("%s: missing kind", entry.ID)
		}

		values := forms.Values{}
		for k, v := range meta.Fields {
			values[k] = v
		}
		name := meta.Name
		if name == "" {
			name = humanize(entry.ID)
		}
		values["name"] = name
		if len(meta.Tags) > 0 {
			values["tags"] = meta.Tags
		}
		if body := strings.TrimSpace(doc.Content); body != "" {
			values["content"] = body
		}

		out = append(out, templates.Document{
			Path:   entry.ID,
			Slug:   strings.ToLower(meta.Kind),
			Values: values,
		})
	}
	return out, nil
}

// humanize turns "order-laptop.md" into "Order laptop".
func humanize(id string) string {
	base := strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	if base == "" {
		return base
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
