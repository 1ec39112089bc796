package repository

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// Repository groups the collections of the onboarding domain.
type Repository struct {
	store ports.DocumentStore

	Sequences     *Collection[domain.Sequence, *domain.Sequence]
	Conditions    *Collection[domain.Condition, *domain.Condition]
	Users         *Collection[domain.User, *domain.User]
	AdminTasks    *Collection[domain.AdminTask, *domain.AdminTask]
	Integrations  *Collection[domain.Integration, *domain.Integration]
	Organizations *Collection[domain.Organization, *domain.Organization]
}

// New builds a Repository on store.
func New(store ports.DocumentStore) *Repository {
	return &Repository{
		store:         store,
		Sequences:     NewCollection[domain.Sequence](store, domain.KindSequence),
		Conditions:    NewCollection[domain.Condition](store, domain.KindCondition),
		Users:         NewCollection[domain.User](store, domain.KindUser),
		AdminTasks:    NewCollection[domain.AdminTask](store, domain.KindAdminTask),
		Integrations:  NewCollection[domain.Integration](store, domain.KindIntegration),
		Organizations: NewCollection[domain.Organization](store, domain.KindOrganization),
	}
}

// Store returns the underlying document store.
func (r *Repository) Store() ports.DocumentStore {
	return r.store
}

// Item loads an item of any kind.
func (r *Repository) Item(ctx context.Context, kind domain.Kind, id int64) (domain.Item, error) {
	item, err := domain.NewItem(kind)
	if err != nil {
		return nil, err
	}
	if err := loadDocument(ctx, r.store, kind, id, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem allocates an id for item and stores it.
func (r *Repository) CreateItem(ctx context.Context, item domain.Item) error {
	id, err := r.store.NextID(ctx, item.Kind())
	if err != nil {
		return err
	}
	item.AssignID(id)
	return r.SaveItem(ctx, item)
}

// SaveItem overwrites the stored item.
func (r *Repository) SaveItem(ctx context.Context, item domain.Item) error {
	return saveDocument(ctx, r.store, item.Kind(), item)
}

// DeleteItem removes an item. References held by conditions or users are left
// in place and skipped when resolved.
func (r *Repository) DeleteItem(ctx context.Context, kind domain.Kind, id int64) error {
	return r.store.Delete(ctx, kind, id)
}

// Items loads every item of kind ordered by id.
func (r *Repository) Items(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	if _, err := domain.NewItem(kind); err != nil {
		return nil, err
	}
	ids, err := r.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.Item(ctx, kind, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ResolveItems loads the items referenced by set, kind by kind in ItemKinds
// order. Dangling references are skipped.
func (r *Repository) ResolveItems(ctx context.Context, set domain.ItemSet) (map[domain.Kind][]domain.Item, error) {
	out := make(map[domain.Kind][]domain.Item)
	for _, kind := range domain.ItemKinds {
		for _, id := range set[kind] {
			item, err := r.Item(ctx, kind, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[kind] = append(out[kind], item)
		}
	}
	return out, nil
}

// Templates returns the template items of kind sorted by name.
func (r *Repository) Templates(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	items, err := r.Items(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if item.IsTemplate() {
			out = append(out, item)
		}
	}
	SortByTitle(out)
	return out, nil
}

// ConditionsOf returns the conditions of a sequence in timeline order.
func (r *Repository) ConditionsOf(ctx context.Context, sequenceID int64) ([]*domain.Condition, error) {
	conditions, err := r.Conditions.Filter(ctx, func(c *domain.Condition) bool {
		return c.SequenceID == sequenceID
	})
	if err != nil {
		return nil, err
	}
	domain.SortTimeline(conditions)
	return conditions, nil
}

// Organization loads the organization singleton, returning defaults when it
// was never saved.
func (r *Repository) Organization(ctx context.Context) (*domain.Organization, error) {
	org, err := r.Organizations.Get(ctx, domain.OrganizationID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Organization{Base: domain.Base{ID: domain.OrganizationID}, Timezone: "UTC"}, nil
	}
	return org, err
}

// SaveOrganization stores the organization singleton.
func (r *Repository) SaveOrganization(ctx context.Context, org *domain.Organization) error {
	org.AssignID(domain.OrganizationID)
	return r.Organizations.Save(ctx, org)
}

// SortByTitle orders items by title then id.
func SortByTitle(items []domain.Item) {
	slices.SortStableFunc(items, func(a, b domain.Item) int {
		if c := cmp.Compare(a.Title(), b.Title()); c != 0 {
			return c
		}
		return cmp.Compare(a.EntityID(), b.EntityID())
	})
}
