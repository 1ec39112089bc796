package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
)

func lookup(slug string) (catalog.Entry, error) {
	e, ok := catalog.Lookup(slug)
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, slug)
	}
	return e, nil
}

// ItemForm returns the form values of an item: empty defaults when id is 0,
// the stored item otherwise. Account provisions render the fields of their
// integration filled with the stored data.
func (s *Service) ItemForm(ctx context.Context, slug string, id int64) (*ItemForm, error) {
	e, err := lookup(slug)
	if err != nil {
		return nil, err
	}
	form := &ItemForm{Slug: e.Slug, Kind: e.Kind, ID: id}

	if e.Kind == domain.KindAccountProvision {
		if id == 0 {
			return nil, fmt.Errorf("account provision 0: %w", domain.ErrNotFound)
		}
		provision, integration, err := s.provision(ctx, id)
		if err != nil {
			return nil, err
		}
		form.Fields = integration.ProvisionFields
		form.Values = forms.Values(provision.AdditionalData)
		if form.Values == nil {
			form.Values = forms.Values{}
		}
		return form, nil
	}

	var item domain.Item
	if id == 0 {
		item = e.New()
	} else if item, err = s.repo.Item(ctx, e.Kind, id); err != nil {
		return nil, err
	}
	if form.Values, err = forms.FromStruct(item); err != nil {
		return nil, err
	}
	delete(form.Values, "id")
	delete(form.Values, "template")
	return form, nil
}

func (s *Service) provision(ctx context.Context, id int64) (*domain.AccountProvision, *domain.Integration, error) {
	item, err := s.repo.Item(ctx, domain.KindAccountProvision, id)
	if err != nil {
		return nil, nil, err
	}
	provision := item.(*domain.AccountProvision)
	integration, err := s.repo.Integrations.Get(ctx, provision.IntegrationID)
	if err != nil {
		return nil, nil, err
	}
	return provision, integration, nil
}

// SaveItem updates or creates a line item of a condition.
//
// With sourceID 0, or when the source is a template, a new non-template item is
// created from values and put on the condition in place of the source. A
// non-template source is updated in place.
func (s *Service) SaveItem(ctx context.Context, slug string, sourceID, conditionID int64, values forms.Values) (domain.Item, error) {
	e, err := lookup(slug)
	if err != nil {
		return nil, err
	}
	if e.Kind == domain.KindAccountProvision {
		return nil, fmt.Errorf("%w: %q is saved through its integration", domain.ErrUnknownKind, slug)
	}

	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return nil, err
	}

	item := e.New()
	if err := forms.Decode(values, item); err != nil {
		return nil, err
	}
	e.Apply(item)
	item.SetTemplate(false)

	err = s.mutate(ctx, c.SequenceID, "save_item", func(ctx context.Context) error {
		var source domain.Item
		if sourceID != 0 {
			var err error
			if source, err = s.repo.Item(ctx, e.Kind, sourceID); err != nil {
				return err
			}
		}

		if err := s.validateItem(ctx, item); err != nil {
			return err
		}

		if source != nil && !source.IsTemplate() {
			item.AssignID(source.EntityID())
			return s.repo.SaveItem(ctx, item)
		}

		item.AssignID(0)
		if err := s.repo.CreateItem(ctx, item); err != nil {
			return err
		}

		// Reload: the condition may have changed while we waited for the lock.
		c, err := s.repo.Conditions.Get(ctx, conditionID)
		if err != nil {
			return err
		}
		c.AddItem(item)
		if source != nil {
			c.RemoveItem(source)
		}
		return s.repo.Conditions.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// validateItem runs the item checks plus the ones that need the store.
func (s *Service) validateItem(ctx context.Context, item domain.Item) error {
	v := domain.NewValidationError()
	if err := item.Validate(); err != nil {
		verr, ok := domain.AsValidation(err)
		if !ok {
			return err
		}
		v = verr
	}

	check := func(field string, id int64, accept func(*domain.User) bool) error {
		if id <= 0 || v.Has(field) {
			return nil
		}
		u, err := s.repo.Users.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !accept(u)) {
			v.Add(field, "Select a valid choice. That choice is not one of the available choices.")
			return nil
		}
		return err
	}
	anyone := func(*domain.User) bool { return true }

	var err error
	switch it := item.(type) {
	case *domain.PendingAdminTask:
		err = check("assigned_to", it.AssignedTo, (*domain.User).IsAdminOrManager)
	case *domain.Introduction:
		err = check("intro_person", it.IntroPerson, anyone)
	case *domain.ExternalMessage:
		if it.PersonType == domain.PersonCustom {
			err = check("send_to", it.SendTo, anyone)
		}
	}
	if err != nil {
		return err
	}
	return v.OrNil()
}

// SaveAccountProvision creates (exists false, id is an integration) or updates
// (exists true, id is a provision) an account provision on a condition.
func (s *Service) SaveAccountProvision(ctx context.Context, id, conditionID int64, exists bool, values forms.Values) (*domain.AccountProvision, error) {
	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return nil, err
	}

	var provision *domain.AccountProvision
	err = s.mutate(ctx, c.SequenceID, "save_account_provision", func(ctx context.Context) error {
		if exists {
			p, integration, err := s.provision(ctx, id)
			if err != nil {
				return err
			}
			data, err := integration.CleanProvisionData(values)
			if err != nil {
				return err
			}
			p.AdditionalData = data
			provision = p
			return s.repo.SaveItem(ctx, p)
		}

		integration, err := s.repo.Integrations.Get(ctx, id)
		if err != nil {
			return err
		}
		if !integration.CanProvision() {
			return fmt.Errorf("integration %d cannot provision accounts: %w", id, domain.ErrNotFound)
		}
		data, err := integration.CleanProvisionData(values)
		if err != nil {
			return err
		}
		provision = &domain.AccountProvision{
			IntegrationID:   integration.ID,
			IntegrationType: integration.ProvisionName,
			AdditionalData:  data,
		}
		if err := s.repo.CreateItem(ctx, provision); err != nil {
			return err
		}

		c, err := s.repo.Conditions.Get(ctx, conditionID)
		if err != nil {
			return err
		}
		c.AddItem(provision)
		return s.repo.Conditions.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return provision, nil
}

// AddTemplate puts an item of a templated kind on a condition and returns the
// refreshed condition.
func (s *Service) AddTemplate(ctx context.Context, conditionID int64, slug string, templateID int64) (*ConditionView, error) {
	e, ok := catalog.TemplateLookup(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, slug)
	}
	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, c.SequenceID, "add_template", func(ctx context.Context) error {
		item, err := s.repo.Item(ctx, e.Kind, templateID)
		if err != nil {
			return err
		}
		if c, err = s.repo.Conditions.Get(ctx, conditionID); err != nil {
			return err
		}
		if !c.AddItem(item) {
			return nil
		}
		return s.repo.Conditions.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// RemoveItem takes an item of any sequence kind off a condition. The item
// itself is kept.
func (s *Service) RemoveItem(ctx context.Context, conditionID int64, slug string, itemID int64) error {
	e, err := lookup(slug)
	if err != nil {
		return err
	}
	c, err := s.repo.Conditions.Get(ctx, conditionID)
	if err != nil {
		return err
	}

	return s.mutate(ctx, c.SequenceID, "remove_item", func(ctx context.Context) error {
		item, err := s.repo.Item(ctx, e.Kind, itemID)
		if err != nil {
			return err
		}
		c, err := s.repo.Conditions.Get(ctx, conditionID)
		if err != nil {
			return err
		}
		if !c.RemoveItem(item) {
			return nil
		}
		return s.repo.Conditions.Save(ctx, c)
	})
}

// ListTemplates returns what can be dropped on a condition for slug: the
// templates of a templated kind, or for accountprovision the integrations
// offering provisioning. Unknown slugs yield an empty list.
func (s *Service) ListTemplates(ctx context.Context, slug string) ([]catalog.Summary, error) {
	out := []catalog.Summary{}

	if slug == string(domain.KindAccountProvision) {
		integrations, err := s.repo.Integrations.Filter(ctx, (*domain.Integration).CanProvision)
		if err != nil {
			return nil, err
		}
		provision, _ := catalog.Lookup(slug)
		for _, i := range integrations {
			out = append(out, catalog.Summary{
				ID:    i.ID,
				Kind:  domain.KindIntegration,
				Slug:  slug,
				Label: provision.Label,
				Title: i.Name,
			})
		}
		return out, nil
	}

	e, ok := catalog.TemplateLookup(slug)
	if !ok {
		return out, nil
	}
	templates, err := s.repo.Templates(ctx, e.Kind)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		out = append(out, catalog.Summarize(t))
	}
	return out, nil
}
