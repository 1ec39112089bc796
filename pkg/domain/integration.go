package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ProvisionField describes one input an integration needs to create an account.
type ProvisionField struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Required bool     `json:"required" yaml:"required"`
	Choices  []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Integration is a third party the organization provisions accounts in.
type Integration struct {
	Base
	Name            string           `json:"name"`
	ProvisionName   string           `json:"provision_name"`
	ProvisionFields []ProvisionField `json:"provision_fields,omitempty"`
}

// CanProvision reports whether the integration offers account provisioning.
func (i *Integration) CanProvision() bool {
	return i.ProvisionName != ""
}

// Validate checks the integration definition itself.
func (i *Integration) Validate() error {
	v := NewValidationError()
	requireName(v, i.Name)
	seen := make(map[string]bool)
	for idx, f := range i.ProvisionFields {
		key := fmt.Sprintf("provision_fields.%d", idx)
		if f.ID == "" {
			v.Add(key, "Field id is required.")
			continue
		}
		if seen[f.ID] {
			v.Add(key, fmt.Sprintf("Duplicate field id %q.", f.ID))
		}
		seen[f.ID] = true
	}
	return v.OrNil()
}

// CleanProvisionData validates data against the provision fields and returns
// only the declared fields, trimmed.
func (i *Integration) CleanProvisionData(data map[string]any) (map[string]any, error) {
	v := NewValidationError()
	cleaned := make(map[string]any, len(i.ProvisionFields))
	for _, f := range i.ProvisionFields {
		raw, ok := data[f.ID]
		value := ""
		if ok && raw != nil {
			value = strings.TrimSpace(fmt.Sprint(raw))
		}
		if value == "" {
			if f.Required {
				v.Add(f.ID, "This field is required.")
			}
			continue
		}
		if len(f.Choices) > 0 && !slices.Contains(f.Choices, value) {
			v.Add(f.ID, fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value))
			continue
		}
		cleaned[f.ID] = value
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return cleaned, nil
}
