package sequence

import (
	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
)

// Timeline is a sequence with its conditions in display order.
type Timeline struct {
	Sequence   *domain.Sequence  `json:"sequence"`
	Conditions []ConditionView   `json:"conditions"`
	ToDos      []catalog.Summary `json:"todos"`
}

// ConditionView is a condition with its items resolved to summaries.
type ConditionView struct {
	ID         int64                `json:"id"`
	SequenceID int64                `json:"sequence_id"`
	Type       domain.ConditionType `json:"condition_type"`
	TypeName   string               `json:"condition_type_name"`
	Days       int                  `json:"days"`
	Time       string               `json:"time,omitempty"`
	// Triggers are the to-dos a to-do based condition waits for.
	Triggers []catalog.Summary `json:"condition_to_dos"`
	// Items excludes external messages, which are split below.
	Items           map[domain.Kind][]catalog.Summary `json:"items"`
	ExternalNewHire []catalog.Summary                 `json:"external_new_hire"`
	ExternalAdmin   []catalog.Summary                 `json:"external_admin"`
}

// ItemForm is the payload an editor needs to render an item form.
type ItemForm struct {
	Slug   string       `json:"slug"`
	Kind   domain.Kind  `json:"kind"`
	ID     int64        `json:"id"`
	Values forms.Values `json:"values"`
	// Fields is set for account provisions: the inputs of the integration.
	Fields []domain.ProvisionField `json:"fields,omitempty"`
}
