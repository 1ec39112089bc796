package domain

import (
	"fmt"
	"slices"
)

// Kind identifies a stored entity collection.
type Kind string

// Item kinds a condition (or a user) can reference.
const (
	KindToDo             Kind = "todo"
	KindResource         Kind = "resource"
	KindIntroduction     Kind = "introduction"
	KindBadge            Kind = "badge"
	KindAppointment      Kind = "appointment"
	KindPreboarding      Kind = "preboarding"
	KindExternalMessage  Kind = "externalmessage"
	KindPendingAdminTask Kind = "pendingadmintask"
	KindAccountProvision Kind = "accountprovision"
)

// Non-item kinds.
const (
	KindSequence     Kind = "sequence"
	KindCondition    Kind = "condition"
	KindUser         Kind = "user"
	KindAdminTask    Kind = "admintask"
	KindIntegration  Kind = "integration"
	KindOrganization Kind = "organization"
)

// TemplateKinds are the kinds kept in the template library.
var TemplateKinds = []Kind{
	KindToDo,
	KindResource,
	KindIntroduction,
	KindBadge,
	KindAppointment,
	KindPreboarding,
}

// IsTemplateKind reports whether items of kind k can be templates.
func IsTemplateKind(k Kind) bool {
	return slices.Contains(TemplateKinds, k)
}

// ItemSet maps a kind to the ordered ids it references.
// The zero value is usable for reads; Add initialises it lazily.
type ItemSet map[Kind][]int64

// Add appends id under kind unless it is already present.
// It reports whether the set changed.
func (s *ItemSet) Add(kind Kind, id int64) bool {
	if *s == nil {
		*s = make(ItemSet)
	}
	if slices.Contains((*s)[kind], id) {
		return false
	}
	(*s)[kind] = append((*s)[kind], id)
	return true
}

// Remove drops id from kind. It reports whether the set changed.
func (s ItemSet) Remove(kind Kind, id int64) bool {
	ids := s[kind]
	idx := slices.Index(ids, id)
	if idx < 0 {
		return false
	}
	ids = slices.Delete(ids, idx, idx+1)
	if len(ids) == 0 {
		delete(s, kind)
	} else {
		s[kind] = ids
	}
	return true
}

// Contains reports whether id is referenced under kind.
func (s ItemSet) Contains(kind Kind, id int64) bool {
	return slices.Contains(s[kind], id)
}

// Toggle adds id when missing and removes it otherwise.
// It reports whether id is present afterwards.
func (s *ItemSet) Toggle(kind Kind, id int64) bool {
	if s.Contains(kind, id) {
		s.Remove(kind, id)
		return false
	}
	s.Add(kind, id)
	return true
}

// Len returns the total number of references.
func (s ItemSet) Len() int {
	n := 0
	for _, ids := range s {
		n += len(ids)
	}
	return n
}

// Clone returns a deep copy.
func (s ItemSet) Clone() ItemSet {
	if s == nil {
		return nil
	}
	out := make(ItemSet, len(s))
	for k, ids := range s {
		out[k] = slices.Clone(ids)
	}
	return out
}

// ItemKinds lists every kind a condition can reference, in display order.
var ItemKinds = []Kind{
	KindToDo,
	KindResource,
	KindIntroduction,
	KindBadge,
	KindAppointment,
	KindPreboarding,
	KindExternalMessage,
	KindPendingAdminTask,
	KindAccountProvision,
}

// NewItem returns an empty item of kind k.
func NewItem(k Kind) (Item, error) {
	switch k {
	case KindToDo:
		return &ToDo{}, nil
	case KindResource:
		return &Resource{}, nil
	case KindIntroduction:
		return &Introduction{}, nil
	case KindBadge:
		return &Badge{}, nil
	case KindAppointment:
		return &Appointment{}, nil
	case KindPreboarding:
		return &Preboarding{}, nil
	case KindExternalMessage:
		return &ExternalMessage{}, nil
	case KindPendingAdminTask:
		return &PendingAdminTask{Priority: PriorityMedium}, nil
	case KindAccountProvision:
		return &AccountProvision{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}
