// Package catalog maps the item slugs used by the admin API onto domain kinds.
//
// Most slugs are the kind itself. External messages are exposed through three
// slugs that pin the channel (pendingemailmessage, pendingslackmessage,
// pendingtextmessage) while sharing one stored kind.
package catalog

import (
	"strings"

	"github.com/aretw0/onboard/pkg/domain"
)

// Entry describes one slug.
type Entry struct {
	Slug  string
	Kind  domain.Kind
	Label string

	channel *domain.Channel
}

// Templated reports whether the entry belongs to the template library.
func (e Entry) Templated() bool {
	return domain.IsTemplateKind(e.Kind)
}

// New returns an empty item with the slug's fixed fields applied.
func (e Entry) New() domain.Item {
	item, err := domain.NewItem(e.Kind)
	if err != nil {
		// Entries are only built from known kinds.
		panic(err)
	}
	e.Apply(item)
	return item
}

// Apply forces the slug's fixed fields on item.
func (e Entry) Apply(item domain.Item) {
	if msg, ok := item.(*domain.ExternalMessage); ok && e.channel != nil {
		msg.SendVia = *e.channel
	}
}

func channel(c domain.Channel) *domain.Channel { return &c }

var templateEntries = []Entry{
	{Slug: "todo", Kind: domain.KindToDo, Label: "To do"},
	{Slug: "resource", Kind: domain.KindResource, Label: "Resource"},
	{Slug: "introduction", Kind: domain.KindIntroduction, Label: "Introduction"},
	{Slug: "badge", Kind: domain.KindBadge, Label: "Badge"},
	{Slug: "appointment", Kind: domain.KindAppointment, Label: "Appointment"},
	{Slug: "preboarding", Kind: domain.KindPreboarding, Label: "Preboarding"},
}

var sequenceEntries = []Entry{
	{Slug: "pendingtextmessage", Kind: domain.KindExternalMessage, Label: "Text message", channel: channel(domain.ChannelText)},
	{Slug: "pendingemailmessage", Kind: domain.KindExternalMessage, Label: "Email message", channel: channel(domain.ChannelEmail)},
	{Slug: "pendingslackmessage", Kind: domain.KindExternalMessage, Label: "Slack message", channel: channel(domain.ChannelSlack)},
	{Slug: "pendingadmintask", Kind: domain.KindPendingAdminTask, Label: "Admin task"},
	{Slug: "accountprovision", Kind: domain.KindAccountProvision, Label: "Account provision"},
}

// Entries returns every slug, sequence-only ones first.
func Entries() []Entry {
	out := make([]Entry, 0, len(sequenceEntries)+len(templateEntries))
	out = append(out, sequenceEntries...)
	return append(out, templateEntries...)
}

// TemplateEntries returns the slugs of the template library.
func TemplateEntries() []Entry {
	return append([]Entry(nil), templateEntries...)
}

// Lookup resolves any slug usable inside a sequence. Matching ignores case.
func Lookup(slug string) (Entry, bool) {
	for _, e := range Entries() {
		if strings.EqualFold(e.Slug, slug) {
			return e, true
		}
	}
	return Entry{}, false
}

// TemplateLookup resolves slugs of templated kinds only.
func TemplateLookup(slug string) (Entry, bool) {
	for _, e := range templateEntries {
		if strings.EqualFold(e.Slug, slug) {
			return e, true
		}
	}
	return Entry{}, false
}

// ForItem returns the canonical entry of an item. External messages map
// to the slug of their channel.
func ForItem(item domain.Item) (Entry, bool) {
	if msg, ok := item.(*domain.ExternalMessage); ok {
		for _, e := range sequenceEntries {
			if e.channel != nil && *e.channel == msg.SendVia {
				return e, true
			}
		}
		return Entry{}, false
	}
	for _, e := range Entries() {
		if e.Kind == item.Kind() {
			return e, true
		}
	}
	return Entry{}, false
}

// Summary is the content-less view of an item shown in lists and timelines.
type Summary struct {
	ID       int64       `json:"id"`
	Kind     domain.Kind `json:"kind"`
	Slug     string      `json:"slug"`
	Label    string      `json:"label"`
	Title    string      `json:"title"`
	Template bool        `json:"template"`
}

// Summarize builds the Summary of item.
func Summarize(item domain.Item) Summary {
	s := Summary{
		ID:       item.EntityID(),
		Kind:     item.Kind(),
		Slug:     string(item.Kind()),
		Title:    item.Title(),
		Template: item.IsTemplate(),
	}
	if e, ok := ForItem(item); ok {
		s.Slug, s.Label = e.Slug, e.Label
	}
	return s
}
