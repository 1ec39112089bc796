package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// Entity is implemented by every stored document.
type Entity interface {
	EntityID() int64
	AssignID(id int64)
}

// Base carries the store-assigned identifier.
type Base struct {
	ID int64 `json:"id"`
}

func (b *Base) EntityID() int64 { return b.ID }

func (b *Base) AssignID(id int64) { b.ID = id }

// Item is anything a condition can reference.
type Item interface {
	Entity
	Kind() Kind
	Title() string
	IsTemplate() bool
	SetTemplate(template bool)
	Validate() error
}

// Templated marks items that live in the template library.
// Editing a template from inside a sequence clones it instead.
type Templated struct {
	Template bool `json:"template"`
}

func (t *Templated) IsTemplate() bool { return t.Template }

func (t *Templated) SetTemplate(template bool) { t.Template = template }

// sequenceOnly is embedded by kinds that never become templates.
type sequenceOnly struct{}

func (sequenceOnly) IsTemplate() bool { return false }

func (sequenceOnly) SetTemplate(bool) {}

// ToDo is a task the new hire has to complete.
type ToDo struct {
	Base
	Templated
	Name     string   `json:"name"`
	Content  string   `json:"content,omitempty"`
	DueOnDay int      `json:"due_on_day"`
	Tags     []string `json:"tags,omitempty"`
}

func (t *ToDo) Kind() Kind    { return KindToDo }
func (t *ToDo) Title() string { return t.Name }

func (t *ToDo) Validate() error {
	v := NewValidationError()
	requireName(v, t.Name)
	if t.DueOnDay < 0 {
		v.Add("due_on_day", "Must be zero or positive.")
	}
	return v.OrNil()
}

// Resource is a piece of documentation, optionally a course.
type Resource struct {
	Base
	Templated
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Content  string   `json:"content,omitempty"`
	Course   bool     `json:"course"`
	Tags     []string `json:"tags,omitempty"`
}

func (r *Resource) Kind() Kind    { return KindResource }
func (r *Resource) Title() string { return r.Name }

func (r *Resource) Validate() error {
	v := NewValidationError()
	requireName(v, r.Name)
	return v.OrNil()
}

// Introduction introduces a colleague to the new hire.
type Introduction struct {
	Base
	Templated
	Name        string   `json:"name"`
	IntroPerson int64    `json:"intro_person"`
	Tags        []string `json:"tags,omitempty"`
}

func (i *Introduction) Kind() Kind    { return KindIntroduction }
func (i *Introduction) Title() string { return i.Name }

func (i *Introduction) Validate() error {
	v := NewValidationError()
	requireName(v, i.Name)
	if i.IntroPerson <= 0 {
		v.Add("intro_person", "This field is required.")
	}
	return v.OrNil()
}

// Badge is awarded to the new hire.
type Badge struct {
	Base
	Templated
	Name    string   `json:"name"`
	Content string   `json:"content,omitempty"`
	Image   string   `json:"image,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (b *Badge) Kind() Kind    { return KindBadge }
func (b *Badge) Title() string { return b.Name }

func (b *Badge) Validate() error {
	v := NewValidationError()
	requireName(v, b.Name)
	return v.OrNil()
}

// Appointment is a meeting, either on a fixed date or relative to the start day.
type Appointment struct {
	Base
	Templated
	Name       string   `json:"name"`
	Content    string   `json:"content,omitempty"`
	FixedDate  bool     `json:"fixed_date"`
	Date       string   `json:"date,omitempty"`
	Time       string   `json:"time,omitempty"`
	OnDay      int      `json:"on_day"`
	MeetingURL string   `json:"meeting_url,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (a *Appointment) Kind() Kind    { return KindAppointment }
func (a *Appointment) Title() string { return a.Name }

func (a *Appointment) Validate() error {
	v := NewValidationError()
	requireName(v, a.Name)
	if a.FixedDate {
		if a.Date == "" {
			v.Add("date", "This field is required when the date is fixed.")
		} else if !validDate(a.Date) {
			v.Add("date", "Enter a valid date (YYYY-MM-DD).")
		}
	} else if a.OnDay < 0 {
		v.Add("on_day", "Must be zero or positive.")
	}
	if a.Time != "" && !ValidClock(a.Time) {
		v.Add("time", "Enter a valid time (HH:MM).")
	}
	return v.OrNil()
}

// Preboarding is a page shown before the first day.
type Preboarding struct {
	Base
	Templated
	Name    string   `json:"name"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (p *Preboarding) Kind() Kind    { return KindPreboarding }
func (p *Preboarding) Title() string { return p.Name }

func (p *Preboarding) Validate() error {
	v := NewValidationError()
	requireName(v, p.Name)
	return v.OrNil()
}

// Channel is the medium an external message is sent through.
type Channel int

const (
	ChannelEmail Channel = iota
	ChannelSlack
	ChannelText
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSlack:
		return "slack"
	case ChannelText:
		return "text"
	}
	return "unknown"
}

// PersonType selects the recipient of an external message.
type PersonType int

const (
	PersonNewHire PersonType = iota
	PersonManager
	PersonBuddy
	PersonCustom
)

// ExternalMessage is sent to the new hire or someone around them.
type ExternalMessage struct {
	Base
	sequenceOnly
	Name       string     `json:"name"`
	Subject    string     `json:"subject,omitempty"`
	Content    string     `json:"content,omitempty"`
	SendVia    Channel    `json:"send_via"`
	PersonType PersonType `json:"person_type"`
	SendTo     int64      `json:"send_to,omitempty"`
}

func (m *ExternalMessage) Kind() Kind    { return KindExternalMessage }
func (m *ExternalMessage) Title() string { return m.Name }

// ForNewHire reports whether the new hire is the recipient.
func (m *ExternalMessage) ForNewHire() bool { return m.PersonType == PersonNewHire }

func (m *ExternalMessage) Validate() error {
	v := NewValidationError()
	requireName(v, m.Name)
	if strings.TrimSpace(m.Content) == "" {
		v.Add("content", "This field is required.")
	}
	if m.SendVia < ChannelEmail || m.SendVia > ChannelText {
		v.Add("send_via", "Select a valid choice.")
	}
	if m.SendVia == ChannelEmail && strings.TrimSpace(m.Subject) == "" {
		v.Add("subject", "This field is required.")
	}
	switch {
	case m.PersonType < PersonNewHire || m.PersonType > PersonCustom:
		v.Add("person_type", "Select a valid choice.")
	case m.PersonType == PersonCustom && m.SendTo <= 0:
		v.Add("send_to", "This field is required when sending to a specific person.")
	}
	return v.OrNil()
}

// NotifyOption picks how the assignee of an admin task is notified.
type NotifyOption int

const (
	NotifyNone NotifyOption = iota
	NotifyEmail
	NotifySlack
)

// Priority of an admin task.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// PendingAdminTask becomes an AdminTask when its condition fires.
type PendingAdminTask struct {
	Base
	sequenceOnly
	Name       string       `json:"name"`
	Comment    string       `json:"comment,omitempty"`
	AssignedTo int64        `json:"assigned_to"`
	Option     NotifyOption `json:"option"`
	SlackUser  string       `json:"slack_user,omitempty"`
	Email      string       `json:"email,omitempty"`
	Priority   Priority     `json:"priority"`
}

func (p *PendingAdminTask) Kind() Kind    { return KindPendingAdminTask }
func (p *PendingAdminTask) Title() string { return p.Name }

func (p *PendingAdminTask) Validate() error {
	v := NewValidationError()
	requireName(v, p.Name)
	if p.AssignedTo <= 0 {
		v.Add("assigned_to", "This field is required.")
	}
	validateNotify(v, p.Option, p.Email, p.SlackUser)
	if p.Priority < PriorityLow || p.Priority > PriorityHigh {
		v.Add("priority", "Select a valid choice.")
	}
	return v.OrNil()
}

// AccountProvision creates an account in a third party for the new hire.
type AccountProvision struct {
	Base
	sequenceOnly
	IntegrationID   int64          `json:"integration_id"`
	IntegrationType string         `json:"integration_type"`
	AdditionalData  map[string]any `json:"additional_data"`
}

func (a *AccountProvision) Kind() Kind    { return KindAccountProvision }
func (a *AccountProvision) Title() string { return a.IntegrationType }

func (a *AccountProvision) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(a.IntegrationType) == "" {
		v.Add("integration_type", "This field is required.")
	}
	return v.OrNil()
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func requireName(v *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		v.Add("name", "This field is required.")
	}
}

func validateNotify(v *ValidationError, option NotifyOption, email, slackUser string) {
	switch option {
	case NotifyNone:
	case NotifyEmail:
		if email == "" {
			v.Add("email", "This field is required when notifying by email.")
		} else if _, err := mail.ParseAddress(email); err != nil {
			v.Add("email", "Enter a valid email address.")
		}
	case NotifySlack:
		if slackUser == "" {
			v.Add("slack_user", "This field is required when notifying through Slack.")
		}
	default:
		v.Add("option", "Select a valid choice.")
	}
}
