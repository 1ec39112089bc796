package domain

import "strings"

// AdminTask is work an admin or manager does for a new hire.
type AdminTask struct {
	Base
	Name       string       `json:"name"`
	NewHireID  int64        `json:"new_hire"`
	AssignedTo int64        `json:"assigned_to"`
	Date       string       `json:"date,omitempty"`
	Priority   Priority     `json:"priority"`
	Option     NotifyOption `json:"option"`
	SlackUser  string       `json:"slack_user,omitempty"`
	Email      string       `json:"email,omitempty"`
	Comment    string       `json:"comment,omitempty"`
	Completed  bool         `json:"completed"`
}

// Validate checks the fields an admin fills in. Role checks on the
// referenced users are done by the caller.
func (t *AdminTask) Validate() error {
	v := NewValidationError()
	requireName(v, t.Name)
	if t.NewHireID <= 0 {
		v.Add("new_hire", "This field is required.")
	}
	if t.AssignedTo <= 0 {
		v.Add("assigned_to", "This field is required.")
	}
	if t.Priority < PriorityLow || t.Priority > PriorityHigh {
		v.Add("priority", "Select a valid choice.")
	}
	if t.Date != "" && !validDate(t.Date) {
		v.Add("date", "Enter a valid date (YYYY-MM-DD).")
	}
	validateNotify(v, t.Option, t.Email, t.SlackUser)
	return v.OrNil()
}

// FromPending builds the task a fired PendingAdminTask creates.
func FromPending(p *PendingAdminTask, newHireID int64, date string) *AdminTask {
	return &AdminTask{
		Name:       p.Name,
		NewHireID:  newHireID,
		AssignedTo: p.AssignedTo,
		Date:       date,
		Priority:   p.Priority,
		Option:     p.Option,
		SlackUser:  p.SlackUser,
		Email:      strings.TrimSpace(p.Email),
		Comment:    p.Comment,
	}
}
