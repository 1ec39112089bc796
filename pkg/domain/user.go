package domain

import (
	"net/mail"
	"slices"
	"strings"
	"time"
)

// Role of a user inside the organization.
type Role int

const (
	RoleNewHire Role = iota
	RoleAdmin
	RoleManager
	RoleEmployee
)

func (r Role) String() string {
	switch r {
	case RoleNewHire:
		return "new_hire"
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleEmployee:
		return "employee"
	}
	return "unknown"
}

// User is a new hire or a colleague.
type User struct {
	Base
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	StartDay    string `json:"start_day,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Position    string `json:"position,omitempty"`
	Message     string `json:"message,omitempty"`
	ManagerID   int64  `json:"manager_id,omitempty"`
	BuddyID     int64  `json:"buddy_id,omitempty"`
	SlackUserID string `json:"slack_user_id,omitempty"`

	// Items are the assigned templated items (to-dos, resources...).
	Items ItemSet `json:"items,omitempty"`
	// Conditions are linked from sequences and wait for their trigger.
	Conditions          []int64 `json:"conditions,omitempty"`
	ProcessedConditions []int64 `json:"processed_conditions,omitempty"`
	CompletedToDos      []int64 `json:"completed_to_dos,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdminOrManager reports whether u may be assigned admin work.
func (u *User) IsAdminOrManager() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// Validate checks the profile fields shared by every role.
func (u *User) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(u.FirstName) == "" {
		v.Add("first_name", "This field is required.")
	}
	if strings.TrimSpace(u.LastName) == "" {
		v.Add("last_name", "This field is required.")
	}
	if u.Email == "" {
		v.Add("email", "This field is required.")
	} else if _, err := mail.ParseAddress(u.Email); err != nil {
		v.Add("email", "Enter a valid email address.")
	}
	if u.Role < RoleNewHire || u.Role > RoleEmployee {
		v.Add("role", "Select a valid choice.")
	}
	if u.Role == RoleNewHire && u.StartDay == "" {
		v.Add("start_day", "This field is required.")
	}
	if u.StartDay != "" {
		if _, err := time.Parse(DateLayout, u.StartDay); err != nil {
			v.Add("start_day", "Enter a valid date (YYYY-MM-DD).")
		}
	}
	if u.Timezone != "" {
		if _, err := time.LoadLocation(u.Timezone); err != nil {
			v.Add("timezone", "Unknown time zone.")
		}
	}
	return v.OrNil()
}

// Start returns the start day at midnight in loc. ok is false when unset or malformed.
func (u *User) Start(loc *time.Location) (time.Time, bool) {
	if u.StartDay == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, u.StartDay, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Location resolves the user's time zone, falling back to def.
func (u *User) Location(def *time.Location) *time.Location {
	if u.Timezone != "" {
		if loc, err := time.LoadLocation(u.Timezone); err == nil {
			return loc
		}
	}
	if def == nil {
		return time.UTC
	}
	return def
}

// LinkCondition links a condition id once.
func (u *User) LinkCondition(id int64) bool {
	if slices.Contains(u.Conditions, id) {
		return false
	}
	u.Conditions = append(u.Conditions, id)
	return true
}

// Processed reports whether the condition already fired for u.
func (u *User) Processed(id int64) bool {
	return slices.Contains(u.ProcessedConditions, id)
}

// MarkProcessed records that a condition fired.
func (u *User) MarkProcessed(id int64) {
	if !u.Processed(id) {
		u.ProcessedConditions = append(u.ProcessedConditions, id)
	}
}

// CompletedToDo reports whether to-do id is completed.
func (u *User) CompletedToDo(id int64) bool {
	return slices.Contains(u.CompletedToDos, id)
}

// CompleteToDo marks to-do id as completed. It reports whether it changed.
func (u *User) CompleteToDo(id int64) bool {
	if u.CompletedToDo(id) {
		return false
	}
	u.CompletedToDos = append(u.CompletedToDos, id)
	return true
}

// Organization holds the company wide settings.
type Organization struct {
	Base
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	NewHireEmail bool   `json:"new_hire_email"`
}

// OrganizationID is the id of the singleton organization document.
const OrganizationID int64 = 1

// Location resolves the organization time zone, defaulting to UTC.
func (o *Organization) Location() *time.Location {
	if o == nil || o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	a, b = DateOf(a), DateOf(b)
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DaysBeforeStarting returns how many calendar days are left until start,
// zero once the start day is reached.
func DaysBeforeStarting(start, today time.Time) int {
	if n := DaysBetween(today, start); n > 0 {
		return n
	}
	return 0
}

// IsWeekday reports whether t falls Monday to Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Workday returns the 1-based number of the workday today is, counting from
// start. It returns 0 before the start day and on weekends.
func Workday(start, today time.Time) int {
	start, today = DateOf(start), DateOf(today)
	if today.Before(start) || !IsWeekday(today) {
		return 0
	}
	n := 0
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		if IsWeekday(d) {
			n++
		}
	}
	return n
}

// WorkdayDate returns the calendar date of workday n (1-based) counting from start.
// n <= 0 is workday 1, the first weekday on or after start.
func WorkdayDate(start time.Time, n int) time.Time {
	d := DateOf(start)
	n = max(n, 1)
	for !IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	for count := 1; count < n; {
		d = d.AddDate(0, 0, 1)
		if IsWeekday(d) {
			count++
		}
	}
	return d
}
