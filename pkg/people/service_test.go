package people_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/people"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/aretw0/onboard/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx      context.Context
	repo     *repository.Repository
	recorder *dispatch.Recorder
	now      time.Time
	svc      *people.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		repo:     repository.New(memory.NewStore()),
		recorder: &dispatch.Recorder{},
		// Monday 09:00
		now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	proc := trigger.NewProcessor(f.repo,
		trigger.WithDispatcher(f.recorder),
		trigger.WithClock(func() time.Time { return f.now }),
	)
	f.svc = people.NewService(f.repo, people.WithProcessor(proc), people.WithDispatcher(f.recorder))
	require.NoError(t, f.repo.SaveOrganization(f.ctx, &domain.Organization{Name: "Acme", Timezone: "UTC", NewHireEmail: true}))
	return f
}

func hireValues(startDay string) forms.Values {
	return forms.Values{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "Ada@Example.com",
		"start_day":  startDay,
	}
}

func TestAddNewHire(t *testing.T) {
	f := newFixture(t)
	seq := &domain.Sequence{Name: "Engineering"}
	require.NoError(t, f.repo.Sequences.Create(f.ctx, seq))
	todo := &domain.ToDo{Name: "Sign contract"}
	require.NoError(t, f.repo.CreateItem(f.ctx, todo))
	cond := &domain.Condition{SequenceID: seq.ID, Type: domain.ConditionUnconditioned}
	cond.AddItem(todo)
	require.NoError(t, f.repo.Conditions.Create(f.ctx, cond))

	values := hireValues("2026-03-09")
	values["role"] = "1"
	values["sequences"] = []any{seq.ID}
	u, err := f.svc.AddNewHire(f.ctx, values)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleNewHire, u.Role, "the role is forced")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, u.Items.Contains(domain.KindToDo, todo.ID))
	assert.Empty(t, f.recorder.OfType(domain.ActionSendCredentials), "not started yet")

	t.Run("Duplicate email", func(t *testing.T) {
		_, err := f.svc.AddNewHire(f.ctx, hireValues("2026-03-09"))
		verr, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.True(t, verr.Has("email"))
	})

	t.Run("Unknown sequence", func(t *testing.T) {
		values := hireValues("2026-03-09")
		values["email"] = "other@example.com"
		values["sequences"] = "42"
		_, err := f.svc.AddNewHire(f.ctx, values)
		verr, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.True(t, verr.Has("sequences"))
	})
}

func TestAddNewHire_Credentials(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		startDay string
		sent     bool
	}{
		{"Started, weekday morning", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), "2026-03-02", true},
		{"Before seven", time.Date(2026, 3, 2, 6, 59, 0, 0, time.UTC), "2026-03-02", false},
		{"Weekend", time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC), "2026-03-02", false},
		{"Not started", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), "2026-03-03", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.now = tt.now
			_, err := f.svc.AddNewHire(f.ctx, hireValues(tt.startDay))
			require.NoError(t, err)
			sent := f.recorder.OfType(domain.ActionSendCredentials)
			if tt.sent {
				require.Len(t, sent, 1)
				assert.Equal(t, "ada@example.com", sent[0].Payload.(domain.CredentialsPayload).Email)
			} else {
				assert.Empty(t, sent)
			}
		})
	}

	t.Run("Organization disabled new hire email", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.repo.SaveOrganization(f.ctx, &domain.Organization{Name: "Acme"}))
		_, err := f.svc.AddNewHire(f.ctx, hireValues("2026-03-02"))
		require.NoError(t, err)
		assert.Empty(t, f.recorder.Actions())
	})
}

func TestNewHires_LatestStartFirst(t *testing.T) {
	f := newFixture(t)
	for i, day := range []string{"2026-03-09", "2026-04-01", "2026-02-15"} {
		values := hireValues(day)
		values["email"] = []string{"a@example.com", "b@example.com", "c@example.com"}[i]
		_, err := f.svc.AddNewHire(f.ctx, values)
		require.NoError(t, err)
	}
	_, err := f.svc.CreateColleague(f.ctx, forms.Values{"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com"})
	require.NoError(t, err)

	hires, err := f.svc.NewHires(f.ctx)
	require.NoError(t, err)
	require.Len(t, hires, 3)
	assert.Equal(t, "2026-04-01", hires[0].StartDay)
	assert.Equal(t, "2026-03-09", hires[1].StartDay)
	assert.Equal(t, "2026-02-15", hires[2].StartDay)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	seq := &domain.Sequence{Name: "Engineering"}
	require.NoError(t, f.repo.Sequences.Create(f.ctx, seq))
	add := func(c *domain.Condition) *domain.Condition {
		c.SequenceID = seq.ID
		require.NoError(t, f.repo.Conditions.Create(f.ctx, c))
		return c
	}
	far := add(&domain.Condition{Type: domain.ConditionBeforeStart, Days: 10, Time: "09:00"})
	near := add(&domain.Condition{Type: domain.ConditionBeforeStart, Days: 3, Time: "09:00"})
	second := add(&domain.Condition{Type: domain.ConditionAfterStart, Days: 2, Time: "09:00"})
	add(&domain.Condition{Type: domain.ConditionToDo, ToDos: []int64{1}})

	// Starts Friday, five days from now.
	values := hireValues("2026-03-06")
	values["sequences"] = seq.ID
	u, err := f.svc.AddNewHire(f.ctx, values)
	require.NoError(t, err)

	tl, err := f.svc.Timeline(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tl.Before, 1, "conditions further away than the start are past")
	assert.Equal(t, near.ID, tl.Before[0].ID)
	assert.Equal(t, "2026-03-03", tl.Before[0].Date)
	require.Len(t, tl.After, 1)
	assert.Equal(t, second.ID, tl.After[0].ID)
	assert.Equal(t, "2026-03-09", tl.After[0].Date, "the second workday is the next Monday")
	assert.NotEqual(t, far.ID, tl.Before[0].ID)
}

func TestTimeline_WeekendStart(t *testing.T) {
	f := newFixture(t)
	seq := &domain.Sequence{Name: "Support"}
	require.NoError(t, f.repo.Sequences.Create(f.ctx, seq))
	first := &domain.Condition{SequenceID: seq.ID, Type: domain.ConditionAfterStart, Days: 0, Time: "09:00"}
	require.NoError(t, f.repo.Conditions.Create(f.ctx, first))

	// Starts on a Saturday.
	values := hireValues("2026-03-07")
	values["sequences"] = seq.ID
	u, err := f.svc.AddNewHire(f.ctx, values)
	require.NoError(t, err)

	tl, err := f.svc.Timeline(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tl.After, 1)
	assert.Equal(t, "2026-03-09", tl.After[0].Date, "day zero is dated on the first workday")
}

func TestToggleTemplate(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.AddNewHire(f.ctx, hireValues("2026-03-09"))
	require.NoError(t, err)
	badge := &domain.Badge{Name: "Welcome", Templated: domain.Templated{Template: true}}
	require.NoError(t, f.repo.CreateItem(f.ctx, badge))

	assigned, err := f.svc.ToggleTemplate(f.ctx, u.ID, "badge", badge.ID)
	require.NoError(t, err)
	assert.True(t, assigned)

	assigned, err = f.svc.ToggleTemplate(f.ctx, u.ID, "badge", badge.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	_, err = f.svc.ToggleTemplate(f.ctx, u.ID, "pendingadmintask", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	_, err = f.svc.ToggleTemplate(f.ctx, u.ID, "badge", 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.AddNewHire(f.ctx, hireValues("2026-03-09"))
	require.NoError(t, err)
	a := &domain.ToDo{Name: "Sign contract"}
	b := &domain.ToDo{Name: "Upload photo"}
	course := &domain.Resource{Name: "Security basics", Course: true}
	handbook := &domain.Resource{Name: "Handbook"}
	for _, item := range []domain.Item{a, b, course, handbook} {
		require.NoError(t, f.repo.CreateItem(f.ctx, item))
		_, err := f.svc.ToggleTemplate(f.ctx, u.ID, string(item.Kind()), item.EntityID())
		require.NoError(t, err)
	}

	_, err = f.svc.CompleteToDo(f.ctx, u.ID, a.ID)
	require.NoError(t, err)

	p, err := f.svc.Progress(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, p.ToDos, 2)
	assert.True(t, p.ToDos[0].Completed)
	assert.False(t, p.ToDos[1].Completed)
	assert.Equal(t, 1, p.Completed)
	require.Len(t, p.Courses, 1)
	assert.Equal(t, "Security basics", p.Courses[0].Title)
}

func TestColleagues(t *testing.T) {
	f := newFixture(t)
	zoe, err := f.svc.CreateColleague(f.ctx, forms.Values{"first_name": "Zoe", "last_name": "Z", "email": "zoe@example.com", "role": "2"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, zoe.Role)
	bob, err := f.svc.CreateColleague(f.ctx, forms.Values{"first_name": "Bob", "last_name": "B", "email": "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, bob.Role)

	list, err := f.svc.Colleagues(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].FirstName)

	t.Run("Update", func(t *testing.T) {
		updated, err := f.svc.UpdateColleague(f.ctx, bob.ID, forms.Values{"position": "Engineer", "manager_id": zoe.ID})
		require.NoError(t, err)
		assert.Equal(t, "Engineer", updated.Position)
		assert.Equal(t, zoe.ID, updated.ManagerID)

		_, err = f.svc.UpdateColleague(f.ctx, bob.ID, forms.Values{"manager_id": 404})
		verr, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.True(t, verr.Has("manager_id"))
	})

	t.Run("Role new hire is rejected", func(t *testing.T) {
		_, err := f.svc.CreateColleague(f.ctx, forms.Values{"first_name": "N", "last_name": "H", "email": "nh@example.com", "role": "0", "start_day": "2026-03-09"})
		verr, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.True(t, verr.Has("role"))
	})

	t.Run("Toggle resource", func(t *testing.T) {
		r := &domain.Resource{Name: "Handbook"}
		require.NoError(t, f.repo.CreateItem(f.ctx, r))
		assigned, err := f.svc.ToggleResource(f.ctx, bob.ID, r.ID)
		require.NoError(t, err)
		assert.True(t, assigned)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteColleague(f.ctx, zoe.ID))
		_, err := f.svc.Get(f.ctx, zoe.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, f.svc.DeleteColleague(f.ctx, zoe.ID), domain.ErrNotFound)
	})
}
