package sequence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/aretw0/onboard/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx  context.Context
	repo *repository.Repository
	svc  *sequence.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repository.New(memory.NewStore())
	return &fixture{
		ctx:  context.Background(),
		repo: repo,
		svc:  sequence.NewService(repo, sequence.WithMetrics(observability.NewMetrics())),
	}
}

func (f *fixture) sequence(t *testing.T) (*domain.Sequence, *domain.Condition) {
	t.Helper()
	seq, err := f.svc.Create(f.ctx)
	require.NoError(t, err)
	conditions, err := f.repo.ConditionsOf(f.ctx, seq.ID)
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	return seq, conditions[0]
}

func (f *fixture) template(t *testing.T, item domain.Item) domain.Item {
	t.Helper()
	item.SetTemplate(true)
	require.NoError(t, f.repo.CreateItem(f.ctx, item))
	return item
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := domain.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.True(t, verr.Has(field), "expected error on %q, got %v", field, verr.Fields)
}

func TestCreate_AddsUnconditionedCondition(t *testing.T) {
	f := newFixture(t)
	seq, cond := f.sequence(t)

	assert.Equal(t, domain.DefaultSequenceName, seq.Name)
	assert.Equal(t, domain.ConditionUnconditioned, cond.Type)
	assert.Equal(t, seq.ID, cond.SequenceID)
}

// failingStore refuses to save documents of one kind.
type failingStore struct {
	ports.DocumentStore
	kind domain.Kind
}

func (s *failingStore) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	if kind == s.kind {
		return errors.New("disk full")
	}
	return s.DocumentStore.Save(ctx, kind, id, data)
}

func TestCreate_RollsBackWithoutCondition(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(&failingStore{DocumentStore: memory.NewStore(), kind: domain.KindCondition})
	svc := sequence.NewService(repo)

	_, err := svc.Create(ctx)
	require.Error(t, err)

	seqs, err := repo.Sequences.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, seqs, "no sequence is left without its unconditioned condition")
}

func TestList_OrderedByName(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Sales", "Engineering", "Marketing"} {
		seq, _ := f.sequence(t)
		_, err := f.svc.Rename(f.ctx, seq.ID, forms.Values{"name": name})
		require.NoError(t, err)
	}

	seqs, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, seqs, 3)
	assert.Equal(t, "Engineering", seqs[0].Name)
	assert.Equal(t, "Marketing", seqs[1].Name)
	assert.Equal(t, "Sales", seqs[2].Name)
}

func TestRename(t *testing.T) {
	f := newFixture(t)
	seq, _ := f.sequence(t)

	_, err := f.svc.Rename(f.ctx, seq.ID, forms.Values{"name": "  "})
	requireFieldError(t, err, "name")

	_, err = f.svc.Rename(f.ctx, 404, forms.Values{"name": "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCondition_Validation(t *testing.T) {
	f := newFixture(t)
	seq, _ := f.sequence(t)
	todo := f.template(t, &domain.ToDo{Name: "Sign contract"})
	custom := &domain.ToDo{Name: "Not a template"}
	require.NoError(t, f.repo.CreateItem(f.ctx, custom))

	tests := []struct {
		name   string
		values forms.Values
		field  string
	}{
		{"unconditioned is reserved", forms.Values{"condition_type": "3"}, "condition_type"},
		{"after start needs time", forms.Values{"condition_type": "0", "days": "1"}, "time"},
		{"before start needs a day", forms.Values{"condition_type": "2", "days": "0", "time": "08:00"}, "days"},
		{"malformed time", forms.Values{"condition_type": "0", "days": "1", "time": "8am"}, "time"},
		{"todo needs triggers", forms.Values{"condition_type": "1"}, "condition_to_dos"},
		{"todo trigger must exist", forms.Values{"condition_type": "1", "condition_to_dos": "999"}, "condition_to_dos"},
		{"todo trigger must be template", forms.Values{"condition_type": "1", "condition_to_dos": []string{"1", "2"}}, "condition_to_dos"},
		{"unknown type", forms.Values{"condition_type": "7"}, "condition_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateCondition(f.ctx, seq.ID, tt.values)
			requireFieldError(t, err, tt.field)
		})
	}

	c, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{
		"condition_type":   "1",
		"condition_to_dos": []string{"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{todo.EntityID()}, c.ToDos)

	_, err = f.svc.CreateCondition(f.ctx, 404, forms.Values{"condition_type": "0", "days": "1", "time": "08:00"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateCondition(t *testing.T) {
	f := newFixture(t)
	seq, unconditioned := f.sequence(t)

	c, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "0", "days": "3", "time": "09:00"})
	require.NoError(t, err)

	t.Run("changes trigger", func(t *testing.T) {
		updated, err := f.svc.UpdateCondition(f.ctx, seq.ID, c.ID, forms.Values{"condition_type": "2", "days": "5", "time": "10:00"})
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionBeforeStart, updated.Type)
		assert.Equal(t, 5, updated.Days)
	})

	t.Run("cannot become unconditioned", func(t *testing.T) {
		_, err := f.svc.UpdateCondition(f.ctx, seq.ID, c.ID, forms.Values{"condition_type": "3"})
		requireFieldError(t, err, "condition_type")
	})

	t.Run("unconditioned keeps its type", func(t *testing.T) {
		_, err := f.svc.UpdateCondition(f.ctx, seq.ID, unconditioned.ID, forms.Values{"condition_type": "0", "days": "1", "time": "08:00"})
		requireFieldError(t, err, "condition_type")
	})

	t.Run("other sequence", func(t *testing.T) {
		other, _ := f.sequence(t)
		_, err := f.svc.UpdateCondition(f.ctx, other.ID, c.ID, forms.Values{"condition_type": "0", "days": "1", "time": "08:00"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateConditionToDos(t *testing.T) {
	f := newFixture(t)
	seq, unconditioned := f.sequence(t)
	a := f.template(t, &domain.ToDo{Name: "A"})
	b := f.template(t, &domain.ToDo{Name: "B"})

	c, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "1", "condition_to_dos": "1"})
	require.NoError(t, err)

	view, err := f.svc.UpdateConditionToDos(f.ctx, c.ID, forms.Values{"condition_to_dos": []string{"2"}})
	require.NoError(t, err)
	require.Len(t, view.Triggers, 1)
	assert.Equal(t, b.EntityID(), view.Triggers[0].ID)
	assert.NotEqual(t, a.EntityID(), view.Triggers[0].ID)

	_, err = f.svc.UpdateConditionToDos(f.ctx, unconditioned.ID, forms.Values{"condition_to_dos": "1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteCondition(t *testing.T) {
	f := newFixture(t)
	seq, unconditioned := f.sequence(t)
	other, _ := f.sequence(t)

	c, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "0", "days": "1", "time": "08:00"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteCondition(f.ctx, seq.ID, unconditioned.ID), domain.ErrProtectedCondition)
	assert.ErrorIs(t, f.svc.DeleteCondition(f.ctx, other.ID, c.ID), domain.ErrNotFound)

	require.NoError(t, f.svc.DeleteCondition(f.ctx, seq.ID, c.ID))
	_, err = f.repo.Conditions.Get(f.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_KeepsItems(t *testing.T) {
	f := newFixture(t)
	seq, cond := f.sequence(t)
	todo := f.template(t, &domain.ToDo{Name: "Laptop"})

	_, err := f.svc.AddTemplate(f.ctx, cond.ID, "todo", todo.EntityID())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, seq.ID))

	_, err = f.svc.Get(f.ctx, seq.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	conditions, err := f.repo.ConditionsOf(f.ctx, seq.ID)
	require.NoError(t, err)
	assert.Empty(t, conditions)

	_, err = f.repo.Item(f.ctx, domain.KindToDo, todo.EntityID())
	assert.NoError(t, err)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	seq, unconditioned := f.sequence(t)
	todo := f.template(t, &domain.ToDo{Name: "Laptop"})

	after, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "0", "days": "2", "time": "08:00"})
	require.NoError(t, err)
	before, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "2", "days": "3", "time": "08:00"})
	require.NoError(t, err)
	onTodo, err := f.svc.CreateCondition(f.ctx, seq.ID, forms.Values{"condition_type": "1", "condition_to_dos": "1"})
	require.NoError(t, err)

	_, err = f.svc.AddTemplate(f.ctx, unconditioned.ID, "todo", todo.EntityID())
	require.NoError(t, err)
	_, err = f.svc.SaveItem(f.ctx, "pendingemailmessage", 0, after.ID, forms.Values{
		"name": "Welcome", "subject": "Hi", "content": "Welcome!", "person_type": "0",
	})
	require.NoError(t, err)

	tl, err := f.svc.Timeline(f.ctx, seq.ID)
	require.NoError(t, err)
	require.Len(t, tl.Conditions, 4)

	ids := []int64{tl.Conditions[0].ID, tl.Conditions[1].ID, tl.Conditions[2].ID, tl.Conditions[3].ID}
	assert.Equal(t, []int64{unconditioned.ID, before.ID, after.ID, onTodo.ID}, ids)

	assert.Len(t, tl.Conditions[0].Items[domain.KindToDo], 1)
	assert.Len(t, tl.Conditions[2].ExternalNewHire, 1)
	assert.Empty(t, tl.Conditions[2].ExternalAdmin)
	assert.Equal(t, "pendingemailmessage", tl.Conditions[2].ExternalNewHire[0].Slug)
	require.Len(t, tl.Conditions[3].Triggers, 1)
	assert.Equal(t, "Laptop", tl.Conditions[3].Triggers[0].Title)
	require.Len(t, tl.ToDos, 1)
}
