package repository_test

import (
	"context"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.NewStore())

	seq := &domain.Sequence{Name: "Engineering"}
	require.NoError(t, repo.Sequences.Create(ctx, seq))
	assert.Equal(t, int64(1), seq.ID)

	got, err := repo.Sequences.Get(ctx, seq.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", got.Name)

	got.Name = "Sales"
	require.NoError(t, repo.Sequences.Save(ctx, got))

	all, err := repo.Sequences.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Sales", all[0].Name)

	require.NoError(t, repo.Sequences.Delete(ctx, seq.ID))
	_, err = repo.Sequences.Get(ctx, seq.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_SaveRequiresID(t *testing.T) {
	repo := repository.New(memory.NewStore())
	err := repo.Sequences.Save(context.Background(), &domain.Sequence{Name: "x"})
	assert.Error(t, err)
}

func TestRepository_Items(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.NewStore())

	b := &domain.ToDo{Name: "B task", Templated: domain.Templated{Template: true}}
	a := &domain.ToDo{Name: "A task", Templated: domain.Templated{Template: true}}
	custom := &domain.ToDo{Name: "Custom"}
	for _, item := range []domain.Item{b, a, custom} {
		require.NoError(t, repo.CreateItem(ctx, item))
	}

	item, err := repo.Item(ctx, domain.KindToDo, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A task", item.Title())
	assert.True(t, item.IsTemplate())

	templates, err := repo.Templates(ctx, domain.KindToDo)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "A task", templates[0].Title())
	assert.Equal(t, "B task", templates[1].Title())

	_, err = repo.Item(ctx, "unknown", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestRepository_ResolveItemsSkipsDangling(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.NewStore())

	todo := &domain.ToDo{Name: "Laptop"}
	res := &domain.Resource{Name: "Handbook"}
	require.NoError(t, repo.CreateItem(ctx, todo))
	require.NoError(t, repo.CreateItem(ctx, res))

	var set domain.ItemSet
	set.Add(domain.KindToDo, todo.ID)
	set.Add(domain.KindToDo, 99)
	set.Add(domain.KindResource, res.ID)

	resolved, err := repo.ResolveItems(ctx, set)
	require.NoError(t, err)
	assert.Len(t, resolved[domain.KindToDo], 1)
	assert.Len(t, resolved[domain.KindResource], 1)
}

func TestRepository_ConditionsOfInTimelineOrder(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.NewStore())

	conditions := []*domain.Condition{
		{SequenceID: 1, Type: domain.ConditionAfterStart, Days: 5, Time: "08:00"},
		{SequenceID: 1, Type: domain.ConditionUnconditioned},
		{SequenceID: 2, Type: domain.ConditionUnconditioned},
		{SequenceID: 1, Type: domain.ConditionBeforeStart, Days: 2, Time: "08:00"},
		{SequenceID: 1, Type: domain.ConditionAfterStart, Days: 1, Time: "08:00"},
	}
	for _, c := range conditions {
		require.NoError(t, repo.Conditions.Create(ctx, c))
	}

	got, err := repo.ConditionsOf(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, domain.ConditionUnconditioned, got[0].Type)
	assert.Equal(t, domain.ConditionBeforeStart, got[1].Type)
	assert.Equal(t, 1, got[2].Days)
	assert.Equal(t, 5, got[3].Days)
}

func TestRepository_OrganizationDefaults(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(memory.NewStore())

	org, err := repo.Organization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UTC", org.Timezone)

	org.Name = "Acme"
	org.NewHireEmail = true
	require.NoError(t, repo.SaveOrganization(ctx, org))

	org, err = repo.Organization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	assert.True(t, org.NewHireEmail)
}
