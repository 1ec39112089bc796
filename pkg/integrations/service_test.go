package integrations_test

import (
	"context"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/aretw0/onboard/pkg/integrations"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	builtins, err := integrations.Builtins()
	require.NoError(t, err)
	require.Len(t, builtins, 3)
	for _, b := range builtins {
		i := &domain.Integration{Name: b.Name, ProvisionName: b.ProvisionName, ProvisionFields: b.ProvisionFields}
		assert.NoError(t, i.Validate(), b.Name)
		assert.True(t, i.CanProvision())
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := integrations.NewService(repository.New(memory.NewStore()))

	added, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, added, "seeding twice adds nothing")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Asana", list[0].Name)

	asana := list[0]
	_, err = asana.CleanProvisionData(map[string]any{"team": "Eng", "role": "admin"})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, verr.Has("role"))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := integrations.NewService(repository.New(memory.NewStore()))

	created, err := svc.Create(ctx, forms.Values{
		"name":           " GitHub ",
		"provision_name": "github",
		"provision_fields": []map[string]any{
			{"id": "username", "name": "Username", "required": "on"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", created.Name)
	require.Len(t, created.ProvisionFields, 1)
	assert.True(t, created.ProvisionFields[0].Required)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Create(ctx, forms.Values{
		"name": "Broken",
		"provision_fields": []map[string]any{
			{"id": "a"}, {"id": "a"},
		},
	})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, verr.Has("provision_fields.1"))
}
