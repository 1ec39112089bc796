package onboard_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Organization.NewHireEmail = true

	app, err := onboard.New(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Bootstrap(ctx))
	require.NoError(t, app.Bootstrap(ctx), "bootstrapping twice is harmless")

	org, err := app.Repo.Organization(ctx)
	require.NoError(t, err)
	assert.True(t, org.NewHireEmail)

	list, err := app.Integrations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.NotNil(t, app.Metrics)
}

func TestNew_RedisWithEncryptionAndOutbox(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	cfg.Dispatch.Driver = "redis"

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	app, err := onboard.New(ctx, cfg, onboard.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Bootstrap(ctx))

	u, err := app.People.CreateColleague(ctx, forms.Values{"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com"})
	require.NoError(t, err)

	raw, err := mr.Get("onboard:doc:user:" + strconv.FormatInt(u.ID, 10))
	require.NoError(t, err)
	assert.NotContains(t, raw, "grace@example.com", "users are encrypted at rest")
	assert.Contains(t, raw, "__encrypted__")

	got, err := app.People.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", got.Email)

	_, err = app.AdminTasks.Create(ctx, forms.Values{"name": "x", "new_hire": u.ID, "assigned_to": u.ID})
	_, isValidation := domain.AsValidation(err)
	assert.True(t, isValidation)

	seq, err := app.Sequences.Create(ctx)
	require.NoError(t, err)
	_, err = app.People.AddNewHire(ctx, forms.Values{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"start_day": "2026-03-02", "sequences": seq.ID,
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("onboard:actions"), "new hire email is off by default")
}

func TestNew_BadEncryptionKey(t *testing.T) {
	cfg := config.Default()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err := onboard.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "32 bytes")
}

func TestImportTemplates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "laptop.md"), []byte("---\nkind: todo\nname: Set up laptop\n---\nInstall the tools.\n"), 0o644))

	cfg := config.Default()
	cfg.Templates.Dir = dir
	app, err := onboard.New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, app.Bootstrap(ctx))

	todos, err := app.Templates.List(ctx, "todo")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "Set up laptop", todos[0].Title())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, onboard.Version)
}
