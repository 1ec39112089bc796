package loam_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/loam"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/repository"
	"github.com/aretw0/onboard/pkg/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestSource_Documents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"order-laptop.md": `---
kind: todo
tags: [it, hardware]
fields:
  due_on_day: 2
---
Pick a model from the catalogue.`,
		"handbook.md": `---
kind: Resource
name: Employee handbook
fields:
  category: Company
---
Read me.`,
	})

	src, err := loam.Open(dir)
	require.NoError(t, err)

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byName := map[string]templates.Document{}
	for _, d := range docs {
		byName[d.Values["name"].(string)] = d
	}

	laptop, ok := byName["Order laptop"]
	require.True(t, ok, "name falls back to the file name")
	assert.Equal(t, "todo", laptop.Slug)
	assert.Equal(t, "Pick a model from the catalogue.", laptop.Values["content"])
	assert.Equal(t, "2", fmt.Sprint(laptop.Values["due_on_day"]), "nested fields survive the listing")
	assert.Equal(t, []string{"it", "hardware"}, laptop.Values["tags"])

	handbook := byName["Employee handbook"]
	assert.Equal(t, "resource", handbook.Slug)
	assert.Equal(t, "Company", handbook.Values["category"])
}

func TestSource_ImportIntoLibrary(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lunch.md": `---
kind: appointment
name: Team lunch
fields:
  on_day: 1
  time: "12:30"
---
Meet at the lobby.`,
	})

	src, err := loam.Open(dir)
	require.NoError(t, err)

	repo := repository.New(memory.NewStore())
	report, err := templates.NewService(repo).Import(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, report.Created, 1)

	item, err := repo.Item(context.Background(), domain.KindAppointment, report.Created[0].ID)
	require.NoError(t, err)
	appt := item.(*domain.Appointment)
	assert.Equal(t, 1, appt.OnDay)
	assert.Equal(t, "12:30", appt.Time)
	assert.Equal(t, "Meet at the lobby.", appt.Content)
	assert.True(t, appt.Template)
}

func TestSource_MissingKind(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"orphan.md": `---
name: Orphan
---
No kind.`,
	})

	src, err := loam.Open(dir)
	require.NoError(t, err)

	_, err = src.Documents(context.Background())
	assert.ErrorContains(t, err, "missing kind")
}
