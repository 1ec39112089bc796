package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/onboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\nstore:\n  driver: memory\n"), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "onboard version "+strings.TrimSpace(onboard.Version)+"\n", out)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order-laptop.md"), []byte("---\nkind: todo\n---\nPick a model."), 0644))

	out, err := run(t, "import", dir, "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "Order laptop")
}

func TestTickCommand(t *testing.T) {
	out, err := run(t, "tick", "--config", writeConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "checked 0 new hires, fired 0 conditions\n", out)
}

func TestTimelineCommand_Errors(t *testing.T) {
	_, err := run(t, "timeline", "abc", "--config", writeConfig(t))
	assert.ErrorContains(t, err, "invalid id")

	_, err = run(t, "timeline", "1", "--config", writeConfig(t))
	assert.Error(t, err, "a fresh memory store has no sequences")
}
