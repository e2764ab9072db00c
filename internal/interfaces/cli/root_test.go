package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

func newTestContainer(t *testing.T) *di.Container {
	t.Helper()
	container, err := di.NewContainer(di.Options{
		ConfigPath: filepath.Join(t.TempDir(), "none.json"),
	})
	require.NoError(t, err)
	return container
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCommand(newTestContainer(t))

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, expected := range []string{"plugins", "inspect", "run", "dashboard"} {
		assert.True(t, names[expected], "missing subcommand %q", expected)
	}
}

func TestPluginsCommand_EmptyDirectories(t *testing.T) {
	container := newTestContainer(t)
	container.Config.PluginDirs = []string{t.TempDir()}

	root := NewRootCommand(container)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"plugins"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "No plugin libraries found")
}

func TestInspectCommand_MissingLibrary(t *testing.T) {
	container := newTestContainer(t)

	root := NewRootCommand(container)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"inspect", filepath.Join(t.TempDir(), "missing.clap")})

	err := root.ExecuteContext(context.Background())
	assert.Error(t, err, "inspecting a missing library must fail")
}

func TestRunCommand_RequiresLibraryArgument(t *testing.T) {
	root := NewRootCommand(newTestContainer(t))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run"})

	assert.Error(t, root.ExecuteContext(context.Background()))
}
