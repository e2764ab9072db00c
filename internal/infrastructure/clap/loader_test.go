//go:build linux || darwin

package clap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

func TestOpen_MissingFile(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.Open(filepath.Join(t.TempDir(), "missing.clap"))

	require.Error(t, err)
	kind, ok := ports.LoadErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, ports.LoadErrorFileNotFound, kind)
}

func TestOpen_DirectoryPath(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.Open(t.TempDir())

	require.Error(t, err)
	kind, ok := ports.LoadErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, ports.LoadErrorFileNotFound, kind)
}

func TestOpen_NotALibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.clap")
	require.NoError(t, os.WriteFile(path, []byte("not a shared object"), 0o644))

	loader := NewLoader(nil)
	_, err := loader.Open(path)

	require.Error(t, err)
	kind, ok := ports.LoadErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, ports.LoadErrorFileNotFound, kind,
		"a file the linker rejects reads as cannot-open")
}

// TestOpen_RealPlugin drives a real CLAP binary end to end. It only
// runs when CLAPHOST_TEST_PLUGIN points at one, since plugin binaries
// cannot be checked in.
func TestOpen_RealPlugin(t *testing.T) {
	path := os.Getenv("CLAPHOST_TEST_PLUGIN")
	if path == "" {
		t.Skip("set CLAPHOST_TEST_PLUGIN to a .clap binary to run this test")
	}

	loader := NewLoader(nil)
	lib, err := loader.Open(path)
	require.NoError(t, err)
	defer lib.Close()

	descriptors := lib.Factory().Descriptors()
	require.NotEmpty(t, descriptors, "a valid plugin publishes at least one descriptor")
	assert.NotEmpty(t, descriptors[0].ID)

	plugin, err := lib.Factory().Create("")
	require.NoError(t, err)

	require.True(t, plugin.Init(), "init must succeed on a healthy plugin")
	t.Logf("plugin %s exposes %d parameters", plugin.Descriptor().ID, plugin.ParamCount())

	require.True(t, plugin.Activate(48000, 32, 4096))
	require.True(t, plugin.StartProcessing())
	plugin.StopProcessing()
	plugin.Deactivate()
	plugin.Destroy()
}
