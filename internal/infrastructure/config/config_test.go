package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Values(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 48000.0, cfg.SampleRate)
	assert.Equal(t, uint32(32), cfg.MinFrames)
	assert.Equal(t, uint32(4096), cfg.MaxFrames)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.PluginDirs, "default search paths must exist")
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))

	require.NoError(t, err, "a missing config file is not an error")
	assert.Equal(t, Default().SampleRate, cfg.SampleRate)
}

func TestLoad_PartialFile_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sample_rate": 96000}`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 96000.0, cfg.SampleRate)
	assert.Equal(t, uint32(32), cfg.MinFrames, "unset fields fall back to defaults")
	assert.NotEmpty(t, cfg.PluginDirs)
}

func TestLoad_MalformedFile_Fails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLAPHOST_PLUGIN_DIR", "/opt/plugins")
	t.Setenv("CLAPHOST_SAMPLE_RATE", "44100")
	t.Setenv("CLAPHOST_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))

	require.NoError(t, err)
	assert.Equal(t, "/opt/plugins", cfg.PluginDirs[0], "env dir is searched first")
	assert.Equal(t, 44100.0, cfg.SampleRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_BadSampleRateEnv_Fails(t *testing.T) {
	t.Setenv("CLAPHOST_SAMPLE_RATE", "fast")

	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestApplyDefaults_ClampsFrameRange(t *testing.T) {
	cfg := &Config{MinFrames: 512, MaxFrames: 64}
	cfg.applyDefaults()

	assert.GreaterOrEqual(t, cfg.MaxFrames, cfg.MinFrames,
		"an inverted frame range must be corrected")
}
