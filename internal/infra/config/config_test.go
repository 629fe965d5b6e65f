package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: /tmp/recordings
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/recordings", cfg.Storage.Path)
	assert.Equal(t, ".wav", cfg.Recorder.FileExtension)
	assert.Equal(t, "recording", cfg.Recorder.NamePrefix)
	assert.Equal(t, "2006-01-02 15:04:05", cfg.Recorder.NameFormat)
	assert.Equal(t, "recorder-state.yaml", cfg.Storage.StateFile)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Recorder.Channels)
	assert.Equal(t, 0, cfg.Recorder.MaxDurationMs)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
recorder:
  channels: 2
  sampling_rate: 48000
  max_duration_ms: 60000
  name_prefix: memo
storage:
  path: /data/recordings
  fallback_path: /sdcard/recordings
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Recorder.Channels)
	assert.Equal(t, 48000, cfg.Recorder.SamplingRate)
	assert.Equal(t, 60000, cfg.Recorder.MaxDurationMs)
	assert.Equal(t, "memo", cfg.Recorder.NamePrefix)
	assert.Equal(t, "/sdcard/recordings", cfg.Storage.FallbackPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing storage path",
			content: "recorder:\n  channels: 1\n",
		},
		{
			name:    "too many channels",
			content: "recorder:\n  channels: 99\nstorage:\n  path: /tmp/recordings\n",
		},
		{
			name:    "sampling rate below range",
			content: "recorder:\n  sampling_rate: 4000\nstorage:\n  path: /tmp/recordings\n",
		},
		{
			name:    "negative max duration",
			content: "recorder:\n  max_duration_ms: -1\nstorage:\n  path: /tmp/recordings\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RECORDER_STORAGE_PATH", "/override/recordings")
	t.Setenv("RECORDER_STATE_FILE", "/override/state.yaml")

	path := writeConfig(t, `
storage:
  path: /tmp/recordings
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/override/recordings", cfg.Storage.Path)
	assert.Equal(t, "/override/state.yaml", cfg.Storage.StateFile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "storage: [not\n")

	_, err := Load(path)
	assert.Error(t, err)
}
