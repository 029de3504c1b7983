package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-thumbnails/internal/models"
)

func TestSettingsDefaultWhenFileMissing(t *testing.T) {
	s := NewSettingsService(filepath.Join(t.TempDir(), "state.json"))
	assert.False(t, s.Get().PauseSubmissions)
}

func TestSettingsPersistAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewSettingsService(path)
	require.NoError(t, s.Update(models.Settings{PauseSubmissions: true}))

	reopened := NewSettingsService(path)
	assert.True(t, reopened.Get().PauseSubmissions)
}

func TestSettingsCorruptFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewSettingsService(path)
	assert.False(t, s.Get().PauseSubmissions)
}
