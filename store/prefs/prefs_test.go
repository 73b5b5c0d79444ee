package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	p, err := NewStore(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Save(Preferences{Theme: ThemeDark}))

	p, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, p.Theme)
}

func TestSaveRejectsUnknownTheme(t *testing.T) {
	dir := t.TempDir()
	err := NewStore(dir).Save(Preferences{Theme: "neon"})
	assert.ErrorIs(t, err, ErrInvalidTheme)
	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{"), 0600))
	_, err := NewStore(dir).Load()
	assert.Error(t, err)
}
