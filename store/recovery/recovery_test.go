package recovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyoung/mcphost/store/atomicfile"
)

func TestValidateFilename(t *testing.T) {
	for _, ok := range []string{"draft", "draft-1", "my_file.bak", strings.Repeat("a", 100)} {
		assert.NoError(t, ValidateFilename(ok), ok)
	}
	for _, bad := range []string{"", "../etc/passwd", "a b", "a.b.c", "x.", strings.Repeat("a", 101), "semi;colon"} {
		assert.ErrorIs(t, ValidateFilename(bad), ErrInvalidFilename, bad)
	}
}

func TestSaveLoad(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc := map[string]interface{}{"title": "unsaved", "lines": []string{"a", "b"}}
	require.NoError(t, s.Save("editor-state", doc))

	raw, err := s.Load("editor-state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"unsaved","lines":["a","b"]}`, string(raw))

	_, err = os.Stat(filepath.Join(s.Dir(), "editor-state.json"))
	assert.NoError(t, err)
}

func TestLoadMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Load("nothing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load("../nothing")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestSaveTooLarge(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	err = s.Save("big", strings.Repeat("x", MaxDataSize))
	assert.ErrorIs(t, err, ErrTooLarge)
	_, err = s.Load("big")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanup(t *testing.T) {
	s, err := NewStore(t.TempDir(), WithRetention(24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.Save("old", 1))
	require.NoError(t, s.Save("fresh", 2))
	keep := filepath.Join(s.Dir(), "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0600))

	now := time.Now()
	stale := now.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), "old.json"), stale, stale))
	require.NoError(t, os.Chtimes(keep, stale, stale))

	removed, err := s.Cleanup(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Load("old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(atomicfile.LockPath(filepath.Join(s.Dir(), "old.json")))
	assert.True(t, os.IsNotExist(err), "lock file of a swept snapshot is kept")
	_, err = s.Load("fresh")
	assert.NoError(t, err)
	_, err = os.Stat(atomicfile.LockPath(filepath.Join(s.Dir(), "fresh.json")))
	assert.NoError(t, err)
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}
