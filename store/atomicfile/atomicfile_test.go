package atomicfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prefs.json")

	require.NoError(t, WriteFile(path, []byte(`{"theme":"dark"}`), 0600))
	require.NoError(t, WriteFile(path, []byte(`{"theme":"light"}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"light"}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover %s", e.Name())
	}
}

func TestConcurrentWritersNeverTear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	payloads := [][]byte{
		bytes.Repeat([]byte("a"), 256<<10),
		bytes.Repeat([]byte("b"), 256<<10),
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(p []byte) {
			defer wg.Done()
			assert.NoError(t, WriteFile(path, p, 0644))
		}(payloads[i%2])
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, payloads[0]) || bytes.Equal(data, payloads[1]))
}

func TestWriteFileContextHonoursLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "held")
	held := flock.New(LockPath(path))
	require.NoError(t, held.Lock())
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, WriteFileContext(ctx, path, []byte("x"), 0600))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
