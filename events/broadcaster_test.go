package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyoung/mcphost/process"
)

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster(8)

	all := b.Watch()
	fs := b.Watch("fs")
	git := b.Watch("git")

	e1 := process.Event{Kind: process.EventStdout, ServerID: "fs", Data: "one"}
	e2 := process.Event{Kind: process.EventStderr, ServerID: "git", Data: "two"}

	wg := &sync.WaitGroup{}
	wg.Add(3)
	go func() {
		defer wg.Done()
		assert.Equal(t, e1, <-all.Events())
		assert.Equal(t, e2, <-all.Events())
	}()
	go func() {
		defer wg.Done()
		assert.Equal(t, e1, <-fs.Events())
	}()
	go func() {
		defer wg.Done()
		assert.Equal(t, e2, <-git.Events())
	}()

	require.NoError(t, b.Emit(e1))
	require.NoError(t, b.Emit(e2))
	wg.Wait()

	all.Close()
	_, ok := <-all.Events()
	assert.False(t, ok)
	all.Close()

	require.NoError(t, b.Emit(e1))
	assert.Equal(t, e1, <-fs.Events())
	assert.Empty(t, git.Events())
}

func TestBroadcasterDropsForSlowWatcher(t *testing.T) {
	b := NewBroadcaster(1)
	slow := b.Watch()
	defer slow.Close()

	e := process.Event{Kind: process.EventStdout, ServerID: "fs", Data: "x"}
	require.NoError(t, b.Emit(e))
	err := b.Emit(e)
	assert.ErrorIs(t, err, ErrDropped)
	assert.EqualValues(t, 1, b.Dropped())
	assert.Len(t, slow.Events(), 1)
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster(0)
	w := b.Watch()
	b.Close()

	_, ok := <-w.Events()
	assert.False(t, ok)
	w.Close()

	late := b.Watch("fs")
	_, ok = <-late.Events()
	assert.False(t, ok)
	assert.NoError(t, b.Emit(process.Event{ServerID: "fs"}))
}
