package events

import (
	"sync"
	"sync/atomic"

	"emperror.dev/errors"

	"github.com/reyoung/mcphost/process"
)

const DefaultBuffer = 256

// ErrDropped is returned by Emit when at least one watcher was too slow to
// take the event.
const ErrDropped = errors.Sentinel("event dropped")

// Broadcaster fans process events out to watchers. Emit never blocks: a watcher
// whose buffer is full misses the event.
type Broadcaster struct {
	lock     sync.RWMutex
	watchers map[*Watcher]struct{}
	buffer   int
	closed   bool

	dropped atomic.Uint64
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broadcaster{
		watchers: map[*Watcher]struct{}{},
		buffer:   buffer,
	}
}

// Watcher receives the events of the servers it was created for, or of every
// server when created without ids.
type Watcher struct {
	b      *Broadcaster
	ids    map[string]struct{}
	events chan process.Event
	closed bool
}

// Watch registers a new watcher. On a closed broadcaster the watcher's channel
// is already closed.
func (b *Broadcaster) Watch(ids ...string) *Watcher {
	w := &Watcher{
		b:      b,
		ids:    map[string]struct{}{},
		events: make(chan process.Event, b.buffer),
	}
	for _, id := range ids {
		w.ids[id] = struct{}{}
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		w.closed = true
		close(w.events)
		return w
	}
	b.watchers[w] = struct{}{}
	return w
}

func (w *Watcher) Events() <-chan process.Event {
	return w.events
}

func (w *Watcher) wants(e process.Event) bool {
	if len(w.ids) == 0 {
		return true
	}
	_, ok := w.ids[e.ServerID]
	return ok
}

// Close unregisters the watcher and closes its channel.
func (w *Watcher) Close() {
	w.b.lock.Lock()
	defer w.b.lock.Unlock()
	w.closeLocked()
}

func (w *Watcher) closeLocked() {
	if w.closed {
		return
	}
	w.closed = true
	delete(w.b.watchers, w)
	close(w.events)
}

// Emit implements process.Emitter.
func (b *Broadcaster) Emit(e process.Event) error {
	b.lock.RLock()
	defer b.lock.RUnlock()

	var dropped int
	for w := range b.watchers {
		if !w.wants(e) {
			continue
		}
		select {
		case w.events <- e:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.dropped.Add(uint64(dropped))
		return errors.WithDetails(errors.WithStack(ErrDropped),
			"server", e.ServerID, "kind", string(e.Kind), "watchers", dropped)
	}
	return nil
}

// Dropped is the number of deliveries skipped because a watcher was full.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every watcher; later watchers are born closed.
func (b *Broadcaster) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	for w := range b.watchers {
		w.closeLocked()
	}
}
