package process

import (
	"sort"
	"sync"

	"emperror.dev/errors"
)

// registry maps server names to live handles. A single mutex guards the whole
// map; it holds a handful of entries and is never on a hot path.
type registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
	closed  bool

	// waiters counts inserted handles whose waiter has not finished. Add
	// happens under mu, so it is ordered before any Wait that follows close.
	waiters sync.WaitGroup
}

func newRegistry() *registry {
	return &registry{handles: map[string]*Handle{}}
}

// insert registers h under its name. An entry whose process already exited is
// replaced. A running entry is replaced only when replace is set, and is then
// returned so the caller can terminate it.
func (r *registry) insert(h *Handle, replace bool) (prev *Handle, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, newKindError(ErrClosed, errors.NewPlain("registry closed"), "server", h.Name)
	}
	prev = r.handles[h.Name]
	if prev != nil && prev.Running() && !replace {
		return nil, newKindError(ErrAlreadyRunning, errors.NewPlain(h.Name),
			"server", h.Name, "pid", prev.PID)
	}
	r.handles[h.Name] = h
	r.waiters.Add(1)
	return prev, nil
}

func (r *registry) lookup(name string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles[name]
}

func (r *registry) contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[name]
	return ok
}

func (r *registry) remove(name string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[name]
	if !ok {
		return nil
	}
	delete(r.handles, name)
	return h
}

// snapshot returns the registered handles ordered by name.
func (r *registry) snapshot() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		res = append(res, h)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// close empties the registry, rejects any further insert, and returns what was
// registered.
func (r *registry) close() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	res := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		res = append(res, h)
	}
	r.handles = map[string]*Handle{}
	return res
}

func (r *registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
