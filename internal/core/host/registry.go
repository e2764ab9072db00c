package host

import (
	"fmt"
	"sync"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

// Handle is the opaque numeric token callers use to address a loaded
// plugin. Handles are assigned monotonically starting at 1 and are
// never reused, even after the plugin they named is unloaded.
type Handle uint64

// ErrInvalidHandle is returned by every command that references a
// handle that was never assigned or whose record has been removed.
var ErrInvalidHandle = fmt.Errorf("invalid plugin handle")

// pluginRecord is the unit of ownership: one loaded library plus the
// one instance created from it. The registry is the sole owner; no
// reference may escape past removal.
type pluginRecord struct {
	handle     Handle
	sourcePath string
	library    ports.NativeLibrary
	plugin     ports.NativePlugin
	state      LifecycleState
}

// Registry is the process-wide table of live plugin records. It is an
// explicit object rather than a package global so isolated instances
// can run side by side in tests. One coarse mutex serializes every
// lifecycle mutation; the real-time audio path never takes it.
type Registry struct {
	mu         sync.Mutex
	nextHandle Handle
	records    map[Handle]*pluginRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nextHandle: 1,
		records:    make(map[Handle]*pluginRecord),
	}
}

// register inserts rec and assigns it the next monotonic handle.
func (r *Registry) register(rec *pluginRecord) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.nextHandle
	r.nextHandle++
	rec.handle = h
	r.records[h] = rec
	return h
}

// remove atomically detaches the record for h and transfers ownership
// to the caller, which becomes responsible for teardown. After remove
// returns, no other caller can observe h as valid.
func (r *Registry) remove(h Handle) (*pluginRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	delete(r.records, h)
	return rec, nil
}

// withRecord runs fn on the live record for h while holding the
// registry lock. fn must stay short and perform at most one native
// call; it must not retain the record past its return.
func (r *Registry) withRecord(h Handle, fn func(*pluginRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[h]
	if !ok {
		return ErrInvalidHandle
	}
	return fn(rec)
}

// Count returns the number of live records.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// handles returns the live handles in unspecified order.
func (r *Registry) handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	hs := make([]Handle, 0, len(r.records))
	for h := range r.records {
		hs = append(hs, h)
	}
	return hs
}
