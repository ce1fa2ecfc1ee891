package sysprims

import "sync"

// groupRegistryT is the process-local map of GroupHandles we ourselves
// established, keyed by the spawned PID. It backs Tree Terminator step 1
// ("resolve whether pid belongs to a group we established") and the
// Group Manager's lifetime tracking. Its critical sections are O(1)
// (single map insert/lookup/delete) per spec.md §5.
type groupRegistryT struct {
	mu sync.Mutex
	m  map[uint32]*GroupHandle
}

var groupRegistry = &groupRegistryT{m: make(map[uint32]*GroupHandle)}

func (r *groupRegistryT) put(pid uint32, h *GroupHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[pid] = h
}

func (r *groupRegistryT) get(pid uint32) (*GroupHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.m[pid]
	return h, ok
}

func (r *groupRegistryT) remove(pid uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, pid)
}

// resetGroupRegistryForTesting clears the registry. Implementations are
// required to support a test-only reset (spec.md §9); it is
// intentionally unexported since the reset is not part of the public
// contract.
func resetGroupRegistryForTesting() {
	groupRegistry.mu.Lock()
	defer groupRegistry.mu.Unlock()
	groupRegistry.m = make(map[uint32]*GroupHandle)
}
