package app

import "sync"

// Binding ties a connection to a player seat in a room
type Binding struct {
	RoomCode string
	PlayerID string
}

// Registry maps connection handles to bindings. A player is bound to at most
// one handle at a time; binding a new handle supersedes the old one.
type Registry struct {
	mu       sync.RWMutex
	byHandle map[string]Binding
	byPlayer map[Binding]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byHandle: make(map[string]Binding),
		byPlayer: make(map[Binding]string),
	}
}

// Bind binds handle to b and returns the handle that previously held b, if any.
func (r *Registry) Bind(handle string, b Binding) (previous string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byHandle[handle]; ok && old != b {
		delete(r.byPlayer, old)
	}
	if prev, ok := r.byPlayer[b]; ok && prev != handle {
		delete(r.byHandle, prev)
		previous = prev
	}

	r.byHandle[handle] = b
	r.byPlayer[b] = handle
	return previous
}

// Lookup resolves a handle
func (r *Registry) Lookup(handle string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byHandle[handle]
	return b, ok
}

// Unbind removes the binding for handle and returns it
func (r *Registry) Unbind(handle string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byHandle[handle]
	if !ok {
		return Binding{}, false
	}
	delete(r.byHandle, handle)
	if r.byPlayer[b] == handle {
		delete(r.byPlayer, b)
	}
	return b, true
}

// Count returns the number of bound handles
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}
