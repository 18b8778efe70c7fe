// Package registry tracks the process-wide set of live channels and
// assigns them stable, never-reused integer ids.
//
// This resolves the open question of whether indices should be stable
// ids or ordinal list positions in favor of stable ids: removing an
// earlier-inserted channel never changes a surviving channel's id, unlike
// the implicit renumbering a plain ordinal scheme would produce.
package registry

import "sync"

// Entry is anything the registry can hold; channel.Channel satisfies it.
type Entry interface {
	RegistryID() int
	SetRegistryID(int)
}

// Registry is a mutex-protected table from stable id to entry. Structural
// mutation (Insert/Remove) and ForEach all hold the same lock for their
// duration, so iteration never observes a torn state.
type Registry struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]Entry
	order   []int // insertion order, for deterministic ForEach
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[int]Entry),
	}
}

// Insert assigns the next stable id to e, records it, and returns the id.
func (r *Registry) Insert(e Entry) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	e.SetRegistryID(id)
	r.entries[id] = e
	r.order = append(r.order, id)
	return id
}

// Remove drops e from the registry. A no-op if e is not present.
func (r *Registry) Remove(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := e.RegistryID()
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// LookupByIndex returns the entry with the given stable id, if still live.
func (r *Registry) LookupByIndex(id int) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// IndexOf returns e's stable id and whether e is currently registered.
func (r *Registry) IndexOf(e Entry) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := e.RegistryID()
	_, ok := r.entries[id]
	return id, ok
}

// ForEach calls fn for every live entry, in insertion order, while holding
// the registry lock; fn must not call back into the registry.
func (r *Registry) ForEach(fn func(Entry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		fn(r.entries[id])
	}
}

// Len returns the number of currently registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
