// Package store provides the in-memory entity store backing lobbies and
// games. Every mutation of one entity runs under that entity's own lock, so
// operations on the same id are strictly ordered while unrelated entities
// proceed in parallel.
package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when the id has no entry.
var ErrNotFound = errors.New("store: entity not found")

// Remove can be returned from an Update callback to delete the entity as
// part of the same critical section. Update then returns nil.
var Remove = errors.New("store: remove entity")

// Cloner is satisfied by entity types that can deep-copy themselves. Every
// value leaving the store is a clone; callers never see shared state.
type Cloner[T any] interface {
	Clone() T
}

type entry[T Cloner[T]] struct {
	mu  sync.Mutex
	val T
}

type Store[T Cloner[T]] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
}

func New[T Cloner[T]]() *Store[T] {
	return &Store[T]{entries: make(map[string]*entry[T])}
}

// Put inserts or replaces the entity under id.
func (s *Store[T]) Put(id string, v T) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry[T]{}
		s.entries[id] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	e.val = v.Clone()
	e.mu.Unlock()
}

// Get returns a copy of the entity under id.
func (s *Store[T]) Get(id string) (T, bool) {
	var zero T
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return zero, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val.Clone(), true
}

// Update runs fn with exclusive access to the entity under id. fn receives
// the stored value itself; its mutations are the new state once fn returns
// nil. Returning Remove deletes the entity instead. Any other error is
// propagated and the stored state is left as fn leaves it, so callbacks
// must not mutate before their validation is done.
//
// fn must not call back into the store for the same id.
func (s *Store[T]) Update(id string, fn func(v *T) error) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(&e.val)
	if errors.Is(err, Remove) {
		// Delete while still holding the entity lock so no concurrent
		// Update can slip in between the decision and the removal.
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil
	}
	return err
}

// Delete removes the entity under id, waiting out any in-flight Update.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if ok {
		// Ensure no Update is still running on the removed entry.
		e.mu.Lock()
		e.mu.Unlock() //nolint:staticcheck // lock/unlock pairs as a barrier
	}
}

// List returns copies of all entities. Order is unspecified.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	ptrs := make([]*entry[T], 0, len(s.entries))
	for _, e := range s.entries {
		ptrs = append(ptrs, e)
	}
	s.mu.Unlock()

	out := make([]T, 0, len(ptrs))
	for _, e := range ptrs {
		e.mu.Lock()
		out = append(out, e.val.Clone())
		e.mu.Unlock()
	}
	return out
}

// Len reports the number of stored entities.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
