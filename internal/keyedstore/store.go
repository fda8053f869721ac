// Package keyedstore provides the in-memory keyed tables behind the RA
// registry, the gateway's PUF and credential tables and the device helper
// store.
//
// Every operation, including the compound ones (InsertIfAbsent, Update,
// Move, DeleteIf), runs under a single mutex, so a check and the write that depends on
// it are never interleaved with another caller's.
package keyedstore

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrExists   = errors.New("key already present")
)

type Store[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{m: make(map[K]V)}
}

func (s *Store[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok
}

func (s *Store[K, V]) Contains(k K) bool {
	_, ok := s.Get(k)
	return ok
}

// InsertIfAbsent stores v under k unless k is present. It reports whether
// the value was stored.
func (s *Store[K, V]) InsertIfAbsent(k K, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = v
	return true
}

// Put stores v under k, replacing any previous value.
func (s *Store[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
}

// Update replaces the value under k with fn's result. If fn fails the stored
// value is left as it was. Returns ErrNotFound when k is absent.
func (s *Store[K, V]) Update(k K, fn func(V) (V, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	if !ok {
		return ErrNotFound
	}
	nv, err := fn(v)
	if err != nil {
		return err
	}
	s.m[k] = nv
	return nil
}

// Delete removes k and returns what was stored there.
func (s *Store[K, V]) Delete(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	delete(s.m, k)
	return v, ok
}

// Move rekeys the value under from to to, provided check accepts it. The
// lookup, the check, the insert and the removal of the old key form one
// critical section: either both keys change or neither does.
//
// Returns ErrNotFound if from is absent and ErrExists if to is taken. A
// rejected check returns (false, nil).
func (s *Store[K, V]) Move(from, to K, check func(V) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m[from]
	if !ok {
		return false, ErrNotFound
	}
	if _, taken := s.m[to]; taken {
		return false, ErrExists
	}
	if check != nil && !check(v) {
		return false, nil
	}

	s.m[to] = v
	delete(s.m, from)
	return true, nil
}

// DeleteIf removes k when check accepts the stored value. It reports
// whether k was removed.
func (s *Store[K, V]) DeleteIf(k K, check func(V) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	if !ok || !check(v) {
		return false
	}
	delete(s.m, k)
	return true
}

// Snapshot returns a shallow copy of the table.
func (s *Store[K, V]) Snapshot() map[K]V {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[K]V, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}
