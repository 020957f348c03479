// Package cache provides fingerprint-keyed memoization for the resolution
// and signature-extraction stages. Entries are never expired by time:
// validity is decided purely by comparing the fingerprint presented at
// lookup with the fingerprint recorded at insert.
package cache

import (
	"fmt"

	"github.com/maypok86/otter"
)

// DefaultCapacity bounds each store. The corpus is bounded by workspace
// size, so this is generous headroom rather than a working-set limit.
const DefaultCapacity = 10_000

type entry[V any] struct {
	fingerprint string
	value       V
}

// Store memoizes values under a stable key, guarded by a fingerprint.
// A lookup with a fingerprint different from the stored one is a miss,
// which makes invalidation a pure function of inputs.
type Store[V any] struct {
	inner otter.Cache[string, entry[V]]
}

// New creates a store with the given capacity (DefaultCapacity if <= 0).
func New[V any](capacity int) (*Store[V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := otter.MustBuilder[string, entry[V]](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}
	return &Store[V]{inner: inner}, nil
}

// Get returns the value stored under key if its fingerprint matches.
func (s *Store[V]) Get(key, fingerprint string) (V, bool) {
	e, ok := s.inner.Get(key)
	if !ok || e.fingerprint != fingerprint {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set records value under key with the given fingerprint, replacing any
// prior entry for the key.
func (s *Store[V]) Set(key, fingerprint string, value V) {
	s.inner.Set(key, entry[V]{fingerprint: fingerprint, value: value})
}

// Delete drops the entry for key, if any.
func (s *Store[V]) Delete(key string) {
	s.inner.Delete(key)
}

// Reset drops every entry. Used when the configuration the fingerprints
// derive from has changed wholesale (interpreter swap).
func (s *Store[V]) Reset() {
	s.inner.Clear()
}
