// Package concur provides the two low-level concurrency primitives the
// nested-archive handler is built from: a memoized singleton-factory cache
// and a scoped LIFO resource pool. Both are deliberately generic so the
// handler can instantiate one per key space (canonical file, chunk index,
// archive slice, nested path, entry) without repeating the bookkeeping.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package concur

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// SingletonMap guarantees exactly one successful construct() call per key:
// concurrent Get calls for the same key share the in-flight construction
// (via singleflight.Group) and a failed construction is never cached, so a
// later Get re-attempts from scratch. This is the mechanism backing every
// factory cache in package archive (canonical-file, chunk, slice, nested
// path, entry).
type SingletonMap[V any] struct {
	g    singleflight.Group
	mu   sync.RWMutex
	vals map[string]V
}

func NewSingletonMap[V any]() *SingletonMap[V] {
	return &SingletonMap[V]{vals: make(map[string]V)}
}

// Get returns the memoized value for key, constructing it at most once.
func (m *SingletonMap[V]) Get(key string, construct func() (V, error)) (V, error) {
	if v, ok := m.load(key); ok {
		return v, nil
	}
	res, err, _ := m.g.Do(key, func() (any, error) {
		// another caller may have completed construction while we were
		// queued behind the singleflight gate for a *different* prior
		// attempt on this same key (retry-after-failure case).
		if v, ok := m.load(key); ok {
			return v, nil
		}
		v, err := construct()
		if err != nil {
			return nil, err
		}
		m.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (m *SingletonMap[V]) load(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok
}

func (m *SingletonMap[V]) store(key string, v V) {
	m.mu.Lock()
	m.vals[key] = v
	m.mu.Unlock()
}

// Values enumerates only successfully constructed entries.
func (m *SingletonMap[V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]V, 0, len(m.vals))
	for _, v := range m.vals {
		out = append(out, v)
	}
	return out
}

// Clear discards all memoized entries. The caller must already have drained
// dependents — Clear does not close or otherwise dispose of values.
func (m *SingletonMap[V]) Clear() {
	m.mu.Lock()
	m.vals = make(map[string]V)
	m.mu.Unlock()
}
