package cache

import (
	"iter"
	"sync"
)

// Synchronized guards an LRU with a single exclusive lock so that the
// combined map+list mutation in Get/Put/eviction is never observed half done.
// All methods are safe for concurrent use by multiple goroutines.
//
// Get takes the exclusive lock too: a hit reorders the list.
type Synchronized[K comparable, V any] struct {
	mu sync.Mutex
	c  *LRU[K, V]
}

// NewSynchronized constructs a locked LRU with the provided Options.
func NewSynchronized[K comparable, V any](opt Options[K, V]) (*Synchronized[K, V], error) {
	c, err := New(opt)
	if err != nil {
		return nil, err
	}
	return &Synchronized[K, V]{c: c}, nil
}

func (s *Synchronized[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(k)
}

func (s *Synchronized[K, V]) Put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Put(k, v)
}

// Load runs fabricate under the lock, so concurrent misses on the same key
// fabricate exactly once.
func (s *Synchronized[K, V]) Load(k K, fabricate func(K) V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Load(k, fabricate)
}

func (s *Synchronized[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

func (s *Synchronized[K, V]) Cap() int { return s.c.Cap() }

// All holds the lock for the whole iteration; yield must not call back
// into s.
func (s *Synchronized[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.c.All()(yield)
	}
}

// Backward holds the lock for the whole iteration; yield must not call
// back into s.
func (s *Synchronized[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.c.Backward()(yield)
	}
}

func (s *Synchronized[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Clear()
}

var _ Cache[int, int] = (*Synchronized[int, int])(nil)
