package cache

import "iter"

// Cache is the contract shared by LRU and Synchronized.
//
// Get and Put are O(1) expected time: one map access plus a constant
// number of pointer fixes on the recency list.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag.
	// On hit, the entry becomes most-recently-used.
	Get(k K) (V, bool)

	// Put inserts or updates k→v and makes it most-recently-used.
	// Inserting past capacity evicts exactly the least-recently-used entry;
	// updating an existing key never evicts.
	Put(k K, v V)

	// Load returns the value for k, fabricating and inserting it on miss.
	// The flag reports whether the lookup was a hit.
	Load(k K, fabricate func(K) V) (V, bool)

	// Len returns the number of resident entries (always <= Cap).
	Len() int

	// Cap returns the capacity fixed at construction.
	Cap() int

	// All iterates entries from most- to least-recently-used.
	All() iter.Seq2[K, V]

	// Backward iterates entries from least- to most-recently-used.
	Backward() iter.Seq2[K, V]

	// Clear removes every entry without eviction callbacks.
	Clear()
}
