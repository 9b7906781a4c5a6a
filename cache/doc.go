// Package cache provides a bounded, generic LRU cache: a capacity fixed at
// construction, O(1) Get/Put, and strict least-recently-used eviction.
//
// Design
//
//   - Storage: a map[K]*node for lookups and an intrusive MRU↔LRU doubly
//     linked list for ordering. Every hit and every Put relinks the touched
//     node at the head; eviction unlinks the tail. No operation on the hot
//     path scans the map or the list.
//
//   - Capacity: Len() <= Cap() after every public call. An insert that would
//     exceed the capacity evicts exactly one entry, the tail. Updating an
//     existing key never evicts.
//
//   - Enumeration: All (MRU first) and Backward (LRU first) yield each live
//     entry exactly once. Mutating the cache while iterating is not supported.
//
//   - Concurrency: LRU is single-threaded. Synchronized wraps it with one
//     exclusive lock around every map+list mutation.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     NoopMetrics is used by default; the metrics/prom adapter exports them.
//
// Basic usage
//
//	c, err := cache.New[int, []byte](cache.Options[int, []byte]{Capacity: 10_000})
//	if err != nil {
//	    return err
//	}
//	c.Put(1, payload)
//	if v, ok := c.Get(1); ok {
//	    _ = v
//	}
//
// Get-or-fabricate
//
//	v, hit := c.Load(key, func(int) []byte { return make([]byte, 4096) })
package cache
