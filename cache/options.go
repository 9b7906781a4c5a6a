package cache

// Metrics exposes cache-level observability hooks.
// Hooks run inline on the calling goroutine; keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	// Size reports the resident entry count and the fixed capacity
	// after every mutation.
	Size(entries, capacity int)
}

// Options configures an LRU. Zero values are safe except Capacity;
// defaults are applied in New():
//   - nil Metrics => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries. Must be > 0.
	Capacity int

	// OnEvict is called after an entry has been evicted to make room for
	// a new one. It is not called by Clear.
	OnEvict func(k K, v V)

	Metrics Metrics
}
