package cache

// node is an intrusive doubly linked list element owned by an LRU.
// Keeping the key next to the links lets eviction start from the tail
// and still find the map slot to delete.
type node[K comparable, V any] struct {
	key K
	val V

	// head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]
}
