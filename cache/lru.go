package cache

import "iter"

// LRU is a capacity-bounded cache with strict least-recently-used eviction.
// It keeps a map[K]*node for lookups and an intrusive MRU↔LRU doubly linked
// list for ordering.
//
// LRU is not safe for concurrent use; wrap it with NewSynchronized when more
// than one goroutine needs access.
type LRU[K comparable, V any] struct {
	m    map[K]*node[K, V]
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	len  int
	cap  int

	opt Options[K, V]
}

// New constructs an LRU with the provided Options.
// It returns ErrInvalidCapacity (wrapped) when Capacity <= 0.
func New[K comparable, V any](opt Options[K, V]) (*LRU[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, capacityError(opt.Capacity)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &LRU[K, V]{
		m:   make(map[K]*node[K, V], opt.Capacity),
		cap: opt.Capacity,
		opt: opt,
	}, nil
}

// Get returns the value for k and promotes the entry to MRU.
// A miss has no side effect besides the Miss metric.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	n, ok := c.m[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.opt.Metrics.Hit()
	return n.val, true
}

// Peek returns the value for k without touching its recency.
func (c *LRU[K, V]) Peek(k K) (V, bool) {
	if n, ok := c.m[k]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Put inserts or updates k→v and promotes it to MRU.
// An update never changes Len; an insert past capacity evicts the tail.
func (c *LRU[K, V]) Put(k K, v V) {
	if n, ok := c.m[k]; ok {
		n.val = v
		c.moveToFront(n)
		return
	}

	n := &node[K, V]{key: k, val: v}
	c.m[k] = n
	c.insertFront(n)

	// Capacity is exceeded by at most one entry here.
	if c.len > c.cap {
		c.evict(c.tail)
	}
	c.opt.Metrics.Size(c.len, c.cap)
}

// Load returns the cached value for k on hit. On miss it calls fabricate,
// inserts the result as MRU and returns it. The flag reports a hit.
func (c *LRU[K, V]) Load(k K, fabricate func(K) V) (V, bool) {
	if v, ok := c.Get(k); ok {
		return v, true
	}
	v := fabricate(k)
	c.Put(k, v)
	return v, false
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int { return c.len }

// Cap returns the capacity fixed at construction.
func (c *LRU[K, V]) Cap() int { return c.cap }

// All returns an iterator over entries from MRU to LRU.
// The cache must not be mutated while the iterator is running.
func (c *LRU[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := c.head; n != nil; n = n.next {
			if !yield(n.key, n.val) {
				return
			}
		}
	}
}

// Backward returns an iterator over entries from LRU to MRU.
// The cache must not be mutated while the iterator is running.
func (c *LRU[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := c.tail; n != nil; n = n.prev {
			if !yield(n.key, n.val) {
				return
			}
		}
	}
}

// Clear removes all entries. OnEvict is not called.
func (c *LRU[K, V]) Clear() {
	// Break the links so a retained node cannot pin the rest of the list.
	for n := c.head; n != nil; {
		next := n.next
		n.prev, n.next = nil, nil
		n = next
	}
	clear(c.m)
	c.head, c.tail = nil, nil
	c.len = 0
	c.opt.Metrics.Size(0, c.cap)
}

// -------------------- list internals --------------------

// insertFront inserts n at MRU in O(1).
func (c *LRU[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.len++
}

// moveToFront promotes n to MRU in O(1).
func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlink detaches n from the list without touching len.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// evict removes n from both the list and the map and notifies observers.
func (c *LRU[K, V]) evict(n *node[K, V]) {
	c.unlink(n)
	delete(c.m, n.key)
	c.len--
	c.opt.Metrics.Evict()
	if cb := c.opt.OnEvict; cb != nil {
		cb(n.key, n.val)
	}
}

var _ Cache[int, int] = (*LRU[int, int])(nil)
