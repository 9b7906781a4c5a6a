package cache

import (
	"strings"
	"testing"
)

// Fuzz Put/Get/Peek semantics under arbitrary string inputs.
// Guards against panics and checks the list/map invariants after each step.
func FuzzLRU_PutGet(f *testing.F) {
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(2))
	f.Add("αβγ", "δ", uint8(3))
	f.Add("emoji🙂", "🙂🙂", uint8(4))
	f.Add("long", strings.Repeat("x", 1024), uint8(16))

	f.Fuzz(func(t *testing.T, k, v string, capacity uint8) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}
		capN := int(capacity%32) + 1

		c := newLRU[string, string](t, capN)

		// Put -> Get must return the same value.
		c.Put(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Fill past capacity with derived keys; k was touched first so it
		// is evicted only once capN other keys have been inserted.
		for i := 0; i < capN; i++ {
			c.Put(k+strings.Repeat("#", i+1), v)
			checkInvariants(t, c)
		}
		if _, ok := c.Peek(k); ok {
			t.Fatalf("key must be evicted after %d newer inserts", capN)
		}
		if c.Len() != capN {
			t.Fatalf("Len=%d want %d", c.Len(), capN)
		}
	})
}
