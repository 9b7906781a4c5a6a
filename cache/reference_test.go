package cache

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Differential test: the eviction sequence and final order must match
// hashicorp's simplelru on the same random operation stream.
func TestLRU_MatchesSimpleLRU(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{1, 2, 7, 64} {
		var gotEvicted, wantEvicted []int

		c, err := New[int, int](Options[int, int]{
			Capacity: capacity,
			OnEvict:  func(k, _ int) { gotEvicted = append(gotEvicted, k) },
		})
		if err != nil {
			t.Fatal(err)
		}
		ref, err := simplelru.NewLRU[int, int](capacity, func(k, _ int) {
			wantEvicted = append(wantEvicted, k)
		})
		if err != nil {
			t.Fatal(err)
		}

		r := rand.New(rand.NewSource(int64(capacity)))
		for i := 0; i < 20_000; i++ {
			k := r.Intn(capacity * 3)
			if r.Intn(2) == 0 {
				v, ok := c.Get(k)
				rv, rok := ref.Get(k)
				if ok != rok || v != rv {
					t.Fatalf("cap=%d op=%d Get(%d): got (%d,%v) want (%d,%v)", capacity, i, k, v, ok, rv, rok)
				}
			} else {
				c.Put(k, i)
				ref.Add(k, i)
			}
		}

		if !slices.Equal(gotEvicted, wantEvicted) {
			t.Fatalf("cap=%d: eviction sequences differ (got %d, want %d evictions)",
				capacity, len(gotEvicted), len(wantEvicted))
		}

		// simplelru lists oldest first, which is Backward order.
		var back []int
		for k := range c.Backward() {
			back = append(back, k)
		}
		if want := ref.Keys(); !slices.Equal(back, want) {
			t.Fatalf("cap=%d: order mismatch\n got %v\nwant %v", capacity, back, want)
		}
	}
}
