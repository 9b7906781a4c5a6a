package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// A mixed workload of concurrent Get/Put/Load on random keys.
// Should pass under `-race` without detector reports.
func TestSynchronized_Race(t *testing.T) {
	c, err := NewSynchronized[string, []byte](Options[string, []byte]{Capacity: 8_192})
	if err != nil {
		t.Fatal(err)
	}

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(500 * time.Millisecond)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0: // ~1%: walk
					n := 0
					for range c.All() {
						n++
					}
					_ = n
				case 1, 2, 3, 4, 5, 6, 7, 8, 9, 10: // ~10%: Put
					c.Put(k, []byte("x"))
				case 11, 12, 13, 14, 15, 16, 17, 18, 19, 20: // ~10%: Load
					c.Load(k, func(string) []byte { return []byte("y") })
				default: // Get
					c.Get(k)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if c.Len() > c.Cap() {
		t.Fatalf("Len %d exceeds Cap %d", c.Len(), c.Cap())
	}
}

// One hundred goroutines Load the same key concurrently; the fabricator
// runs under the lock and therefore exactly once.
func TestSynchronized_LoadOnce(t *testing.T) {
	var calls atomic.Int64

	c, err := NewSynchronized[string, string](Options[string, string]{Capacity: 16})
	if err != nil {
		t.Fatal(err)
	}

	const goroutines = 100
	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			<-start
			v, _ := c.Load("same-key", func(k string) string {
				calls.Add(1)
				return "v:" + k
			})
			if v != "v:same-key" {
				t.Errorf("unexpected value: %q", v)
			}
			return nil
		})
	}
	close(start)
	_ = g.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fabricate must run exactly once, got %d", got)
	}
}

func TestNewSynchronized_InvalidCapacity(t *testing.T) {
	t.Parallel()

	if _, err := NewSynchronized[int, int](Options[int, int]{}); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}
