package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// KeyGen draws keys uniformly from [0, KeySpace()).
// Not safe for concurrent use (rand.Rand is not goroutine-safe).
type KeyGen struct {
	r        *rand.Rand
	keySpace int
}

// NewKeyGen sizes the key space as round(capacity / hitRate).
func NewKeyGen(capacity int, hitRate float64, seed int64) (*KeyGen, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrDegenerateKeySpace, capacity)
	}
	if math.IsNaN(hitRate) || hitRate <= 0 || hitRate > 1 {
		return nil, fmt.Errorf("%w: hit rate must be in (0,1], got %v", ErrDegenerateKeySpace, hitRate)
	}
	n := math.Round(float64(capacity) / hitRate)
	if n < 1 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %v keys for capacity %d at hit rate %v",
			ErrDegenerateKeySpace, n, capacity, hitRate)
	}
	return &KeyGen{
		r:        rand.New(rand.NewSource(seed)),
		keySpace: int(n),
	}, nil
}

// Next returns the next key.
func (g *KeyGen) Next() int { return g.r.Intn(g.keySpace) }

// KeySpace returns the number of distinct keys Next can produce.
func (g *KeyGen) KeySpace() int { return g.keySpace }

// Reseed restarts the sequence from seed.
func (g *KeyGen) Reseed(seed int64) { g.r.Seed(seed) }
