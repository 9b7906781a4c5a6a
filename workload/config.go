package workload

import (
	"fmt"

	"github.com/IvanBrykalov/lrutier/residency"
)

// Config describes one workload run. It is a plain value; copy it freely.
type Config struct {
	// ObjectSize is the payload size in bytes fabricated on every miss.
	ObjectSize int
	// TargetHitRate is the expected steady-state hit rate, in (0, 1].
	TargetHitRate float64
	// CacheCapacity is the maximum number of cached payloads.
	CacheCapacity int
	// Iterations is the number of accesses to issue.
	Iterations int
	// SampleInterval is the number of iterations between residency
	// samples; 0 disables sampling.
	SampleInterval int
	// Seed seeds the key generator.
	Seed int64

	// WindowSize and WindowRule configure the sampler's recent window.
	WindowSize int
	WindowRule residency.WindowRule
}

// Validate checks the fields the driver relies on. Capacity and hit rate
// are checked again, with dedicated errors, by cache.New and NewKeyGen.
func (c Config) Validate() error {
	switch {
	case c.ObjectSize <= 0:
		return fmt.Errorf("%w: object size must be > 0, got %d", ErrInvalidConfig, c.ObjectSize)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidConfig, c.Iterations)
	case c.SampleInterval < 0:
		return fmt.Errorf("%w: sample interval must be >= 0, got %d", ErrInvalidConfig, c.SampleInterval)
	case c.WindowSize < 0:
		return fmt.Errorf("%w: window size must be >= 0, got %d", ErrInvalidConfig, c.WindowSize)
	}
	return nil
}
