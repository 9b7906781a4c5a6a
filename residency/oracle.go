package residency

import (
	"errors"
	"fmt"
)

// ErrOracleUnavailable is returned by NopOracle.GlobalStats.
var ErrOracleUnavailable = errors.New("residency: oracle unavailable")

// ErrMalformedStats reports GlobalStats that cannot describe a real heap.
var ErrMalformedStats = errors.New("residency: malformed oracle stats")

// Oracle answers whether a value's backing memory sits in the slow tier
// and exposes aggregate counters for that tier. Implementations must be
// read-only with respect to the cache and cheap enough to call per entry.
type Oracle[V any] interface {
	IsResident(v V) bool
	GlobalStats() (GlobalStats, error)
}

// TickAware is an optional Oracle extension. BeginTick is called once at
// the start of every sample, before any IsResident call, so the oracle can
// refresh whatever state its answers depend on.
type TickAware interface {
	BeginTick()
}

// GlobalStats are the slow-tier aggregates reported by an Oracle.
type GlobalStats struct {
	RegionCount         int64 `json:"region_count"`
	UsedBytes           int64 `json:"used_bytes"`
	LiveBytes           int64 `json:"live_bytes"`
	FreeableRegionCount int64 `json:"freeable_region_count"`
	FreeableBytes       int64 `json:"freeable_bytes"`
	RegionSizeBytes     int64 `json:"region_size_bytes"`
}

// Validate returns ErrMalformedStats (wrapped) when the counters are
// inconsistent with each other.
func (g GlobalStats) Validate() error {
	switch {
	case g.RegionCount < 0, g.UsedBytes < 0, g.LiveBytes < 0,
		g.FreeableRegionCount < 0, g.FreeableBytes < 0, g.RegionSizeBytes < 0:
		return fmt.Errorf("%w: negative counter in %+v", ErrMalformedStats, g)
	case g.RegionCount > 0 && g.RegionSizeBytes == 0:
		return fmt.Errorf("%w: %d regions of size 0", ErrMalformedStats, g.RegionCount)
	case g.LiveBytes > g.UsedBytes:
		return fmt.Errorf("%w: live %d > used %d", ErrMalformedStats, g.LiveBytes, g.UsedBytes)
	case g.UsedBytes > g.RegionCount*g.RegionSizeBytes:
		return fmt.Errorf("%w: used %d exceeds %d regions", ErrMalformedStats, g.UsedBytes, g.RegionCount)
	case g.FreeableRegionCount > g.RegionCount:
		return fmt.Errorf("%w: freeable regions %d > regions %d", ErrMalformedStats, g.FreeableRegionCount, g.RegionCount)
	}
	return nil
}

// NopOracle never reports residency and has no aggregates.
// It lets a run proceed when no platform oracle is configured.
type NopOracle[V any] struct{}

func (NopOracle[V]) IsResident(V) bool { return false }

func (NopOracle[V]) GlobalStats() (GlobalStats, error) {
	return GlobalStats{}, ErrOracleUnavailable
}
