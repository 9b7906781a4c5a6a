// Package gcage is a residency.Oracle for the Go runtime.
//
// Go's collector is not generational, so there is no old generation to ask
// about. The slow tier is modeled as tenure instead: a payload is resident
// once it has survived TenureCycles completed GC cycles since it was
// fabricated. Payloads must come from Oracle.Fabricate, which stamps the
// current cycle count into the first eight bytes.
//
// Aggregates are read from runtime/metrics and mapped onto regions of the
// runtime page size.
package gcage

import (
	"encoding/binary"
	"fmt"
	"runtime/metrics"

	"github.com/IvanBrykalov/lrutier/residency"
)

// StampSize is the number of payload bytes used for the cycle stamp.
// Shorter payloads are never reported resident.
const StampSize = 8

// PageSize is the runtime's heap page size, used as the region size.
const PageSize = 8 << 10

// DefaultTenureCycles is used when New is given a non-positive tenure.
const DefaultTenureCycles = 2

const (
	metricCycles  = "/gc/cycles/total:gc-cycles"
	metricLive    = "/gc/heap/live:bytes"
	metricObjects = "/memory/classes/heap/objects:bytes"
	metricUnused  = "/memory/classes/heap/unused:bytes"
)

// Oracle answers residency questions about payloads it fabricated.
// Not safe for concurrent use.
type Oracle struct {
	tenure uint64
	// cycles is the GC cycle count captured by the last BeginTick.
	cycles uint64

	cyclesSample []metrics.Sample
	heapSamples  []metrics.Sample
}

// New returns an Oracle that treats payloads as resident after tenure
// completed GC cycles.
func New(tenure int) *Oracle {
	if tenure <= 0 {
		tenure = DefaultTenureCycles
	}
	o := &Oracle{
		tenure:       uint64(tenure),
		cyclesSample: []metrics.Sample{{Name: metricCycles}},
		heapSamples: []metrics.Sample{
			{Name: metricLive},
			{Name: metricObjects},
			{Name: metricUnused},
		},
	}
	o.BeginTick()
	return o
}

// Cycles returns the number of completed GC cycles right now.
func (o *Oracle) Cycles() uint64 {
	metrics.Read(o.cyclesSample)
	return readUint(o.cyclesSample[0])
}

// Fabricate allocates a payload of size bytes stamped with the current GC
// cycle count.
func (o *Oracle) Fabricate(size int) []byte {
	b := make([]byte, size)
	if size >= StampSize {
		binary.LittleEndian.PutUint64(b, o.Cycles())
	}
	return b
}

// BeginTick captures the cycle count every IsResident call in this tick
// compares against.
func (o *Oracle) BeginTick() { o.cycles = o.Cycles() }

// IsResident reports whether v has survived at least the tenure number of
// GC cycles as of the last BeginTick.
func (o *Oracle) IsResident(v []byte) bool {
	if len(v) < StampSize {
		return false
	}
	born := binary.LittleEndian.Uint64(v)
	return born <= o.cycles && o.cycles-born >= o.tenure
}

// GlobalStats maps runtime heap classes onto the oracle aggregates:
//   - used: bytes in heap objects (live plus not yet swept)
//   - live: bytes marked live by the last GC, clamped to used
//   - regions: pages spanned by object and unused heap memory
//   - freeable: used - live, the garbage the next sweep returns
func (o *Oracle) GlobalStats() (residency.GlobalStats, error) {
	metrics.Read(o.heapSamples)
	vals := make([]uint64, len(o.heapSamples))
	for i, s := range o.heapSamples {
		if s.Value.Kind() != metrics.KindUint64 {
			return residency.GlobalStats{}, fmt.Errorf("gcage: metric %s unsupported by this runtime", s.Name)
		}
		vals[i] = s.Value.Uint64()
	}
	live, objects, unused := int64(vals[0]), int64(vals[1]), int64(vals[2])

	live = min(live, objects)
	regions := (objects + unused + PageSize - 1) / PageSize
	freeable := objects - live
	return residency.GlobalStats{
		RegionCount:         regions,
		UsedBytes:           objects,
		LiveBytes:           live,
		FreeableRegionCount: freeable / PageSize,
		FreeableBytes:       freeable,
		RegionSizeBytes:     PageSize,
	}, nil
}

func readUint(s metrics.Sample) uint64 {
	if s.Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s.Value.Uint64()
}

var _ residency.Oracle[[]byte] = (*Oracle)(nil)
var _ residency.TickAware = (*Oracle)(nil)
