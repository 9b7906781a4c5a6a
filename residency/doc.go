// Package residency samples which cached values the host memory manager
// has moved to its slow tier and aggregates the result into per-tick
// Snapshots.
//
// The memory-tier signal comes from an injected Oracle; the package never
// inspects memory itself. On every tick the Sampler walks the cache once,
// asks the Oracle about each value, and derives:
//
//   - ResidentCardinality: how many cached values are slow-tier resident.
//   - RecentResidentCardinality: the same count restricted to the first
//     WindowSize entries of the walk (most-recently-used first by default).
//     A high value means values are being promoted faster than the access
//     pattern justifies.
//   - StableResidentCardinality: how many keys from the previous tick's
//     window are still resident now.
//
// Oracle aggregate counters are passed through with a few derived ratios.
// A failing or inconsistent oracle drops only those fields for the tick.
package residency
