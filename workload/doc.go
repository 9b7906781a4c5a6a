// Package workload drives a bounded LRU cache with a synthetic request
// stream whose expected steady-state hit rate is configurable.
//
// Keys are drawn uniformly from [0, round(capacity/hitRate)). Once the cache
// is warm a key is resident with probability capacity/keySpace, which is
// the target hit rate. On a miss the Driver fabricates an ObjectSize payload
// and inserts it; every accessed value is forwarded to a consumer so the
// runtime cannot treat it as dead early.
//
// Every SampleInterval iterations the Driver hands the cache to a
// residency.Sampler and forwards the resulting Snapshot to a residency.Sink.
package workload
