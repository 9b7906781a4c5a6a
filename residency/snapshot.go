package residency

import "time"

// Snapshot is the result of one sampling tick.
type Snapshot struct {
	Tick      int           `json:"tick"`
	Iteration int           `json:"iteration"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	CacheLen  int           `json:"cache_len"`
	HitRate   float64       `json:"hit_rate"`

	ResidentCardinality       int `json:"resident"`
	RecentResidentCardinality int `json:"recent_resident"`
	StableResidentCardinality int `json:"stable_resident"`

	// Oracle is nil when the oracle failed for this tick; OracleErr says why.
	Oracle    *OracleStats `json:"oracle,omitempty"`
	OracleErr string       `json:"oracle_error,omitempty"`
}

// OracleStats carries the oracle aggregates verbatim plus derived ratios.
type OracleStats struct {
	GlobalStats

	// UtilizationPct is used / (regions * regionSize) * 100.
	UtilizationPct float64 `json:"utilization_pct"`
	// LiveOfUsedPct is live / used * 100.
	LiveOfUsedPct float64 `json:"live_of_used_pct"`
	// LiveOfCapacityPct is live / (regions * regionSize) * 100.
	LiveOfCapacityPct float64 `json:"live_of_capacity_pct"`

	// ExpectedResident is used / objectSize: how many payloads the tier
	// could hold if it contained nothing else.
	ExpectedResident int64 `json:"expected_resident"`
	// Gap is ExpectedResident - ResidentCardinality.
	Gap      int64 `json:"gap"`
	GapBytes int64 `json:"gap_bytes"`
}

// Sink receives one Snapshot per tick.
type Sink interface {
	Report(Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot) error

func (f SinkFunc) Report(s Snapshot) error { return f(s) }

func pct(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func deriveOracleStats(g GlobalStats, resident int, objectSize int) *OracleStats {
	capacity := g.RegionCount * g.RegionSizeBytes
	o := &OracleStats{
		GlobalStats:       g,
		UtilizationPct:    pct(g.UsedBytes, capacity),
		LiveOfUsedPct:     pct(g.LiveBytes, g.UsedBytes),
		LiveOfCapacityPct: pct(g.LiveBytes, capacity),
	}
	if objectSize > 0 {
		o.ExpectedResident = g.UsedBytes / int64(objectSize)
	}
	o.Gap = o.ExpectedResident - int64(resident)
	o.GapBytes = o.Gap * int64(objectSize)
	return o
}
