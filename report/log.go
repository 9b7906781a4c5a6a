package report

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/lrutier/residency"
)

// LogSink writes one slog record per snapshot. With a JSON handler every
// tick becomes one line that downstream tooling can parse.
type LogSink struct {
	log   *slog.Logger
	level slog.Level
}

// NewLogSink returns a sink that logs at Info on l (nil => slog.Default()).
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{log: l, level: slog.LevelInfo}
}

// Report logs s. It never fails.
func (s *LogSink) Report(snap residency.Snapshot) error {
	attrs := []slog.Attr{
		slog.Int("tick", snap.Tick),
		slog.Int("iteration", snap.Iteration),
		slog.Duration("elapsed", snap.Elapsed),
		slog.Int("cache_len", snap.CacheLen),
		slog.Float64("hit_rate", snap.HitRate),
		slog.Int("resident", snap.ResidentCardinality),
		slog.Int("recent_resident", snap.RecentResidentCardinality),
		slog.Int("stable_resident", snap.StableResidentCardinality),
	}
	if o := snap.Oracle; o != nil {
		attrs = append(attrs, slog.Group("oracle",
			slog.Int64("region_count", o.RegionCount),
			slog.Int64("used_bytes", o.UsedBytes),
			slog.Int64("live_bytes", o.LiveBytes),
			slog.Int64("freeable_region_count", o.FreeableRegionCount),
			slog.Int64("freeable_bytes", o.FreeableBytes),
			slog.Int64("region_size_bytes", o.RegionSizeBytes),
			slog.Float64("utilization_pct", o.UtilizationPct),
			slog.Float64("live_of_used_pct", o.LiveOfUsedPct),
			slog.Float64("live_of_capacity_pct", o.LiveOfCapacityPct),
			slog.Int64("expected_resident", o.ExpectedResident),
			slog.Int64("gap", o.Gap),
			slog.Int64("gap_bytes", o.GapBytes),
		))
	}
	if snap.OracleErr != "" {
		attrs = append(attrs, slog.String("oracle_error", snap.OracleErr))
	}
	s.log.LogAttrs(context.Background(), s.level, "residency", attrs...)
	return nil
}

var _ residency.Sink = (*LogSink)(nil)
