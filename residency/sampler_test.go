package residency

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lrutier/cache"
)

// setOracle reports a value as resident when it is in the set.
// Values in these tests equal their keys.
type setOracle struct {
	resident map[int]bool
	stats    GlobalStats
	err      error
	ticks    int
}

func (o *setOracle) IsResident(v int) bool             { return o.resident[v] }
func (o *setOracle) GlobalStats() (GlobalStats, error) { return o.stats, o.err }
func (o *setOracle) BeginTick()                        { o.ticks++ }

func residentSet(keys ...int) map[int]bool {
	m := make(map[int]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// filled returns a cache holding keys 0..n-1 (n-1 is MRU, 0 is LRU).
func filled(t *testing.T, n int) *cache.LRU[int, int] {
	t.Helper()
	c, err := cache.New[int, int](cache.Options[int, int]{Capacity: n})
	require.NoError(t, err)
	for k := 0; k < n; k++ {
		c.Put(k, k)
	}
	return c
}

func validStats() GlobalStats {
	return GlobalStats{
		RegionCount:         10,
		UsedBytes:           500,
		LiveBytes:           250,
		FreeableRegionCount: 2,
		FreeableBytes:       200,
		RegionSizeBytes:     100,
	}
}

func TestSampler_ResidentCardinality(t *testing.T) {
	t.Parallel()

	c := filled(t, 100)
	o := &setOracle{resident: residentSet(3, 14, 15, 92, 65), stats: validStats()}
	s := NewSampler[int, int](o, Options{WindowSize: 1000})

	snap := s.Sample(c, 0, 0)
	assert.Equal(t, 5, snap.ResidentCardinality)
	assert.Equal(t, 5, snap.RecentResidentCardinality)
	assert.Equal(t, 0, snap.StableResidentCardinality, "no previous tick")
	assert.Equal(t, 100, snap.CacheLen)
	assert.Equal(t, 1, o.ticks)

	var keys []int
	for k := range s.ResidentKeys() {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []int{3, 14, 15, 92, 65}, keys)
}

func TestSampler_StableDisjointTicks(t *testing.T) {
	t.Parallel()

	c := filled(t, 50)
	o := &setOracle{resident: residentSet(1, 2, 3), stats: validStats()}
	s := NewSampler[int, int](o, Options{})

	first := s.Sample(c, 0, 0)
	require.Equal(t, 3, first.RecentResidentCardinality)

	o.resident = residentSet(10, 11, 12, 13)
	second := s.Sample(c, 100, 0)
	assert.Equal(t, 4, second.ResidentCardinality)
	assert.Equal(t, 0, second.StableResidentCardinality)
}

func TestSampler_StableIdenticalTicks(t *testing.T) {
	t.Parallel()

	c := filled(t, 50)
	o := &setOracle{resident: residentSet(5, 6, 7, 40, 41, 49), stats: validStats()}
	// Window of 10 MRU entries: keys 40..49; 40, 41 and 49 are resident.
	s := NewSampler[int, int](o, Options{WindowSize: 10})

	first := s.Sample(c, 0, 0)
	require.Equal(t, 6, first.ResidentCardinality)
	require.Equal(t, 3, first.RecentResidentCardinality)

	second := s.Sample(c, 1, 0)
	assert.Equal(t, first.RecentResidentCardinality, second.StableResidentCardinality)
	assert.Equal(t, 1, second.Tick)
}

func TestSampler_WindowRule(t *testing.T) {
	t.Parallel()

	// Keys 0,1,2 are the least recently used.
	c := filled(t, 20)
	o := &setOracle{resident: residentSet(0, 1, 2), stats: validStats()}

	mru := NewSampler[int, int](o, Options{WindowSize: 3, WindowRule: WindowMostRecent})
	assert.Equal(t, 0, mru.Sample(c, 0, 0).RecentResidentCardinality)

	lru := NewSampler[int, int](o, Options{WindowSize: 3, WindowRule: WindowLeastRecent})
	snap := lru.Sample(c, 0, 0)
	assert.Equal(t, 3, snap.RecentResidentCardinality)
	assert.Equal(t, 3, snap.ResidentCardinality)
}

// Refreshing an entry moves it into the most-recent window.
func TestSampler_WindowFollowsRecency(t *testing.T) {
	t.Parallel()

	c := filled(t, 20)
	o := &setOracle{resident: residentSet(0), stats: validStats()}
	s := NewSampler[int, int](o, Options{WindowSize: 2})

	assert.Equal(t, 0, s.Sample(c, 0, 0).RecentResidentCardinality)
	_, ok := c.Get(0)
	require.True(t, ok)
	snap := s.Sample(c, 1, 0)
	assert.Equal(t, 1, snap.RecentResidentCardinality)
	assert.Equal(t, 0, snap.StableResidentCardinality)
}

func TestSampler_DerivedOracleStats(t *testing.T) {
	t.Parallel()

	c := filled(t, 30)
	o := &setOracle{resident: residentSet(1, 2, 3, 4, 5), stats: validStats()}
	s := NewSampler[int, int](o, Options{ObjectSize: 10})

	snap := s.Sample(c, 0, 0.9)
	require.NotNil(t, snap.Oracle)
	assert.Empty(t, snap.OracleErr)
	assert.Equal(t, validStats(), snap.Oracle.GlobalStats)
	assert.InDelta(t, 50.0, snap.Oracle.UtilizationPct, 1e-9)
	assert.InDelta(t, 50.0, snap.Oracle.LiveOfUsedPct, 1e-9)
	assert.InDelta(t, 25.0, snap.Oracle.LiveOfCapacityPct, 1e-9)
	assert.Equal(t, int64(50), snap.Oracle.ExpectedResident)
	assert.Equal(t, int64(45), snap.Oracle.Gap)
	assert.Equal(t, int64(450), snap.Oracle.GapBytes)
	assert.InDelta(t, 0.9, snap.HitRate, 1e-9)
}

func TestSampler_OracleFailureIsPartial(t *testing.T) {
	t.Parallel()

	c := filled(t, 10)
	boom := errors.New("boom")
	o := &setOracle{resident: residentSet(1, 2), err: boom}
	s := NewSampler[int, int](o, Options{})

	snap := s.Sample(c, 0, 0)
	assert.Nil(t, snap.Oracle)
	assert.Equal(t, "boom", snap.OracleErr)
	assert.Equal(t, 2, snap.ResidentCardinality)

	// Malformed aggregates are dropped the same way.
	o.err = nil
	o.stats = GlobalStats{RegionCount: 1, RegionSizeBytes: 10, UsedBytes: 5, LiveBytes: 9}
	snap = s.Sample(c, 1, 0)
	assert.Nil(t, snap.Oracle)
	assert.Contains(t, snap.OracleErr, "live 9 > used 5")
	assert.Equal(t, 2, snap.StableResidentCardinality)
}

func TestSampler_NilOracle(t *testing.T) {
	t.Parallel()

	c := filled(t, 4)
	s := NewSampler[int, int](nil, Options{})
	snap := s.Sample(c, 0, 0)
	assert.Equal(t, 0, snap.ResidentCardinality)
	assert.Equal(t, ErrOracleUnavailable.Error(), snap.OracleErr)
}

func TestSampler_Elapsed(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	s := NewSampler[int, int](NopOracle[int]{}, Options{Now: clock})

	now = now.Add(3 * time.Second)
	snap := s.Sample(filled(t, 1), 0, 0)
	assert.Equal(t, 3*time.Second, snap.Elapsed)
	assert.Equal(t, 0, snap.Tick)
}

func TestGlobalStats_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats GlobalStats
		ok    bool
	}{
		{"zero", GlobalStats{}, true},
		{"valid", validStats(), true},
		{"negative", GlobalStats{UsedBytes: -1}, false},
		{"no region size", GlobalStats{RegionCount: 3}, false},
		{"overfull", GlobalStats{RegionCount: 1, RegionSizeBytes: 10, UsedBytes: 11}, false},
		{"freeable regions", GlobalStats{RegionCount: 1, RegionSizeBytes: 10, FreeableRegionCount: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stats.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedStats)
			}
		})
	}
}

func TestParseWindowRule(t *testing.T) {
	t.Parallel()

	for _, r := range []WindowRule{WindowMostRecent, WindowLeastRecent} {
		got, err := ParseWindowRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseWindowRule("sideways")
	assert.Error(t, err)
}
