package gcage

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle_Tenure(t *testing.T) {
	o := New(2)

	old := o.Fabricate(64)
	require.Len(t, old, 64)

	runtime.GC()
	runtime.GC()
	o.BeginTick()

	young := o.Fabricate(64)
	assert.True(t, o.IsResident(old), "payload survived two cycles")
	assert.False(t, o.IsResident(young), "fresh payload")

	runtime.KeepAlive(old)
}

func TestOracle_ShortPayload(t *testing.T) {
	o := New(1)
	tiny := o.Fabricate(StampSize - 1)
	runtime.GC()
	runtime.GC()
	o.BeginTick()
	assert.False(t, o.IsResident(tiny))
	assert.False(t, o.IsResident(nil))
}

// A stamp from the future (cycle count read after BeginTick) is not resident.
func TestOracle_FutureStamp(t *testing.T) {
	o := New(1)
	o.BeginTick()
	runtime.GC()
	v := o.Fabricate(16)
	assert.False(t, o.IsResident(v))
}

func TestOracle_DefaultTenure(t *testing.T) {
	o := New(0)
	assert.Equal(t, uint64(DefaultTenureCycles), o.tenure)
}

func TestOracle_GlobalStats(t *testing.T) {
	o := New(1)
	keep := make([][]byte, 0, 256)
	for i := 0; i < 256; i++ {
		keep = append(keep, o.Fabricate(4096))
	}
	runtime.GC()

	g, err := o.GlobalStats()
	require.NoError(t, err)
	assert.NoError(t, g.Validate())
	assert.Equal(t, int64(PageSize), g.RegionSizeBytes)
	assert.Positive(t, g.RegionCount)
	assert.GreaterOrEqual(t, g.UsedBytes, int64(256*4096))
	assert.LessOrEqual(t, g.LiveBytes, g.UsedBytes)
	assert.Equal(t, g.UsedBytes-g.LiveBytes, g.FreeableBytes)

	runtime.KeepAlive(keep)
}
