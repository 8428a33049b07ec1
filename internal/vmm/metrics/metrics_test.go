package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAccessSplitsReadsAndWrites(t *testing.T) {
	m := New()
	m.RecordAccess(1, false)
	m.RecordAccess(1, true)
	m.RecordAccess(2, false)

	require.Equal(t, uint64(3), m.TotalAccesses)
	require.Equal(t, uint64(2), m.TotalReads)
	require.Equal(t, uint64(1), m.TotalWrites)

	pm := m.Process(1)
	require.NotNil(t, pm)
	require.Equal(t, uint64(2), pm.TotalAccesses)
	require.Equal(t, uint64(1), pm.Reads)
	require.Equal(t, uint64(1), pm.Writes)
}

func TestMetrics_PageFaultSplitsMajorMinor(t *testing.T) {
	m := New()
	m.RecordPageFault(1, true)
	m.RecordPageFault(1, false)

	require.Equal(t, uint64(2), m.PageFaults)
	require.Equal(t, uint64(1), m.MajorFaults)
	require.Equal(t, uint64(1), m.MinorFaults)
	require.Equal(t, uint64(2), m.Process(1).PageFaults)
}

func TestMetrics_TLBHitRate(t *testing.T) {
	m := New()
	require.Equal(t, 0.0, m.TLBHitRate())

	m.RecordTLBHit(1)
	m.RecordTLBHit(1)
	m.RecordTLBMiss(1)

	require.InDelta(t, 2.0/3.0, m.TLBHitRate(), 1e-9)
}

func TestMetrics_PageFaultRateZeroAccesses(t *testing.T) {
	m := New()
	require.Equal(t, 0.0, m.PageFaultRate())
}

func TestMetrics_AvgMemoryAccessTime(t *testing.T) {
	m := New()
	for i := 0; i < 8; i++ {
		m.RecordAccess(1, false)
		m.RecordTLBHit(1)
	}
	m.RecordAccess(1, false)
	m.RecordTLBMiss(1)
	m.RecordPageFault(1, true)

	cfg := AccessTimeConfig{
		TLBHitTimeNS:       10,
		MemoryAccessTimeNS: 100,
		PageFaultTimeUS:    1000,
		SwapIOTimeUS:       5000,
	}
	amt := m.AvgMemoryAccessTime(cfg)
	// missRate = 1/9, faultRate = 1/9:
	// amt = 10 + (1/9)*100 + (1/9)*(1000*1000)
	want := 10.0 + (1.0/9.0)*100.0 + (1.0/9.0)*(1000.0*1000.0)
	require.InDelta(t, want, amt, 1e-9)
}

func TestMetrics_ProcessIDsFirstSeenOrder(t *testing.T) {
	m := New()
	m.RecordAccess(3, false)
	m.RecordAccess(1, false)
	m.RecordAccess(3, false)

	require.Equal(t, []uint32{3, 1}, m.ProcessIDs())
}
