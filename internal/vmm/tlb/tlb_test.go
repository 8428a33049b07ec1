package tlb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLB_InsertThenLookup(t *testing.T) {
	tl := New(4, LRU)
	tl.Insert(1, 0x0, 7)

	frame, ok := tl.Lookup(1, 0x0)
	require.True(t, ok)
	require.Equal(t, uint32(7), frame)
}

func TestTLB_MissForDifferentProcess(t *testing.T) {
	tl := New(4, LRU)
	tl.Insert(1, 0x0, 7)

	_, ok := tl.Lookup(2, 0x0)
	require.False(t, ok, "TLB is tagged by pid; a different process must miss")
}

func TestTLB_InvalidateClears(t *testing.T) {
	tl := New(4, LRU)
	tl.Insert(1, 0x0, 7)
	tl.Invalidate(1, 0x0)

	_, ok := tl.Lookup(1, 0x0)
	require.False(t, ok)
}

func TestTLB_FIFOEvictsInInsertionOrder(t *testing.T) {
	tl := New(2, FIFO)
	tl.Insert(1, 0, 0)
	tl.Insert(1, 1, 1)
	// Both slots full; next insert evicts slot 0 (first inserted).
	tl.Insert(1, 2, 2)

	_, ok := tl.Lookup(1, 0)
	require.False(t, ok, "FIFO must evict the first-inserted entry")
	_, ok = tl.Lookup(1, 1)
	require.True(t, ok)
	_, ok = tl.Lookup(1, 2)
	require.True(t, ok)
}

func TestTLB_LRUEvictsLeastRecentlyUsed(t *testing.T) {
	tl := New(2, LRU)
	tl.Insert(1, 0, 0)
	tl.Insert(1, 1, 1)
	// Touch vpn 0 so vpn 1 becomes the least recently used.
	_, _ = tl.Lookup(1, 0)
	tl.Insert(1, 2, 2)

	_, ok := tl.Lookup(1, 1)
	require.False(t, ok, "LRU must evict the least recently used entry")
	_, ok = tl.Lookup(1, 0)
	require.True(t, ok)
}

func TestTLB_InvalidateAllClearsOnlyThatPid(t *testing.T) {
	tl := New(4, LRU)
	tl.Insert(1, 0, 0)
	tl.Insert(2, 0, 1)
	tl.InvalidateAll(1)

	_, ok := tl.Lookup(1, 0)
	require.False(t, ok)
	_, ok = tl.Lookup(2, 0)
	require.True(t, ok)
}

func TestTLB_RecencyOrderMostRecentFirst(t *testing.T) {
	tl := New(4, LRU)
	tl.Insert(1, 0, 0)
	tl.Insert(1, 1, 1)
	tl.Insert(1, 2, 2)
	_, _ = tl.Lookup(1, 0)

	order := tl.RecencyOrder()
	require.Equal(t, uint64(0), order[0].Vpn)
}
