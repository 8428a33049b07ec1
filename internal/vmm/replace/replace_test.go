package replace

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuannm99/vmmsim/internal/vmm/frame"
)

func allocateN(t *testing.T, pool *frame.Pool, policy Policy, n int) []int {
	t.Helper()
	idxs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		idx, err := pool.Allocate()
		require.NoError(t, err)
		policy.OnAllocate(idx)
		idxs = append(idxs, idx)
	}
	return idxs
}

func TestFIFO_EvictsInAllocationOrder(t *testing.T) {
	pool := frame.NewPool(3)
	p := NewFIFO()
	idxs := allocateN(t, pool, p, 3)

	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[0], victim)
}

func TestFIFO_OnFreeRemovesFromQueue(t *testing.T) {
	pool := frame.NewPool(2)
	p := NewFIFO()
	idxs := allocateN(t, pool, p, 2)

	p.OnFree(idxs[0])
	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[1], victim)
}

func TestFIFO_EmptyPoolErrors(t *testing.T) {
	pool := frame.NewPool(1)
	p := NewFIFO()
	_, err := p.SelectVictim(pool)
	require.ErrorIs(t, err, ErrNoVictim)
}

func TestLRU_EvictsOldestAccess(t *testing.T) {
	tickNow := uint64(0)
	clock := func() uint64 { tickNow++; return tickNow }
	pool := frame.NewPoolWithClock(3, clock)
	p := NewLRU()
	idxs := allocateN(t, pool, p, 3)

	// Access frame 1 and 2 again through the policy, the real VMM's only
	// path to a hit on a resident page, leaving frame 0 the least recently
	// used.
	p.OnAccess(pool, idxs[1])
	p.OnAccess(pool, idxs[2])

	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[0], victim)
}

func TestAgingLRU_EvictsSmallestAge(t *testing.T) {
	pool := frame.NewPool(2)
	p := NewAgingLRU()
	idxs := allocateN(t, pool, p, 2)

	// Age once: both had Reference=true from Allocate, so both fold to
	// 0x80000000. Access idx[1] again through the policy before the next
	// age pass, the real VMM's only path to a hit on a resident page.
	pool.AgeAll()
	p.OnAccess(pool, idxs[1])
	pool.AgeAll()
	// idxs[0]: 0x80000000 >> 1 = 0x40000000 (no access, ref false this round)
	// idxs[1]: was accessed, ref true -> 0x40000000 | 0x80000000
	// So idxs[0] has the smaller age and should be evicted.
	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[0], victim)
}

func TestClockPolicy_SkipsReferencedFrames(t *testing.T) {
	pool := frame.NewPool(2)
	p := NewClock(2)
	idxs := allocateN(t, pool, p, 2)

	// Both frames were touched by OnAllocate; clear idxs[1]'s reference bit
	// so the hand, starting at idxs[0], must pass over the referenced
	// idxs[0] and pick idxs[1].
	p.hand.ClearRef(idxs[1])
	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[1], victim)
}

func TestClockPolicy_EmptyPoolErrors(t *testing.T) {
	pool := frame.NewPool(1)
	p := NewClock(1)
	_, err := p.SelectVictim(pool)
	require.ErrorIs(t, err, ErrNoVictim)
}

type fakeTrace struct {
	pids  []uint32
	addrs []uint64
}

func (f *fakeTrace) Len() int { return len(f.pids) }
func (f *fakeTrace) AddrAt(i int) (uint32, uint64, bool) {
	if i < 0 || i >= len(f.pids) {
		return 0, 0, false
	}
	return f.pids[i], f.addrs[i], true
}

func TestOPT_EvictsFarthestFutureUse(t *testing.T) {
	pool := frame.NewPool(2)
	p := NewOPT(4096)
	idxs := allocateN(t, pool, p, 2)
	require.NoError(t, pool.SetOwner(idxs[0], 1, 0)) // vpn 0
	require.NoError(t, pool.SetOwner(idxs[1], 1, 1)) // vpn 1

	// Future trace: vpn 1 (addr 4096) referenced immediately, vpn 0 never.
	trace := &fakeTrace{
		pids:  []uint32{1},
		addrs: []uint64{4096},
	}
	p.SetTrace(trace, 0)

	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[0], victim, "vpn 0 is never referenced again and must be evicted")
}

func TestOPT_NoTraceInstalledPicksFirstCandidate(t *testing.T) {
	pool := frame.NewPool(2)
	p := NewOPT(4096)
	idxs := allocateN(t, pool, p, 2)

	victim, err := p.SelectVictim(pool)
	require.NoError(t, err)
	require.Equal(t, idxs[0], victim)
}
