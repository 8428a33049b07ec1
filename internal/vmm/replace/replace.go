// Package replace implements the five interchangeable page-replacement
// policies (FIFO, exact LRU, approximate/aging LRU, CLOCK, OPT) behind one
// Policy interface, so the VMM core can swap algorithms without caring
// which one is active.
//
// Grounded on the C reference's replacement.c for the victim-selection
// algorithms themselves, and on internal/bufferpool's Replacer interface
// shape (an OnAllocate/OnAccess/OnFree/SelectVictim split mirrors its
// RecordAccess/SetEvictable/Evict/Remove) generalized from buffer-pool
// pages to VMM frames.
package replace

import (
	"errors"

	"github.com/tuannm99/vmmsim/internal/vmm/frame"
)

// ErrNoVictim is returned by SelectVictim when there is no allocated frame
// to evict (an empty pool).
var ErrNoVictim = errors.New("replace: no victim available")

// Kind names one of the five supported policies.
type Kind int

const (
	FIFO Kind = iota
	LRU
	AgingLRU
	Clock
	OPT
)

// TraceSource is the minimal view of a reference trace the OPT policy
// needs to look ahead: the total number of references, and the (pid,
// addr) pair at a given position. internal/vmm/trace.Trace satisfies this.
type TraceSource interface {
	Len() int
	AddrAt(i int) (pid uint32, addr uint64, ok bool)
}

// Policy is the uniform interface every replacement algorithm implements.
// OnAllocate/OnAccess/OnFree keep a policy's private bookkeeping in sync
// with the frame pool; SelectVictim never mutates the pool itself — the
// caller frees or reassigns the returned frame.
type Policy interface {
	// SelectVictim picks a frame to evict among pool's allocated frames.
	SelectVictim(pool *frame.Pool) (int, error)
	// OnAllocate notifies the policy that idx was just allocated.
	OnAllocate(idx int)
	// OnAccess notifies the policy that idx was just referenced again,
	// e.g. on a TLB or page-table hit. pool is supplied so LRU and
	// AgingLRU can stamp the frame's LastAccess/Reference state, which
	// otherwise only ever happens at fault time.
	OnAccess(pool *frame.Pool, idx int)
	// OnFree notifies the policy that idx was returned to the free pool.
	OnFree(idx int)
	// SetTrace installs the lookahead source and current position used by
	// OPT. It is a no-op for every other policy.
	SetTrace(trace TraceSource, pos int)
	// SetPosition updates the current trace position used by OPT's
	// lookahead, or the CLOCK hand's diagnostic position. A no-op for
	// FIFO/LRU/AgingLRU.
	SetPosition(pos int)
}

// New constructs the named policy. capacity sizes the CLOCK hand;
// pageSize is used by OPT to convert trace addresses to page numbers.
func New(kind Kind, capacity int, pageSize uint32) Policy {
	switch kind {
	case FIFO:
		return NewFIFO()
	case LRU:
		return NewLRU()
	case AgingLRU:
		return NewAgingLRU()
	case Clock:
		return NewClock(capacity)
	case OPT:
		return NewOPT(pageSize)
	default:
		return NewFIFO()
	}
}

func oldestBy(pool *frame.Pool, less func(a, b *frame.Frame) bool) (int, error) {
	candidates := pool.Allocated()
	if len(candidates) == 0 {
		return -1, ErrNoVictim
	}
	victim := candidates[0]
	vf, _ := pool.Get(victim)
	for _, idx := range candidates[1:] {
		f, _ := pool.Get(idx)
		if less(f, vf) {
			victim = idx
			vf = f
		}
	}
	return victim, nil
}
