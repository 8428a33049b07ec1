package replace

import "github.com/tuannm99/vmmsim/internal/vmm/frame"

// LruPolicy evicts the allocated frame with the oldest LastAccess stamp,
// exact LRU. It carries no private state: the frame pool's own
// per-frame LastAccess field is the source of truth, stamped by
// Pool.Touch at allocation time and again on every OnAccess.
type LruPolicy struct{}

func NewLRU() *LruPolicy { return &LruPolicy{} }

func (p *LruPolicy) OnAllocate(idx int) {}

// OnAccess stamps the frame's access time, per §4.5's "LRU: On-access →
// stamp access time on the frame" — without this, a frame that is hit
// repeatedly (TLB or page-table hit, no fault) would keep the stale
// LastAccess from its original fault and look like the oldest entry.
func (p *LruPolicy) OnAccess(pool *frame.Pool, idx int) { _ = pool.Touch(idx) }

func (p *LruPolicy) OnFree(idx int) {}

func (p *LruPolicy) SelectVictim(pool *frame.Pool) (int, error) {
	return oldestBy(pool, func(a, b *frame.Frame) bool {
		return a.LastAccess < b.LastAccess
	})
}

func (p *LruPolicy) SetTrace(trace TraceSource, pos int) {}
func (p *LruPolicy) SetPosition(pos int)                 {}
