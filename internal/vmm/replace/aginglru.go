package replace

import "github.com/tuannm99/vmmsim/internal/vmm/frame"

// AgingLruPolicy approximates LRU with a 32-bit aging counter:
// the VMM core periodically calls Pool.AgeAll, which shifts every frame's
// Age right and folds in its reference bit. The frame with the smallest
// Age value has gone the longest without being referenced.
type AgingLruPolicy struct{}

func NewAgingLRU() *AgingLruPolicy { return &AgingLruPolicy{} }

func (p *AgingLruPolicy) OnAllocate(idx int) {}

// OnAccess sets the frame's reference bit, per §4.5's "APPROX_LRU:
// On-access → Set reference bit." The next AgeAll then folds it into the
// age counter; without this call, a resident page that's hit repeatedly
// but never faults would never refresh its reference bit and would age
// out as if untouched.
func (p *AgingLruPolicy) OnAccess(pool *frame.Pool, idx int) { _ = pool.SetReference(idx, true) }

func (p *AgingLruPolicy) OnFree(idx int) {}

func (p *AgingLruPolicy) SelectVictim(pool *frame.Pool) (int, error) {
	return oldestBy(pool, func(a, b *frame.Frame) bool {
		return a.Age < b.Age
	})
}

func (p *AgingLruPolicy) SetTrace(trace TraceSource, pos int) {}
func (p *AgingLruPolicy) SetPosition(pos int)                 {}
