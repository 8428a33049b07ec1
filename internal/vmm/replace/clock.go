package replace

import (
	"github.com/tuannm99/vmmsim/internal/vmm/frame"
	"github.com/tuannm99/vmmsim/pkg/clockx"
)

// ClockPolicy is the second-chance (CLOCK) algorithm, backed by pkg/clockx's
// hand sweep over frame indices.
type ClockPolicy struct {
	hand *clockx.Clock
}

func NewClock(capacity int) *ClockPolicy {
	return &ClockPolicy{hand: clockx.New(capacity)}
}

func (p *ClockPolicy) OnAllocate(idx int) { p.hand.Touch(idx) }

func (p *ClockPolicy) OnAccess(pool *frame.Pool, idx int) { p.hand.Touch(idx) }

func (p *ClockPolicy) OnFree(idx int) { p.hand.ClearRef(idx) }

func (p *ClockPolicy) SelectVictim(pool *frame.Pool) (int, error) {
	candidates := pool.Allocated()
	if len(candidates) == 0 {
		return -1, ErrNoVictim
	}
	idx, ok := p.hand.SelectVictim(candidates)
	if !ok {
		return -1, ErrNoVictim
	}
	return idx, nil
}

func (p *ClockPolicy) SetTrace(trace TraceSource, pos int) {}
func (p *ClockPolicy) SetPosition(pos int)                 { p.hand.SetPosition(pos) }
