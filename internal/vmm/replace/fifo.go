package replace

import "github.com/tuannm99/vmmsim/internal/vmm/frame"

// FifoPolicy evicts frames in allocation order. Its queue is sized to the
// actual number of allocated frames rather than a fixed ring, so it never
// silently drops entries once more frames are allocated than some
// hardcoded bound.
type FifoPolicy struct {
	queue []int
}

func NewFIFO() *FifoPolicy {
	return &FifoPolicy{}
}

func (p *FifoPolicy) OnAllocate(idx int) {
	p.queue = append(p.queue, idx)
}

func (p *FifoPolicy) OnAccess(pool *frame.Pool, idx int) {}

func (p *FifoPolicy) OnFree(idx int) {
	for i, v := range p.queue {
		if v == idx {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

func (p *FifoPolicy) SelectVictim(pool *frame.Pool) (int, error) {
	if len(p.queue) == 0 {
		return -1, ErrNoVictim
	}
	return p.queue[0], nil
}

func (p *FifoPolicy) SetTrace(trace TraceSource, pos int) {}
func (p *FifoPolicy) SetPosition(pos int)                 {}
