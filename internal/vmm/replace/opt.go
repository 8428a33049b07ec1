package replace

import "github.com/tuannm99/vmmsim/internal/vmm/frame"

// OptPolicy is Belady's optimal algorithm: it evicts the allocated frame
// whose page is referenced farthest in the future (or never again). It
// requires a lookahead trace, installed via SetTrace, and a page size to
// convert trace addresses to page numbers — unlike the C reference, which
// hardcodes a 4096-byte page for this conversion, this divides by the
// simulator's actual configured page size.
type OptPolicy struct {
	pageSize uint64
	trace    TraceSource
	pos      int
}

func NewOPT(pageSize uint32) *OptPolicy {
	if pageSize == 0 {
		pageSize = 1
	}
	return &OptPolicy{pageSize: uint64(pageSize)}
}

func (p *OptPolicy) OnAllocate(idx int)                 {}
func (p *OptPolicy) OnAccess(pool *frame.Pool, idx int) {}
func (p *OptPolicy) OnFree(idx int)                     {}

func (p *OptPolicy) SetTrace(trace TraceSource, pos int) {
	p.trace = trace
	p.pos = pos
}

func (p *OptPolicy) SetPosition(pos int) { p.pos = pos }

func (p *OptPolicy) SelectVictim(pool *frame.Pool) (int, error) {
	candidates := pool.Allocated()
	if len(candidates) == 0 {
		return -1, ErrNoVictim
	}

	victim := -1
	farthest := -1
	for _, idx := range candidates {
		f, _ := pool.Get(idx)
		dist := p.nextUseDistance(f.Pid, f.Vpn)
		if dist > farthest {
			farthest = dist
			victim = idx
		}
	}
	if victim < 0 {
		return -1, ErrNoVictim
	}
	return victim, nil
}

// nextUseDistance returns how many references from p.pos until (pid, vpn)
// is referenced again, len(trace)-p.pos+1 (effectively infinite) if it
// never is, or 0 if no trace is installed.
func (p *OptPolicy) nextUseDistance(pid uint32, vpn uint64) int {
	if p.trace == nil {
		return 0
	}
	n := p.trace.Len()
	for i := p.pos; i < n; i++ {
		refPid, addr, ok := p.trace.AddrAt(i)
		if !ok {
			continue
		}
		if refPid == pid && addr/p.pageSize == vpn {
			return i - p.pos
		}
	}
	return n - p.pos + 1
}
