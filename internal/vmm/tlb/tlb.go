// Package tlb simulates a fully associative translation lookaside buffer
// tagged by (pid, vpn), with FIFO or LRU eviction.
//
// Grounded on the C reference's tlb.c/.h for the eviction and bookkeeping
// rules (an access counter drives LRU recency, a single fifoNext slot
// drives FIFO) and on pkg/cache's recency list for the RecencyOrder
// diagnostic, which mirrors the C original's absence of any such view but
// is a natural place to exercise that package from this domain.
package tlb

import (
	"container/list"
	"log/slog"

	"github.com/tuannm99/vmmsim/pkg/cache"
)

var logPrefix = "tlb: "

// Policy selects the TLB's eviction discipline.
type Policy int

const (
	FIFO Policy = iota
	LRU
)

// entry is one TLB slot.
type entry struct {
	valid   bool
	pid     uint32
	vpn     uint64
	frame   uint32
	lastUse uint64
	elem    *list.Element // this slot's node in the recency list, or nil
}

// TLB is a fixed-size, fully associative translation cache.
type TLB struct {
	entries  []entry
	policy   Policy
	fifoNext int
	counter  uint64
	recency  *cache.LRUManager
}

// New creates a TLB with the given number of entries and eviction policy.
// size must be > 0.
func New(size int, policy Policy) *TLB {
	if size <= 0 {
		size = 1
	}
	return &TLB{
		entries: make([]entry, size),
		policy:  policy,
		recency: cache.NewLRUManager(),
	}
}

func (t *TLB) find(pid uint32, vpn uint64) int {
	for i := range t.entries {
		if t.entries[i].valid && t.entries[i].pid == pid && t.entries[i].vpn == vpn {
			return i
		}
	}
	return -1
}

func (t *TLB) touchRecency(idx int) {
	e := &t.entries[idx]
	if e.elem == nil {
		e.elem = t.recency.PushFront(idx)
	} else {
		t.recency.MoveToFront(e.elem)
	}
}

// Lookup returns the frame number mapped to (pid, vpn), or ok=false on a
// miss. Under LRU, a hit bumps the entry's recency.
func (t *TLB) Lookup(pid uint32, vpn uint64) (frame uint32, ok bool) {
	idx := t.find(pid, vpn)
	if idx < 0 {
		slog.Debug(logPrefix+"miss", "pid", pid, "vpn", vpn)
		return 0, false
	}
	e := &t.entries[idx]
	if t.policy == LRU {
		e.lastUse = t.counter
		t.counter++
	}
	t.touchRecency(idx)
	slog.Debug(logPrefix+"hit", "pid", pid, "vpn", vpn, "frame", e.frame)
	return e.frame, true
}

// Insert installs (pid, vpn) -> frame, updating an existing entry in place
// or evicting a victim per the configured policy. Insert always bumps
// recency for the written slot.
func (t *TLB) Insert(pid uint32, vpn uint64, frame uint32) {
	if idx := t.find(pid, vpn); idx >= 0 {
		e := &t.entries[idx]
		e.frame = frame
		if t.policy == LRU {
			e.lastUse = t.counter
			t.counter++
		}
		t.touchRecency(idx)
		return
	}

	victim := t.selectVictim()
	e := &t.entries[victim]
	e.valid = true
	e.pid = pid
	e.vpn = vpn
	e.frame = frame
	e.lastUse = t.counter
	t.counter++
	t.touchRecency(victim)
	slog.Debug(logPrefix+"insert", "pid", pid, "vpn", vpn, "frame", frame, "slot", victim)
}

func (t *TLB) selectVictim() int {
	if t.policy == FIFO {
		v := t.fifoNext
		t.fifoNext = (t.fifoNext + 1) % len(t.entries)
		return v
	}
	// LRU: first invalid slot, else the slot with minimum last-use.
	minIdx := 0
	var minTime uint64 = ^uint64(0)
	for i := range t.entries {
		if !t.entries[i].valid {
			return i
		}
		if t.entries[i].lastUse < minTime {
			minTime = t.entries[i].lastUse
			minIdx = i
		}
	}
	return minIdx
}

// Invalidate clears the entry for (pid, vpn), a no-op if absent.
func (t *TLB) Invalidate(pid uint32, vpn uint64) {
	idx := t.find(pid, vpn)
	if idx < 0 {
		return
	}
	t.clearSlot(idx)
}

// InvalidateAll clears every entry belonging to pid.
func (t *TLB) InvalidateAll(pid uint32) {
	count := 0
	for i := range t.entries {
		if t.entries[i].valid && t.entries[i].pid == pid {
			t.clearSlot(i)
			count++
		}
	}
	slog.Debug(logPrefix+"invalidate-all", "pid", pid, "count", count)
}

// Flush clears every entry.
func (t *TLB) Flush() {
	for i := range t.entries {
		t.clearSlot(i)
	}
	t.fifoNext = 0
}

func (t *TLB) clearSlot(idx int) {
	e := &t.entries[idx]
	if e.elem != nil {
		t.recency.Remove(e.elem)
	}
	*e = entry{}
}

// RecencyOrder returns the (pid, vpn) pairs of valid entries ordered from
// most- to least-recently touched (lookup or insert).
func (t *TLB) RecencyOrder() []struct {
	Pid uint32
	Vpn uint64
} {
	vals := t.recency.Values()
	out := make([]struct {
		Pid uint32
		Vpn uint64
	}, 0, len(vals))
	for _, v := range vals {
		idx := v.(int)
		e := &t.entries[idx]
		if e.valid {
			out = append(out, struct {
				Pid uint32
				Vpn uint64
			}{e.pid, e.vpn})
		}
	}
	return out
}
