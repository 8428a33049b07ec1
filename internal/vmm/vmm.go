// Package vmm is the simulator core: it owns the frame pool, TLB, swap
// store, replacement policy, metrics and the set of process descriptors,
// and drives the per-reference address-translation and page-fault
// pipeline.
//
// Grounded on the C reference's vmm.c (vmm_create, vmm_add_process,
// vmm_handle_page_fault, vmm_access, vmm_run_trace) for the pipeline's
// exact step order; the subsystems it orchestrates are internal/vmm's
// sibling packages.
package vmm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuannm99/vmmsim/internal/vmm/frame"
	"github.com/tuannm99/vmmsim/internal/vmm/metrics"
	"github.com/tuannm99/vmmsim/internal/vmm/ptable"
	"github.com/tuannm99/vmmsim/internal/vmm/replace"
	"github.com/tuannm99/vmmsim/internal/vmm/swapstore"
	"github.com/tuannm99/vmmsim/internal/vmm/tlb"
	"github.com/tuannm99/vmmsim/internal/vmm/trace"
)

var logPrefix = "vmm: "

var (
	// ErrInvalidConfig is returned by Config.Validate (and so by New) when a configuration
	// invariant is violated (non-power-of-two page size, zero TLB size).
	ErrInvalidConfig = errors.New("vmm: invalid configuration")

	// ErrMaxProcesses is returned when a reference arrives from a new pid
	// after the process table is already full.
	ErrMaxProcesses = errors.New("vmm: max process count reached")

	// ErrInvalidAddress is returned when a vpn falls outside the
	// referencing process's address space.
	ErrInvalidAddress = errors.New("vmm: virtual address out of range")
)

// AgeInterval is how many references pass between automatic AgeAll calls,
// used by the APPROX_LRU policy.
const AgeInterval = 1000

// Config bootstraps a VMM instance. All byte-sized fields are in bytes.
type Config struct {
	RAMBytes     uint64
	PageSize     uint32
	SwapBytes    uint64
	VSpaceBytes  uint64
	Algorithm    replace.Kind
	TLBSize      int
	TLBPolicy    tlb.Policy
	PTShape      ptable.Shape
	MaxProcesses int
}

// Validate rejects the configuration errors the bootstrap must catch
// before the first reference is ever processed.
func (c Config) Validate() error {
	if c.PageSize == 0 || c.PageSize&(c.PageSize-1) != 0 {
		return fmt.Errorf("%w: page size must be a power of two", ErrInvalidConfig)
	}
	if c.TLBSize <= 0 {
		return fmt.Errorf("%w: tlb size must be > 0", ErrInvalidConfig)
	}
	return nil
}

func (c Config) frameCount() int {
	n := int(c.RAMBytes / uint64(c.PageSize))
	if n <= 0 {
		n = 1
	}
	return n
}

func (c Config) swapSlots() int {
	n := int(c.SwapBytes / uint64(c.PageSize))
	if n < 0 {
		n = 0
	}
	return n
}

// Process is a simulated process: its pid and its page table.
type Process struct {
	Pid    uint32
	Table  *ptable.Table
	Active bool
}

// VMM owns every subsystem and drives the per-reference pipeline.
type VMM struct {
	cfg       Config
	frames    *frame.Pool
	tlbCache  *tlb.TLB
	swap      *swapstore.Store
	policy    replace.Policy
	metrics   *metrics.Metrics
	processes map[uint32]*Process
	order     []uint32
	tick      uint64
	refIndex  int
}

// New validates cfg and constructs a VMM with all subsystems wired.
func New(cfg Config) (*VMM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	frameCount := cfg.frameCount()
	v := &VMM{
		cfg:       cfg,
		processes: make(map[uint32]*Process),
	}
	v.frames = frame.NewPoolWithClock(frameCount, v.now)
	v.tlbCache = tlb.New(cfg.TLBSize, cfg.TLBPolicy)
	v.swap = swapstore.New(cfg.swapSlots())
	v.policy = replace.New(cfg.Algorithm, frameCount, cfg.PageSize)
	v.metrics = metrics.New()
	slog.Info(logPrefix+"created", "frames", frameCount, "swap_slots", cfg.swapSlots(), "algorithm", cfg.Algorithm)
	return v, nil
}

func (v *VMM) now() uint64 {
	v.tick++
	return v.tick
}

// Metrics exposes the accumulated counters, for reporting.
func (v *VMM) Metrics() *metrics.Metrics { return v.metrics }

func (v *VMM) getOrCreateProcess(pid uint32) (*Process, error) {
	if p, ok := v.processes[pid]; ok {
		return p, nil
	}
	if v.cfg.MaxProcesses > 0 && len(v.processes) >= v.cfg.MaxProcesses {
		return nil, ErrMaxProcesses
	}
	p := &Process{
		Pid:    pid,
		Table:  ptable.New(pid, v.cfg.PTShape, v.cfg.VSpaceBytes, v.cfg.PageSize),
		Active: true,
	}
	v.processes[pid] = p
	v.order = append(v.order, pid)
	slog.Debug(logPrefix+"new process", "pid", pid)
	return p, nil
}

// Access runs the full per-reference pipeline for one memory access:
// metrics → TLB lookup → (hit path) or (TLB miss → page table lookup →
// fault handler if needed → TLB install).
func (v *VMM) Access(pid uint32, addr uint64, isWrite bool) error {
	proc, err := v.getOrCreateProcess(pid)
	if err != nil {
		return err
	}

	v.metrics.RecordAccess(pid, isWrite)
	vpn := addr / uint64(v.cfg.PageSize)

	if frameNo, ok := v.tlbCache.Lookup(pid, vpn); ok {
		v.metrics.RecordTLBHit(pid)
		v.policy.OnAccess(v.frames, int(frameNo))
		if isWrite {
			v.markDirty(proc, vpn, int(frameNo))
		}
		return nil
	}

	v.metrics.RecordTLBMiss(pid)
	pte, ok := proc.Table.Lookup(vpn)
	if !ok {
		return ErrInvalidAddress
	}

	if pte.IsValid() {
		v.tlbCache.Insert(pid, vpn, pte.FrameNumber)
		v.policy.OnAccess(v.frames, int(pte.FrameNumber))
		if isWrite {
			v.markDirty(proc, vpn, int(pte.FrameNumber))
		}
		return nil
	}

	frameNo, err := v.handlePageFault(pid, proc, vpn, isWrite)
	if err != nil {
		return err
	}
	v.tlbCache.Insert(pid, vpn, uint32(frameNo))
	return nil
}

func (v *VMM) markDirty(proc *Process, vpn uint64, frameNo int) {
	_ = v.frames.SetDirty(frameNo, true)
	if pte, ok := proc.Table.Lookup(vpn); ok {
		pte.SetDirty(true)
	}
}

// handlePageFault implements §4.6's steps 1-6 and returns the frame that
// now holds the faulting page.
func (v *VMM) handlePageFault(pid uint32, proc *Process, vpn uint64, isWrite bool) (int, error) {
	pte, ok := proc.Table.Lookup(vpn)
	if !ok {
		return 0, ErrInvalidAddress
	}

	frameIdx, err := v.frames.Allocate()
	if err != nil {
		victimIdx, verr := v.policy.SelectVictim(v.frames)
		if verr != nil {
			return 0, verr
		}
		v.evictVictim(victimIdx)
		frameIdx, err = v.frames.Allocate()
		if err != nil {
			return 0, err
		}
	}

	major := pte.SwapOffset != 0
	if major {
		slot := int(pte.SwapOffset) - 1
		v.swap.SwapIn(slot)
		v.metrics.RecordSwapIn()
		v.swap.Free(slot)
		pte.SwapOffset = 0
	}

	flags := ptable.Valid | ptable.User
	if isWrite {
		flags |= ptable.Writable
	}
	if err := proc.Table.Map(vpn, uint32(frameIdx), flags); err != nil {
		return 0, err
	}
	_ = v.frames.SetOwner(frameIdx, pid, vpn)
	_ = v.frames.SetDirty(frameIdx, isWrite)
	_ = v.frames.Touch(frameIdx)
	v.policy.OnAllocate(frameIdx)

	v.metrics.RecordPageFault(pid, major)
	return frameIdx, nil
}

// evictVictim implements §4.6 step 3: find the victim's owner, swap out
// if dirty, invalidate its PTE and TLB entry, then free the frame.
func (v *VMM) evictVictim(victimIdx int) {
	vf, err := v.frames.Get(victimIdx)
	if err != nil {
		return
	}
	if victimProc, ok := v.processes[vf.Pid]; ok {
		if vpte, ok := victimProc.Table.Lookup(vf.Vpn); ok {
			if vf.Dirty {
				slot, aerr := v.swap.Allocate(vf.Pid, vf.Vpn)
				if aerr == nil {
					v.swap.SwapOut(slot)
					v.metrics.RecordSwapOut()
					// Stored as slot+1 so that 0 keeps meaning "not in swap".
					vpte.SwapOffset = uint32(slot) + 1
				} else {
					slog.Warn(logPrefix+"swap exhausted, dropping dirty page", "pid", vf.Pid, "vpn", vf.Vpn)
				}
			}
			vpte.SetValid(false)
		}
		v.tlbCache.Invalidate(vf.Pid, vf.Vpn)
	}
	v.metrics.RecordReplacement()
	v.policy.OnFree(victimIdx)
	_ = v.frames.Free(victimIdx)
}

// RemoveProcess tears down a finished process: it invalidates every TLB
// entry tagged with its pid and returns its still-resident frames to the
// pool. Not part of the original C reference, which never retires a
// process mid-run; added so a long-lived simulation can reclaim memory
// from processes it knows have exited.
func (v *VMM) RemoveProcess(pid uint32) {
	proc, ok := v.processes[pid]
	if !ok {
		return
	}
	for _, idx := range v.frames.Allocated() {
		f, _ := v.frames.Get(idx)
		if f.Pid == pid {
			v.policy.OnFree(idx)
			_ = v.frames.Free(idx)
		}
	}
	v.tlbCache.InvalidateAll(pid)
	proc.Active = false
	delete(v.processes, pid)
	slog.Debug(logPrefix+"removed process", "pid", pid)
}

// RunTrace drives every reference in tr through Access in order, calling
// progress(done, total) after each one if non-nil, and running AgeAll
// every AgeInterval references. A single reference's failure is logged
// and skipped; the loop itself never aborts early except via maxAccesses.
func (v *VMM) RunTrace(tr *trace.Trace, maxAccesses uint64, progress func(done, total uint64)) {
	total := uint64(tr.Count())
	if maxAccesses > 0 && maxAccesses < total {
		total = maxAccesses
	}

	v.policy.SetTrace(tr, 0)
	v.metrics.StartSimulation(v.now())

	var done uint64
	for i := 0; uint64(i) < total; i++ {
		ref, ok := tr.Get(i)
		if !ok {
			continue
		}
		v.refIndex = i
		v.policy.SetPosition(i)

		if err := v.Access(ref.Pid, ref.Addr, ref.Op == trace.Write); err != nil {
			slog.Warn(logPrefix+"reference failed, skipping", "pid", ref.Pid, "addr", ref.Addr, "err", err)
		}

		done++
		if done%AgeInterval == 0 {
			v.frames.AgeAll()
		}
		if progress != nil {
			progress(done, total)
		}
	}

	v.metrics.EndSimulation(v.now())
}
