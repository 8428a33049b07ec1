// Package ptable implements per-process page tables, in both the
// single-level (dense array) and two-level (1024-way L1 fan-out, lazily
// allocated L2) shapes described by the simulator's data model.
//
// Grounded on the C reference's pagetable.c/.h: the PTE flag bits, the
// lazy L2 allocation and the vpn-splitting arithmetic are carried over
// verbatim in meaning; the Go rendition expresses the two shapes as two
// internal layouts of one Table type rather than a tagged union, per the
// "polymorphism over policies" guidance applied uniformly across this
// module.
package ptable

import "errors"

var (
	// ErrOutOfRange is returned when a vpn falls outside the table's
	// addressable range.
	ErrOutOfRange = errors.New("ptable: vpn out of range")

	// ErrAllocFail is returned when a two-level table can't allocate an
	// L2 sub-table on demand.
	ErrAllocFail = errors.New("ptable: failed to allocate L2 sub-table")
)

// Flags is a PTE flag bitmask.
type Flags uint8

const (
	Valid Flags = 1 << iota
	Dirty
	Accessed
	Writable
	User
)

// Has reports whether all bits in want are set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// PTE is a single page-table entry. FrameNumber is only meaningful while
// Valid is set; SwapOffset is the backing swap slot plus one (0 means "not
// in swap") and survives Unmap for diagnostics.
type PTE struct {
	FrameNumber uint32
	Flags       Flags
	SwapOffset  uint32
}

func (e *PTE) IsValid() bool    { return e.Flags.Has(Valid) }
func (e *PTE) IsDirty() bool    { return e.Flags.Has(Dirty) }
func (e *PTE) IsAccessed() bool { return e.Flags.Has(Accessed) }

func (e *PTE) SetValid(v bool)    { e.setFlag(Valid, v) }
func (e *PTE) SetDirty(v bool)    { e.setFlag(Dirty, v) }
func (e *PTE) SetAccessed(v bool) { e.setFlag(Accessed, v) }

func (e *PTE) setFlag(bit Flags, v bool) {
	if v {
		e.Flags |= bit
	} else {
		e.Flags &^= bit
	}
}

// Shape selects a page table's internal layout.
type Shape int

const (
	SingleLevel Shape = iota
	TwoLevel
)

// l1Fanout is the fixed number of L1 slots in a two-level table.
const l1Fanout = 1024

// Table is a per-process virtual-page to physical-frame (or swap slot)
// map. Lookup never allocates; Map may, for two-level tables, lazily
// allocate the covering L2 sub-table.
type Table struct {
	pid       uint32
	shape     Shape
	numPages  uint64
	flat      []PTE   // SingleLevel
	l1        [][]PTE // TwoLevel: l1[i] is nil until first mapped through
}

// New creates a page table for pid covering addrSpace bytes of virtual
// address space at the given page size.
func New(pid uint32, shape Shape, addrSpace uint64, pageSize uint32) *Table {
	numPages := addrSpace / uint64(pageSize)
	t := &Table{pid: pid, shape: shape, numPages: numPages}
	switch shape {
	case SingleLevel:
		t.flat = make([]PTE, numPages)
	case TwoLevel:
		l2Count := (numPages + l1Fanout - 1) / l1Fanout
		t.l1 = make([][]PTE, l2Count)
	}
	return t
}

func splitVpn(vpn uint64) (l1, l2 uint64) {
	return (vpn >> 10) & 0x3FF, vpn & 0x3FF
}

// Lookup returns the PTE for vpn, or ok=false if vpn is out of range (or,
// for a two-level table, its L2 sub-table was never allocated).
func (t *Table) Lookup(vpn uint64) (*PTE, bool) {
	if vpn >= t.numPages {
		return nil, false
	}
	switch t.shape {
	case SingleLevel:
		return &t.flat[vpn], true
	default:
		l1, l2 := splitVpn(vpn)
		sub := t.l1[l1]
		if sub == nil {
			return nil, false
		}
		return &sub[l2], true
	}
}

// Map installs frame/flags|Valid at vpn, allocating the L2 sub-table on
// first use for two-level tables.
func (t *Table) Map(vpn uint64, frameNumber uint32, flags Flags) error {
	if vpn >= t.numPages {
		return ErrOutOfRange
	}
	var e *PTE
	switch t.shape {
	case SingleLevel:
		e = &t.flat[vpn]
	default:
		l1, l2 := splitVpn(vpn)
		if t.l1[l1] == nil {
			t.l1[l1] = make([]PTE, l1Fanout)
			if t.l1[l1] == nil {
				return ErrAllocFail
			}
		}
		e = &t.l1[l1][l2]
	}
	e.FrameNumber = frameNumber
	e.Flags = flags | Valid
	return nil
}

// Unmap clears the valid flag but preserves FrameNumber and SwapOffset for
// diagnostics.
func (t *Table) Unmap(vpn uint64) error {
	e, ok := t.Lookup(vpn)
	if !ok {
		return ErrOutOfRange
	}
	e.SetValid(false)
	return nil
}

// CountValid scans the table and returns the number of valid entries.
func (t *Table) CountValid() int {
	n := 0
	switch t.shape {
	case SingleLevel:
		for i := range t.flat {
			if t.flat[i].IsValid() {
				n++
			}
		}
	default:
		for _, sub := range t.l1 {
			if sub == nil {
				continue
			}
			for i := range sub {
				if sub[i].IsValid() {
					n++
				}
			}
		}
	}
	return n
}

// Pid returns the owning process id.
func (t *Table) Pid() uint32 { return t.pid }
