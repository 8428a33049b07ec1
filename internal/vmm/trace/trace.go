// Package trace parses and generates reference traces: ordered sequences
// of (pid, op, address) memory accesses that drive the simulator.
//
// Grounded on the C reference's trace.c/trace_gen.c for the line format
// and the synthetic generation patterns (sequential, random, looping),
// reimplemented with an explicit *rand.Rand so no package-level random
// state exists, per the Design Notes' "global mutable state" guidance.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
)

var logPrefix = "trace: "

// Op is the kind of memory access a reference performs.
type Op byte

const (
	Read  Op = 'R'
	Write Op = 'W'
)

// Reference is one parsed trace line.
type Reference struct {
	Pid  uint32
	Op   Op
	Addr uint64
}

// Trace is an ordered, indexable sequence of references. Get returns
// (zero, false) out of range; the VMM core consumes it front to back and
// the OPT replacement policy looks ahead from the current position.
type Trace struct {
	refs []Reference
}

// New wraps an in-memory slice of references as a Trace.
func New(refs []Reference) *Trace {
	return &Trace{refs: refs}
}

// Count returns the number of references in the trace.
func (t *Trace) Count() int { return len(t.refs) }

// Get returns the reference at i, or ok=false if i is out of range.
func (t *Trace) Get(i int) (Reference, bool) {
	if i < 0 || i >= len(t.refs) {
		return Reference{}, false
	}
	return t.refs[i], true
}

// Len implements replace.TraceSource.
func (t *Trace) Len() int { return len(t.refs) }

// AddrAt implements replace.TraceSource.
func (t *Trace) AddrAt(i int) (pid uint32, addr uint64, ok bool) {
	r, ok := t.Get(i)
	if !ok {
		return 0, 0, false
	}
	return r.Pid, r.Addr, true
}

// Parse reads a line-oriented trace from r. Each non-empty line must be
// "<pid> <op> <addr>", where addr is decimal or 0x-prefixed hex and op is
// one of R/r/W/w (anything else is treated as a read). Lines that fail to
// parse are skipped silently, matching the original trace format's
// tolerance for stray or malformed lines.
func Parse(r io.Reader) *Trace {
	var refs []Reference
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ref, ok := parseLine(line)
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	return New(refs)
}

func parseLine(line string) (Reference, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Reference{}, false
	}
	pid, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Reference{}, false
	}
	op := Read
	switch fields[1] {
	case "W", "w":
		op = Write
	}
	addrStr := fields[2]
	base := 10
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		addrStr = addrStr[2:]
		base = 16
	}
	addr, err := strconv.ParseUint(addrStr, base, 64)
	if err != nil {
		return Reference{}, false
	}
	return Reference{Pid: uint32(pid), Op: op, Addr: addr}, true
}

// Pattern selects a synthetic generation strategy.
type Pattern int

const (
	Sequential Pattern = iota
	Random
	Looping
)

// GenerateConfig parameterizes synthetic trace generation.
type GenerateConfig struct {
	Pattern    Pattern
	Pid        uint32
	Count      int
	PageSize   uint32
	NumPages   uint64 // address space size, in pages
	LoopPages  uint64 // working-set size for Looping
	WriteRatio float64
}

// Generate produces a synthetic trace of cfg.Count references using rng
// for every random decision, so two calls with the same seed produce
// identical output.
func Generate(cfg GenerateConfig, rng *rand.Rand) *Trace {
	if cfg.NumPages == 0 {
		cfg.NumPages = 1
	}
	refs := make([]Reference, 0, cfg.Count)
	var vpn uint64
	for i := 0; i < cfg.Count; i++ {
		switch cfg.Pattern {
		case Sequential:
			vpn = uint64(i) % cfg.NumPages
		case Looping:
			span := cfg.LoopPages
			if span == 0 || span > cfg.NumPages {
				span = cfg.NumPages
			}
			vpn = uint64(i) % span
		default: // Random
			vpn = rng.Uint64() % cfg.NumPages
		}
		op := Read
		if rng.Float64() < cfg.WriteRatio {
			op = Write
		}
		refs = append(refs, Reference{
			Pid:  cfg.Pid,
			Op:   op,
			Addr: vpn * uint64(cfg.PageSize),
		})
	}
	slog.Debug(logPrefix+"generated trace", "pattern", cfg.Pattern, "count", len(refs))
	return New(refs)
}

// String renders a reference in the trace file's own line format, for
// diagnostics and for writing generated traces back out to a file.
func (r Reference) String() string {
	return fmt.Sprintf("%d %c 0x%x", r.Pid, rune(r.Op), r.Addr)
}
