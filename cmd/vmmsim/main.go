// Command vmmsim runs the virtual-memory-manager simulator against a
// reference trace and reports fault/TLB/swap statistics.
//
// Grounded on cmd/server/main.go's flag-parse-then-run(sc) shape, with
// flag.StringVar swapped for pflag's POSIX-style short/long flags (the
// rest of the pack leans on pflag+viper for CLI surfaces) and
// log.Fatalf's fatal-at-boundary posture kept for config and I/O errors.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tuannm99/vmmsim/internal/config"
	"github.com/tuannm99/vmmsim/internal/output"
	"github.com/tuannm99/vmmsim/internal/vmm"
	"github.com/tuannm99/vmmsim/internal/vmm/metrics"
	"github.com/tuannm99/vmmsim/internal/vmm/ptable"
	"github.com/tuannm99/vmmsim/internal/vmm/replace"
	"github.com/tuannm99/vmmsim/internal/vmm/tlb"
	"github.com/tuannm99/vmmsim/internal/vmm/trace"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("vmmsim: run failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (config.Config, error) {
	cfg := config.Default()
	fs := pflag.NewFlagSet("vmmsim", pflag.ContinueOnError)

	fs.StringVarP(&cfg.TracePath, "trace", "t", "", "path to the reference trace file (required)")
	fs.IntVarP(&cfg.RAMMB, "ram", "r", cfg.RAMMB, "physical RAM size, in MB")
	fs.IntVarP(&cfg.PageSize, "page-size", "p", cfg.PageSize, "page size in bytes, must be a power of two")
	fs.IntVarP(&cfg.SwapMB, "swap", "s", cfg.SwapMB, "swap store size, in MB")
	fs.IntVarP(&cfg.VSpaceMB, "vspace", "v", cfg.VSpaceMB, "per-process virtual address space, in MB")
	fs.StringVarP(&cfg.Algorithm, "algorithm", "a", cfg.Algorithm, "replacement policy: FIFO, LRU, APPROX_LRU, CLOCK, OPT")
	fs.IntVarP(&cfg.TLBSize, "tlb-size", "T", cfg.TLBSize, "number of TLB entries")
	fs.StringVar(&cfg.TLBPolicy, "tlb-policy", cfg.TLBPolicy, "TLB eviction policy: FIFO, LRU")
	fs.StringVar(&cfg.PTType, "pt-type", cfg.PTType, "page table shape: SINGLE, TWO_LEVEL")
	fs.Uint64VarP(&cfg.MaxAccesses, "max-accesses", "n", 0, "stop after this many references (0 = run the whole trace)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "PRNG seed, used only by synthetic trace generation")
	fs.StringVarP(&cfg.OutputPath, "output", "o", "", "write a JSON summary to this path")
	fs.StringVar(&cfg.CSVPath, "csv", "", "write a CSV summary row to this path")
	fs.StringVar(&cfg.ConfigName, "config-name", "", "load a YAML file of this name, overriding flag defaults")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.ConfigName != "" {
		if err := config.LoadYAML(cfg.ConfigName, &cfg); err != nil {
			return cfg, err
		}
		// Parse again so flags given on the command line win over the file.
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}

	if cfg.TracePath == "" {
		return cfg, fmt.Errorf("vmmsim: -t/--trace is required")
	}

	return cfg, nil
}

func run(cfg config.Config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.Info("vmmsim: starting", "config", cfg.String())

	f, err := os.Open(cfg.TracePath)
	if err != nil {
		return fmt.Errorf("vmmsim: open trace: %w", err)
	}
	defer f.Close()
	tr := trace.Parse(f)

	vmmCfg, err := toVMMConfig(cfg)
	if err != nil {
		return err
	}

	sim, err := vmm.New(vmmCfg)
	if err != nil {
		return fmt.Errorf("vmmsim: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.RunTrace(tr, cfg.MaxAccesses, func(done, total uint64) {
			if done%10000 == 0 {
				slog.Debug("vmmsim: progress", "done", done, "total", total)
			}
		})
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("vmmsim: interrupted, reporting partial results")
	}

	report := output.BuildReport(sim.Metrics(), defaultAccessTimeConfig())

	if cfg.OutputPath != "" {
		out, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("vmmsim: create output: %w", err)
		}
		defer out.Close()
		if err := output.WriteJSON(out, report); err != nil {
			return fmt.Errorf("vmmsim: write json: %w", err)
		}
	}

	if cfg.CSVPath != "" {
		out, err := os.Create(cfg.CSVPath)
		if err != nil {
			return fmt.Errorf("vmmsim: create csv: %w", err)
		}
		defer out.Close()
		if err := output.WriteCSV(out, cfg.ConfigName, report); err != nil {
			return fmt.Errorf("vmmsim: write csv: %w", err)
		}
	}

	if cfg.OutputPath == "" && cfg.CSVPath == "" {
		if err := output.WriteText(os.Stdout, report); err != nil {
			return fmt.Errorf("vmmsim: write summary: %w", err)
		}
	}

	return nil
}

func defaultAccessTimeConfig() metrics.AccessTimeConfig {
	return metrics.AccessTimeConfig{
		TLBHitTimeNS:       1,
		MemoryAccessTimeNS: 100,
		PageFaultTimeUS:    1000,
		SwapIOTimeUS:       5000,
	}
}

func toVMMConfig(cfg config.Config) (vmm.Config, error) {
	algo, err := parseAlgorithm(cfg.Algorithm)
	if err != nil {
		return vmm.Config{}, err
	}
	tlbPolicy, err := parseTLBPolicy(cfg.TLBPolicy)
	if err != nil {
		return vmm.Config{}, err
	}
	ptShape, err := parsePTType(cfg.PTType)
	if err != nil {
		return vmm.Config{}, err
	}

	vc := vmm.Config{
		RAMBytes:    uint64(cfg.RAMMB) * 1024 * 1024,
		PageSize:    uint32(cfg.PageSize),
		SwapBytes:   uint64(cfg.SwapMB) * 1024 * 1024,
		VSpaceBytes: uint64(cfg.VSpaceMB) * 1024 * 1024,
		Algorithm:   algo,
		TLBSize:     cfg.TLBSize,
		TLBPolicy:   tlbPolicy,
		PTShape:     ptShape,
	}
	if err := vc.Validate(); err != nil {
		return vmm.Config{}, fmt.Errorf("vmmsim: %w", err)
	}
	return vc, nil
}

func parseAlgorithm(s string) (replace.Kind, error) {
	switch strings.ToUpper(s) {
	case "FIFO":
		return replace.FIFO, nil
	case "LRU":
		return replace.LRU, nil
	case "APPROX_LRU":
		return replace.AgingLRU, nil
	case "CLOCK":
		return replace.Clock, nil
	case "OPT":
		return replace.OPT, nil
	default:
		return 0, fmt.Errorf("vmmsim: unknown algorithm %q", s)
	}
}

func parseTLBPolicy(s string) (tlb.Policy, error) {
	switch strings.ToUpper(s) {
	case "FIFO":
		return tlb.FIFO, nil
	case "LRU":
		return tlb.LRU, nil
	default:
		return 0, fmt.Errorf("vmmsim: unknown tlb policy %q", s)
	}
}

func parsePTType(s string) (ptable.Shape, error) {
	switch strings.ToUpper(s) {
	case "SINGLE":
		return ptable.SingleLevel, nil
	case "TWO_LEVEL":
		return ptable.TwoLevel, nil
	default:
		return 0, fmt.Errorf("vmmsim: unknown page table type %q", s)
	}
}

