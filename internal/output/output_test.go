package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuannm99/vmmsim/internal/vmm/metrics"
)

func sampleMetrics() *metrics.Metrics {
	m := metrics.New()
	m.RecordAccess(1, false)
	m.RecordAccess(1, true)
	m.RecordTLBHit(1)
	m.RecordTLBMiss(1)
	m.RecordPageFault(1, true)
	m.RecordSwapIn()
	m.RecordSwapOut()
	m.RecordReplacement()
	m.StartSimulation(0)
	m.EndSimulation(5000)
	return m
}

func TestBuildReport_PopulatesPerProcess(t *testing.T) {
	r := BuildReport(sampleMetrics(), metrics.AccessTimeConfig{})
	require.Len(t, r.PerProcess, 1)
	require.Equal(t, uint32(1), r.PerProcess[0].Pid)
	require.Equal(t, uint64(2), r.TotalAccesses)
	require.InDelta(t, 5.0, r.SimulationTimeMS, 1e-9)
}

func TestWriteJSON_HasExpectedKeys(t *testing.T) {
	r := BuildReport(sampleMetrics(), metrics.AccessTimeConfig{})
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{
		"total_accesses", "reads", "writes", "page_faults", "major_faults",
		"minor_faults", "page_fault_rate", "tlb_hits", "tlb_misses",
		"tlb_hit_rate", "swap_ins", "swap_outs", "replacements",
		"avg_memory_access_time_ns", "simulation_time_ms", "per_process",
	} {
		require.Contains(t, decoded, key)
	}
}

func TestWriteCSV_Header(t *testing.T) {
	r := BuildReport(sampleMetrics(), metrics.AccessTimeConfig{})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "test-config", r))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "config,total_accesses,reads,writes,page_faults,pf_rate,tlb_hits,tlb_misses,tlb_hit_rate,swap_ins,swap_outs,replacements,amt_ns,runtime_ms", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "test-config,"))
}

func TestWriteText_IncludesPerProcessLine(t *testing.T) {
	r := BuildReport(sampleMetrics(), metrics.AccessTimeConfig{})
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	require.Contains(t, buf.String(), "pid 1:")
}
