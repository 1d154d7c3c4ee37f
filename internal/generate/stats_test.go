package generate

import (
	"testing"
	"time"
)

func TestLLMStats_Percentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{500, 100, 400, 200, 300} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	want := StatsSnapshot{Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if snap != want {
		t.Fatalf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestLLMStats_PrunesOutsideWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewLLMStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100 * time.Millisecond)
	now = now.Add(2 * time.Minute)
	if n := stats.Snapshot().Count; n != 0 {
		t.Fatalf("expected expired sample to be pruned, got count=%d", n)
	}

	stats.Record(200 * time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("Snapshot() = %+v, want one 200ms sample", snap)
	}
}

func TestLLMStats_ClampsNegativeAndEmpty(t *testing.T) {
	stats := NewLLMStats(0)
	if snap := stats.Snapshot(); snap != (StatsSnapshot{}) {
		t.Fatalf("empty snapshot = %+v", snap)
	}
	stats.Record(-10 * time.Millisecond)
	if snap := stats.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("Snapshot() = %+v, want clamped zero", snap)
	}
}
