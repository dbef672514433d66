package orchestrator

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestMemory(t *testing.T) *OutcomeMemory {
	t.Helper()
	mem, err := NewOutcomeMemory(newTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	return mem
}

func record(t *testing.T, mem *OutcomeMemory, p ProtocolID, fallback bool, at time.Time) {
	t.Helper()
	err := mem.RecordOutcome(OutcomeRecord{
		TraceID: "tr", BattleTag: "battle-1", Turn: 1,
		Protocol: p, Calls: 1, Fallback: fallback, CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOutcomeMemory_BelowThreshold(t *testing.T) {
	mem := newTestMemory(t)

	// No data → empty result
	pid, _, err := mem.BestProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if pid != "" {
		t.Errorf("expected empty protocol, got %q", pid)
	}

	// 2 samples → still below threshold of 3
	record(t, mem, ProtocolCoT, false, time.Now())
	record(t, mem, ProtocolCoT, false, time.Now())
	pid, _, err = mem.BestProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if pid != "" {
		t.Errorf("expected empty (below threshold), got %q", pid)
	}

	// 3rd sample → cot
	record(t, mem, ProtocolCoT, false, time.Now())
	pid, score, err := mem.BestProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if pid != ProtocolCoT {
		t.Errorf("expected cot, got %q", pid)
	}
	if score < 0.99 {
		t.Errorf("expected score ~1.0, got %f", score)
	}
}

func TestOutcomeMemory_FewerFallbacksWin(t *testing.T) {
	mem := newTestMemory(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		record(t, mem, ProtocolIO, i > 0, now) // 2 of 3 fell back
		record(t, mem, ProtocolToT, false, now)
	}
	pid, _, err := mem.BestProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if pid != ProtocolToT {
		t.Errorf("expected tot, got %q", pid)
	}
}

func TestOutcomeMemory_DecayFavorsRecent(t *testing.T) {
	mem := newTestMemory(t)
	old := time.Now().Add(-60 * 24 * time.Hour)
	// sc was good long ago, bad recently
	for i := 0; i < 5; i++ {
		record(t, mem, ProtocolSC, false, old)
	}
	for i := 0; i < 3; i++ {
		record(t, mem, ProtocolSC, true, time.Now())
	}
	// io is mediocre but recent
	record(t, mem, ProtocolIO, false, time.Now())
	record(t, mem, ProtocolIO, false, time.Now())
	record(t, mem, ProtocolIO, true, time.Now())

	pid, _, err := mem.BestProtocol()
	if err != nil {
		t.Fatal(err)
	}
	if pid != ProtocolIO {
		t.Errorf("expected io after decay, got %q", pid)
	}
}

func TestOutcomeMemory_SampleCounts(t *testing.T) {
	mem := newTestMemory(t)
	record(t, mem, ProtocolToT, false, time.Now())
	record(t, mem, ProtocolToT, true, time.Now())
	counts, err := mem.SampleCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts[ProtocolToT] != 2 || counts[ProtocolIO] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestOutcomeMemory_Stats(t *testing.T) {
	mem := newTestMemory(t)
	record(t, mem, ProtocolSC, false, time.Now())
	record(t, mem, ProtocolSC, true, time.Now())
	record(t, mem, ProtocolIO, false, time.Now())

	stats, err := mem.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	if stats[0].Protocol != ProtocolIO || stats[1].Protocol != ProtocolSC {
		t.Errorf("unexpected order: %+v", stats)
	}
	if stats[1].Turns != 2 || stats[1].Fallbacks != 1 || stats[1].FallbackRate != 0.5 {
		t.Errorf("unexpected sc stats: %+v", stats[1])
	}
}

func TestProtocolSelector(t *testing.T) {
	if got := NewProtocolSelector(nil).Select(ProtocolToT); got.ID != ProtocolToT || len(got.Phases) != 2 {
		t.Errorf("tot config: %+v", got)
	}
	if got := NewProtocolSelector(nil).Select(ProtocolAuto); got.ID != ProtocolIO {
		t.Errorf("auto without memory should default to io, got %s", got.ID)
	}

	mem := newTestMemory(t)
	sel := NewProtocolSelector(mem)
	if got := sel.Select(ProtocolAuto); got.ID != ProtocolIO {
		t.Errorf("auto with empty memory should default to io, got %s", got.ID)
	}
	// protocols without 3 samples are explored in order
	now := time.Now()
	for _, want := range AutoOrder {
		if got := sel.Select(ProtocolAuto); got.ID != want {
			t.Errorf("auto should explore %s, got %s", want, got.ID)
		}
		for i := 0; i < 3; i++ {
			// only cot resolves every turn without fallback
			record(t, mem, want, want != ProtocolCoT, now)
		}
	}
	if got := sel.Select(ProtocolAuto); got.ID != ProtocolCoT {
		t.Errorf("auto should learn cot, got %s", got.ID)
	}
	// explicit config is never overridden
	if got := sel.Select(ProtocolSC); got.ID != ProtocolSC {
		t.Errorf("explicit sc overridden by %s", got.ID)
	}
}

func TestParseProtocol(t *testing.T) {
	for _, s := range []string{"io", " SC ", "CoT", "tot", "auto"} {
		if _, err := ParseProtocol(s); err != nil {
			t.Errorf("ParseProtocol(%q): %v", s, err)
		}
	}
	if _, err := ParseProtocol("minimax"); err == nil {
		t.Error("expected error for unknown protocol")
	}
}
