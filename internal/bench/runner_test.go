package bench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeExecutor simulates the store. A configured delay honors context
// cancellation the way pgx does: the call returns as soon as the per-query
// context expires.
type fakeExecutor struct {
	delay time.Duration
	rows  int
	err   error
	calls int
}

func (f *fakeExecutor) CountRows(ctx context.Context, sql string, args ...interface{}) (int, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.rows, nil
}

func TestMeasureSuiteRecordsOneCellPerQuery(t *testing.T) {
	exec := &fakeExecutor{rows: 7}
	r := NewRunner(exec, time.Second, zerolog.Nop())

	ms := r.MeasureSuite(context.Background(), 1000, IndexStateWithout)

	if len(ms) != len(Suite()) {
		t.Fatalf("measured %d cells, want %d", len(ms), len(Suite()))
	}
	seen := make(map[int]bool)
	for _, m := range ms {
		if m.Scale != 1000 || m.IndexState != IndexStateWithout {
			t.Errorf("cell %+v has wrong scale or index state", m)
		}
		if !m.Completed() {
			t.Errorf("cell %+v not completed", m)
		}
		if m.Rows != 7 {
			t.Errorf("cell %+v rows = %d, want 7", m, m.Rows)
		}
		if seen[m.QueryID] {
			t.Errorf("query %d measured twice", m.QueryID)
		}
		seen[m.QueryID] = true
	}
	if exec.calls != len(Suite()) {
		t.Errorf("executor called %d times, want %d", exec.calls, len(Suite()))
	}
}

func TestMeasureTimeoutLaw(t *testing.T) {
	// A query that would run far past the ceiling must be recorded as timed
	// out within ceiling plus a small epsilon, never blocking the suite.
	const ceiling = 30 * time.Millisecond
	exec := &fakeExecutor{delay: 10 * time.Second}
	r := NewRunner(exec, ceiling, zerolog.Nop())

	start := time.Now()
	ms := r.MeasureSuite(context.Background(), 1000000, IndexStateWithout)
	elapsed := time.Since(start)

	for _, m := range ms {
		if !m.TimedOut {
			t.Errorf("query %d not marked timed out", m.QueryID)
		}
		if m.Completed() {
			t.Errorf("query %d reported completed despite timeout", m.QueryID)
		}
	}

	// Five queries, each bounded by the ceiling
	bound := time.Duration(len(Suite()))*ceiling + 500*time.Millisecond
	if elapsed > bound {
		t.Errorf("suite took %v, want under %v", elapsed, bound)
	}
}

func TestMeasureExecutionErrorIsRecoveredLocally(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("relation does not exist")}
	r := NewRunner(exec, time.Second, zerolog.Nop())

	ms := r.MeasureSuite(context.Background(), 1000, IndexStateWithout)

	if len(ms) != len(Suite()) {
		t.Fatalf("suite stopped early: %d cells", len(ms))
	}
	for _, m := range ms {
		if m.TimedOut {
			t.Errorf("query %d marked timed out for a non-timeout error", m.QueryID)
		}
		if m.Err == "" {
			t.Errorf("query %d error not recorded", m.QueryID)
		}
	}
}

func TestPairedBeforeAfterRecords(t *testing.T) {
	exec := &fakeExecutor{rows: 1}
	r := NewRunner(exec, time.Second, zerolog.Nop())

	r.MeasureSuite(context.Background(), 1000000, IndexStateWithout)
	r.MeasureSuite(context.Background(), 1000000, IndexStateWith)

	results := r.Results()
	for _, q := range Suite() {
		before, okBefore := Find(results, 1000000, q.ID, IndexStateWithout)
		after, okAfter := Find(results, 1000000, q.ID, IndexStateWith)
		if !okBefore || !okAfter {
			t.Fatalf("query %d missing from a pass: before=%v after=%v", q.ID, okBefore, okAfter)
		}
		if before.ElapsedMS < 0 || after.ElapsedMS < 0 {
			t.Errorf("query %d has negative elapsed time", q.ID)
		}
	}
}

func TestRunStateMachine(t *testing.T) {
	r := NewRunner(&fakeExecutor{}, time.Second, zerolog.Nop())

	path := []RunState{
		StateProvisioned,
		StateGenerating,
		StateMeasuringNoIndex,
		StateGenerating, // next scale
		StateMeasuringNoIndex,
		StateIndexing,
		StateMeasuringIndexed,
		StateDone,
	}
	for _, next := range path {
		if err := r.Transition(next); err != nil {
			t.Fatalf("legal transition to %s rejected: %v", next, err)
		}
	}
	if r.State() != StateDone {
		t.Fatalf("final state = %s, want DONE", r.State())
	}
}

func TestRunStateIllegalTransitionFails(t *testing.T) {
	r := NewRunner(&fakeExecutor{}, time.Second, zerolog.Nop())

	if err := r.Transition(StateMeasuringIndexed); err == nil {
		t.Fatal("IDLE -> MEASURING_INDEXED accepted")
	}
	if r.State() != StateFailed {
		t.Errorf("state after illegal transition = %s, want FAILED", r.State())
	}

	// FAILED is absorbing
	if err := r.Transition(StateProvisioned); err == nil {
		t.Error("transition out of FAILED accepted")
	}
}

func TestRunStateFailedReachableFromAnywhere(t *testing.T) {
	r := NewRunner(&fakeExecutor{}, time.Second, zerolog.Nop())

	if err := r.Transition(StateProvisioned); err != nil {
		t.Fatal(err)
	}
	if err := r.Transition(StateFailed); err != nil {
		t.Fatalf("transition to FAILED rejected: %v", err)
	}
	if r.State() != StateFailed {
		t.Errorf("state = %s, want FAILED", r.State())
	}
}

func TestRecurrentFailures(t *testing.T) {
	scales := []int{1000, 10000}
	ms := []Measurement{
		// Query 1 fails everywhere
		{Scale: 1000, QueryID: 1, IndexState: IndexStateWithout, Err: "syntax error"},
		{Scale: 10000, QueryID: 1, IndexState: IndexStateWithout, Err: "syntax error"},
		// Query 2 fails only once
		{Scale: 1000, QueryID: 2, IndexState: IndexStateWithout, Err: "flake"},
		{Scale: 10000, QueryID: 2, IndexState: IndexStateWithout, ElapsedMS: 1},
		// Query 3 times out everywhere: timeouts are not execution failures
		{Scale: 1000, QueryID: 3, IndexState: IndexStateWithout, TimedOut: true, Err: "timeout"},
		{Scale: 10000, QueryID: 3, IndexState: IndexStateWithout, TimedOut: true, Err: "timeout"},
		{Scale: 1000, QueryID: 4, IndexState: IndexStateWithout, ElapsedMS: 1},
		{Scale: 10000, QueryID: 4, IndexState: IndexStateWithout, ElapsedMS: 1},
		{Scale: 1000, QueryID: 5, IndexState: IndexStateWithout, ElapsedMS: 1},
		{Scale: 10000, QueryID: 5, IndexState: IndexStateWithout, ElapsedMS: 1},
	}

	got := RecurrentFailures(ms, scales)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("RecurrentFailures = %v, want [1]", got)
	}
}
