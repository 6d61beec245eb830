package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// RunState is the benchmark run's lifecycle state
type RunState string

const (
	StateIdle             RunState = "IDLE"
	StateProvisioned      RunState = "PROVISIONED"
	StateGenerating       RunState = "GENERATING"
	StateMeasuringNoIndex RunState = "MEASURING_NO_INDEX"
	StateIndexing         RunState = "INDEXING"
	StateMeasuringIndexed RunState = "MEASURING_INDEXED"
	StateDone             RunState = "DONE"
	StateFailed           RunState = "FAILED"
)

// legalTransitions enumerates the forward edges of the run state machine.
// FAILED is absorbing and reachable from every non-terminal state.
var legalTransitions = map[RunState][]RunState{
	StateIdle:             {StateProvisioned},
	StateProvisioned:      {StateGenerating},
	StateGenerating:       {StateMeasuringNoIndex},
	StateMeasuringNoIndex: {StateGenerating, StateIndexing},
	StateIndexing:         {StateMeasuringIndexed},
	StateMeasuringIndexed: {StateDone},
}

// Executor runs one suite query against the store and returns the number of
// result rows. Implementations must honor context cancellation: an expired
// context must abort the in-flight query.
type Executor interface {
	CountRows(ctx context.Context, sql string, args ...interface{}) (int, error)
}

// Runner executes the query suite once per (scale, index-state) pair under
// a per-query timeout ceiling. Exactly one measurement per cell; the design
// accepts single-sample noise.
type Runner struct {
	exec    Executor
	timeout time.Duration
	logger  zerolog.Logger

	state   RunState
	results []Measurement
}

// NewRunner creates a runner with the given per-query timeout ceiling
func NewRunner(exec Executor, timeout time.Duration, lgr zerolog.Logger) *Runner {
	return &Runner{
		exec:    exec,
		timeout: timeout,
		logger:  lgr,
		state:   StateIdle,
	}
}

// State returns the runner's current lifecycle state
func (r *Runner) State() RunState {
	return r.state
}

// Results returns every measurement recorded so far, in execution order
func (r *Runner) Results() []Measurement {
	out := make([]Measurement, len(r.results))
	copy(out, r.results)
	return out
}

// Transition moves the run to the given state. FAILED is always reachable;
// any other illegal edge is rejected and the run is marked failed, since an
// out-of-order phase means the harness lost track of the run.
func (r *Runner) Transition(to RunState) error {
	if to == StateFailed {
		r.state = StateFailed
		return nil
	}
	if r.state == StateFailed || r.state == StateDone {
		return fmt.Errorf("cannot leave terminal state %s", r.state)
	}
	for _, legal := range legalTransitions[r.state] {
		if legal == to {
			r.logger.Debug().Str("from", string(r.state)).Str("to", string(to)).Msg("Run state transition")
			r.state = to
			return nil
		}
	}
	from := r.state
	r.state = StateFailed
	return fmt.Errorf("illegal run state transition %s -> %s", from, to)
}

// MeasureSuite runs all five queries once against the current store state
// and records one measurement per query. Timeouts and per-query execution
// errors are recorded and do not stop the suite.
func (r *Runner) MeasureSuite(ctx context.Context, scale int, state IndexState) []Measurement {
	measured := make([]Measurement, 0, len(suite))
	for _, q := range suite {
		m := r.measure(ctx, scale, q, state)
		r.results = append(r.results, m)
		measured = append(measured, m)
	}
	return measured
}

// measure executes one query under the timeout ceiling and records its
// wall-clock elapsed time. On ceiling expiry the in-flight query is
// cancelled through the context and a sentinel timed-out result is
// recorded, so the run never blocks past ceiling plus a small epsilon.
func (r *Runner) measure(ctx context.Context, scale int, q Query, state IndexState) Measurement {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	rows, err := r.exec.CountRows(qctx, q.SQL, q.Args...)
	elapsed := time.Since(start)

	m := Measurement{
		Scale:      scale,
		QueryID:    q.ID,
		IndexState: state,
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000.0,
		Rows:       rows,
	}

	switch {
	case err == nil:
		r.logger.Info().
			Int("query", q.ID).
			Int("scale", scale).
			Str("index_state", string(state)).
			Float64("elapsed_ms", m.ElapsedMS).
			Int("rows", rows).
			Msg("Query measured")

	case isTimeout(qctx, err):
		m.TimedOut = true
		m.Err = apperrors.ErrQueryTimeout.Error()
		r.logger.Warn().
			Int("query", q.ID).
			Int("scale", scale).
			Str("index_state", string(state)).
			Dur("ceiling", r.timeout).
			Msg("Query timed out")

	default:
		m.Err = err.Error()
		r.logger.Error().
			Err(err).
			Int("query", q.ID).
			Int("scale", scale).
			Str("index_state", string(state)).
			Msg("Query execution failed")
	}

	return m
}

// isTimeout distinguishes ceiling expiry from other execution errors. The
// store driver may surface the cancelled context as its own error type, so
// the per-query context is consulted as well.
func isTimeout(qctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(qctx.Err(), context.DeadlineExceeded)
}
