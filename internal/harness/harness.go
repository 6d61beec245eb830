package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/bench"
	"github.com/unibench/unibench/internal/config"
	"github.com/unibench/unibench/internal/db"
	"github.com/unibench/unibench/internal/generate"
	"github.com/unibench/unibench/internal/pkg/apperrors"
	"github.com/unibench/unibench/internal/report"
	"github.com/unibench/unibench/internal/schema"
)

// Harness owns the run's phase sequence: provision, then per scale
// generate and measure without indexes, then index once and re-measure the
// largest scale. Every blocking call runs under the caller's context, and
// every query runs under its own timeout ceiling, so a run always
// terminates.
type Harness struct {
	cfg      *config.Config
	database *db.PostgresDB
	logger   zerolog.Logger
}

// New creates a harness over an established database connection
func New(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Harness {
	return &Harness{
		cfg:      cfg,
		database: database,
		logger:   lgr,
	}
}

// Run executes the full benchmark. It always returns a report over whatever
// cells were measured, even when it also returns an error: a fatal abort
// still reports the scales completed before it.
func (h *Harness) Run(ctx context.Context) (*report.Report, error) {
	runID := uuid.NewString()
	lgr := h.logger.With().Str("run_id", runID).Logger()

	pool := h.database.Pool
	provisioner := schema.NewProvisioner(pool, lgr)
	indexManager := schema.NewIndexManager(pool, lgr)
	runner := bench.NewRunner(bench.NewPgExecutor(pool), h.cfg.QueryTimeout(), lgr)

	prior, err := report.LoadProgress(h.progressPath())
	if err != nil {
		lgr.Warn().Err(err).Msg("Could not load prior progress, starting fresh")
	} else if len(prior.Measurements) > 0 {
		lgr.Info().Int("cells", len(prior.Measurements)).Msg("Loaded prior progress")
	}

	buildReport := func() *report.Report {
		merged := mergeMeasurements(runner.Results(), prior.Measurements)
		return report.New(runID, h.cfg.Benchmark.Scales, merged)
	}

	fail := func(cause error) (*report.Report, error) {
		_ = runner.Transition(bench.StateFailed)
		rep := buildReport()
		h.emit(rep, lgr)
		return rep, cause
	}

	// A fresh store guarantees the baseline pass runs before any index exists
	if err := provisioner.Teardown(ctx); err != nil {
		return fail(err)
	}
	if err := provisioner.Provision(ctx); err != nil {
		return fail(err)
	}
	if err := runner.Transition(bench.StateProvisioned); err != nil {
		return fail(err)
	}

	for _, scale := range h.cfg.Benchmark.Scales {
		lgr.Info().Int("scale", scale).Msg("Starting scale")

		if err := runner.Transition(bench.StateGenerating); err != nil {
			return fail(err)
		}
		if err := h.generateScale(ctx, provisioner, scale, lgr); err != nil {
			// Prior scales' measurements remain valid; report them
			return fail(err)
		}

		if err := runner.Transition(bench.StateMeasuringNoIndex); err != nil {
			return fail(err)
		}
		runner.MeasureSuite(ctx, scale, bench.IndexStateWithout)

		h.saveProgress(runID, runner.Results(), prior.Measurements, lgr)
	}

	if err := runner.Transition(bench.StateIndexing); err != nil {
		return fail(err)
	}
	if err := indexManager.CreateAll(ctx); err != nil {
		return fail(err)
	}

	if err := runner.Transition(bench.StateMeasuringIndexed); err != nil {
		return fail(err)
	}
	runner.MeasureSuite(ctx, h.cfg.LargestScale(), bench.IndexStateWith)

	if err := runner.Transition(bench.StateDone); err != nil {
		return fail(err)
	}
	h.saveProgress(runID, runner.Results(), prior.Measurements, lgr)

	rep := buildReport()
	h.emit(rep, lgr)

	// A query failing at every scale signals a broken suite definition, not
	// a store condition.
	if recurrent := bench.RecurrentFailures(runner.Results(), h.cfg.Benchmark.Scales); len(recurrent) > 0 {
		return rep, apperrors.NewBenchError(apperrors.ErrQueryExecution,
			fmt.Sprintf("queries %v failed at every scale", recurrent))
	}

	lgr.Info().Msg("Benchmark run complete")
	return rep, nil
}

// generateScale repopulates the store for one scale: truncate, reference
// tables, then the batched student/enrollment pass, then the referential
// integrity sweep.
func (h *Harness) generateScale(ctx context.Context, provisioner *schema.Provisioner, scale int, lgr zerolog.Logger) error {
	pool := h.database.Pool

	if err := provisioner.Truncate(ctx); err != nil {
		return err
	}

	refGen := generate.NewReferenceGenerator(pool, generate.ReferenceOptions{
		Departments: h.cfg.Benchmark.Departments,
		Teachers:    h.cfg.Benchmark.Teachers,
		Courses:     h.cfg.Benchmark.Courses,
		Seed:        h.cfg.Benchmark.Seed,
	}, lgr)

	courseIDs, err := refGen.Generate(ctx)
	if err != nil {
		return apperrors.NewBenchError(apperrors.ErrProvisioning,
			fmt.Sprintf("reference data for scale %d: %v", scale, err))
	}

	scaledGen := generate.NewScaledGenerator(
		generate.NewPgBatchWriter(pool),
		courseIDs,
		generate.ScaledOptions{
			BatchSize:      h.cfg.Benchmark.BatchSize,
			EnrollmentsMin: h.cfg.Benchmark.EnrollmentsMin,
			EnrollmentsMax: h.cfg.Benchmark.EnrollmentsMax,
			FlushRetries:   h.cfg.Benchmark.FlushRetries,
			Seed:           h.cfg.Benchmark.Seed,
		}, lgr)

	stats, err := scaledGen.Generate(ctx, scale)
	if err != nil {
		return err
	}
	if stats.Students != scale {
		return apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
			fmt.Sprintf("generated %d students, expected %d", stats.Students, scale))
	}

	sweep, err := generate.VerifyIntegrity(ctx, pool)
	if err != nil {
		return err
	}
	if !sweep.Ok(h.cfg.Benchmark.EnrollmentsMin, h.cfg.Benchmark.EnrollmentsMax) {
		return apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
			fmt.Sprintf("integrity sweep failed at scale %d: %+v", scale, sweep))
	}

	lgr.Info().
		Int("scale", scale).
		Int64("students", sweep.Students).
		Int64("enrollments", sweep.Enrollments).
		Msg("Scale generated and verified")

	return nil
}

// progressPath resolves the progress snapshot location under the output dir
func (h *Harness) progressPath() string {
	if filepath.IsAbs(h.cfg.Report.ProgressFile) {
		return h.cfg.Report.ProgressFile
	}
	return filepath.Join(h.cfg.Report.OutputDir, h.cfg.Report.ProgressFile)
}

// saveProgress persists the merged measurement snapshot, best effort
func (h *Harness) saveProgress(runID string, current, prior []bench.Measurement, lgr zerolog.Logger) {
	p := report.Progress{
		RunID:        runID,
		Scales:       h.cfg.Benchmark.Scales,
		Measurements: mergeMeasurements(current, prior),
	}
	if err := report.SaveProgress(h.progressPath(), p); err != nil {
		lgr.Warn().Err(err).Msg("Could not save progress")
	}
}

// emit writes the report document and charts, best effort: reporting
// failures never mask the run's own outcome.
func (h *Harness) emit(rep *report.Report, lgr zerolog.Logger) {
	reportPath := filepath.Join(h.cfg.Report.OutputDir, "lab_report.md")
	if err := rep.WriteMarkdown(reportPath); err != nil {
		lgr.Error().Err(err).Msg("Could not write report")
	} else {
		lgr.Info().Str("path", reportPath).Msg("Report written")
	}

	if err := rep.WriteCharts(h.cfg.Report.OutputDir); err != nil {
		lgr.Error().Err(err).Msg("Could not render charts")
	}
}

// mergeMeasurements combines the current run's cells with a prior
// snapshot's. Current cells win; prior cells survive only where the current
// run has not re-measured them.
func mergeMeasurements(current, prior []bench.Measurement) []bench.Measurement {
	merged := make([]bench.Measurement, 0, len(current)+len(prior))
	merged = append(merged, current...)
	for _, m := range prior {
		if _, ok := bench.Find(current, m.Scale, m.QueryID, m.IndexState); !ok {
			merged = append(merged, m)
		}
	}
	return merged
}
