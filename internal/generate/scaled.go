package generate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// BatchResult reports what one committed batch persisted
type BatchResult struct {
	Students    int
	Enrollments int
}

// BatchWriter flushes one generated batch as a single transaction. The
// student rows are persisted first; enrollFor is then called with the
// store-assigned student IDs, in row order, to build that batch's
// enrollment rows inside the same transaction. Implementations must never
// commit a batch partially: any failure rolls back both tables.
type BatchWriter interface {
	WriteBatch(ctx context.Context, students []StudentRow, enrollFor func(studentIDs []int64) ([]EnrollmentRow, error)) (BatchResult, error)
}

// ScaledOptions parametrizes the volume-varying generation pass
type ScaledOptions struct {
	BatchSize      int
	EnrollmentsMin int
	EnrollmentsMax int
	// FlushRetries bounds how often a failed batch flush is retried
	// wholesale before the scale is aborted.
	FlushRetries int
	Seed         int64
}

// Stats summarizes one completed generation pass
type Stats struct {
	Students    int
	Enrollments int
	Batches     int
	Retries     int
	Elapsed     time.Duration
}

// ScaledGenerator produces the volume-varying tables: students and their
// enrollments. It owns the in-flight batch arena exclusively; once a batch
// is committed the store is the sole owner of those rows. Peak memory is
// O(batch size) regardless of scale.
type ScaledGenerator struct {
	writer    BatchWriter
	courseIDs []int64
	rnd       *rand.Rand
	opts      ScaledOptions
	logger    zerolog.Logger

	// emailSeq is the run-wide uniqueness counter embedded in every student
	// email. It is owned state, never ambient, so one generator instance can
	// be reused across runs without cross-run contamination. issuedMax
	// guards against the counter ever moving backwards.
	emailSeq  int
	issuedMax int

	// reusable buffers, capped at batch size / course count
	arena     []StudentRow
	courseIdx []int
}

// NewScaledGenerator creates a generator for the given course ID set
func NewScaledGenerator(writer BatchWriter, courseIDs []int64, opts ScaledOptions, lgr zerolog.Logger) *ScaledGenerator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	courseIdx := make([]int, len(courseIDs))
	for i := range courseIdx {
		courseIdx[i] = i
	}

	return &ScaledGenerator{
		writer:    writer,
		courseIDs: courseIDs,
		rnd:       rand.New(rand.NewSource(seed)),
		opts:      opts,
		logger:    lgr,
		arena:     make([]StudentRow, 0, opts.BatchSize),
		courseIdx: courseIdx,
	}
}

// Generate produces exactly scale student rows and, per student, an
// independently sampled count of enrollments in the configured range.
// Rows are flushed in batches of at most the configured batch size; a
// failing batch is retried wholesale a bounded number of times, then the
// scale aborts carrying the batch offset so the failure is reproducible.
func (g *ScaledGenerator) Generate(ctx context.Context, scale int) (Stats, error) {
	if len(g.courseIDs) < g.opts.EnrollmentsMax {
		return Stats{}, apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
			fmt.Sprintf("only %d courses provisioned, need %d distinct enrollment targets",
				len(g.courseIDs), g.opts.EnrollmentsMax))
	}

	start := time.Now()
	stats := Stats{}

	for offset := 0; offset < scale; offset += g.opts.BatchSize {
		size := g.opts.BatchSize
		if offset+size > scale {
			size = scale - offset
		}

		if err := g.fillArena(size); err != nil {
			return stats, g.fatal(err, scale, offset)
		}

		result, retries, err := g.flushArena(ctx, scale, offset)
		stats.Retries += retries
		if err != nil {
			return stats, err
		}

		stats.Students += result.Students
		stats.Enrollments += result.Enrollments
		stats.Batches++

		if stats.Batches%10 == 0 {
			g.logger.Info().
				Int("scale", scale).
				Int("students", stats.Students).
				Int("enrollments", stats.Enrollments).
				Msg("Generation progress")
		}
	}

	stats.Elapsed = time.Since(start)
	g.logger.Info().
		Int("scale", scale).
		Int("students", stats.Students).
		Int("enrollments", stats.Enrollments).
		Int("batches", stats.Batches).
		Dur("elapsed", stats.Elapsed).
		Msg("Generation complete")

	return stats, nil
}

// fillArena regenerates the batch arena in place with size student rows
func (g *ScaledGenerator) fillArena(size int) error {
	g.arena = g.arena[:0]
	for i := 0; i < size; i++ {
		row, err := g.nextStudent()
		if err != nil {
			return err
		}
		g.arena = append(g.arena, row)
	}
	return nil
}

// flushArena commits the current arena, retrying wholesale on transient
// failures. Constraint violations are never retried.
func (g *ScaledGenerator) flushArena(ctx context.Context, scale, offset int) (BatchResult, int, error) {
	var lastErr error
	for attempt := 0; attempt <= g.opts.FlushRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn().
				Err(lastErr).
				Int("scale", scale).
				Int("offset", offset).
				Int("attempt", attempt).
				Msg("Retrying batch flush")
		}

		result, err := g.writer.WriteBatch(ctx, g.arena, g.buildEnrollments)
		if err == nil {
			return result, attempt, nil
		}
		if errors.Is(err, apperrors.ErrGenerationConstraint) {
			return BatchResult{}, attempt, g.fatal(err, scale, offset)
		}
		lastErr = err
	}

	err := apperrors.NewBenchError(apperrors.ErrBatchFlush,
		fmt.Sprintf("batch at scale %d offset %d failed after %d retries: %v",
			scale, offset, g.opts.FlushRetries, lastErr)).
		WithDetails(map[string]interface{}{"scale": scale, "offset": offset})
	return BatchResult{}, g.opts.FlushRetries, err
}

// buildEnrollments samples, for each persisted student, a count in the
// configured range of distinct courses from the pre-provisioned set. Only
// already-committed course IDs are referenced; there are no forward refs.
func (g *ScaledGenerator) buildEnrollments(studentIDs []int64) ([]EnrollmentRow, error) {
	if len(studentIDs) != len(g.arena) {
		return nil, apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
			fmt.Sprintf("store returned %d student ids for a batch of %d", len(studentIDs), len(g.arena)))
	}

	spread := g.opts.EnrollmentsMax - g.opts.EnrollmentsMin
	rows := make([]EnrollmentRow, 0, len(studentIDs)*g.opts.EnrollmentsMax)

	for _, studentID := range studentIDs {
		count := g.opts.EnrollmentsMin
		if spread > 0 {
			count += g.rnd.Intn(spread + 1)
		}

		// Partial Fisher-Yates over the reusable index slice yields count
		// distinct courses without reallocating per student.
		for j := 0; j < count; j++ {
			k := j + g.rnd.Intn(len(g.courseIdx)-j)
			g.courseIdx[j], g.courseIdx[k] = g.courseIdx[k], g.courseIdx[j]
		}

		for j := 0; j < count; j++ {
			rows = append(rows, EnrollmentRow{
				StudentID: studentID,
				CourseID:  g.courseIDs[g.courseIdx[j]],
				Semester:  semesterLabels[g.rnd.Intn(len(semesterLabels))],
				Grade:     g.rnd.Intn(101),
			})
		}
	}

	return rows, nil
}

// nextStudent issues one student row with a counter-derived unique email
func (g *ScaledGenerator) nextStudent() (StudentRow, error) {
	g.emailSeq++
	if g.emailSeq <= g.issuedMax {
		// The counter moved backwards: the next email would collide with one
		// already committed in this run.
		return StudentRow{}, apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
			fmt.Sprintf("email counter regressed: %d already issued, next is %d", g.issuedMax, g.emailSeq))
	}
	g.issuedMax = g.emailSeq

	first := firstNames[g.rnd.Intn(len(firstNames))]
	last := lastNames[g.rnd.Intn(len(lastNames))]

	return StudentRow{
		FirstName: first,
		LastName:  last,
		Email: fmt.Sprintf("%s.%s.%d@student.university.edu",
			strings.ToLower(first), strings.ToLower(last), g.emailSeq),
		EnrollmentDate: daysAgo(g.rnd, 5*365),
		DateOfBirth:    birthDate(g.rnd),
	}, nil
}

func (g *ScaledGenerator) fatal(err error, scale, offset int) error {
	var benchErr *apperrors.BenchError
	if errors.As(err, &benchErr) {
		benchErr.WithDetails(map[string]interface{}{"scale": scale, "offset": offset})
		return benchErr
	}
	return apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
		fmt.Sprintf("generation failed at scale %d offset %d: %v", scale, offset, err)).
		WithDetails(map[string]interface{}{"scale": scale, "offset": offset})
}

// birthDate returns a date of birth for an age between 18 and 30
func birthDate(rnd *rand.Rand) time.Time {
	minDays := 18 * 365
	maxDays := 30 * 365
	return time.Now().AddDate(0, 0, -(minDays + rnd.Intn(maxDays-minDays))).Truncate(24 * time.Hour)
}
