package generate

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
)

// TestProperty_EmailUniquenessAcrossBatches validates that for any
// (scale, batch size) combination, including batch sizes smaller than the
// scale, every committed student carries a distinct email.
func TestProperty_EmailUniquenessAcrossBatches(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("emails are unique across all batches", prop.ForAll(
		func(scale, batchSize int) bool {
			writer := newFakeWriter()
			opts := testOptions()
			opts.BatchSize = batchSize
			g := NewScaledGenerator(writer, testCourseIDs(20), opts, zerolog.Nop())

			stats, err := g.Generate(context.Background(), scale)
			if err != nil {
				return false
			}
			return stats.Students == scale && len(writer.emails) == scale
		},
		gen.IntRange(1, 400),
		gen.IntRange(1, 97),
	))

	properties.TestingRun(t)
}

// TestProperty_EnrollmentInvariants validates that every generated
// enrollment stays within the configured count range, carries a grade in
// [0,100] and references only provisioned courses.
func TestProperty_EnrollmentInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("enrollment rows satisfy all row invariants", prop.ForAll(
		func(scale int, seed int64) bool {
			writer := newFakeWriter()
			courseIDs := testCourseIDs(30)
			opts := testOptions()
			opts.BatchSize = 64
			opts.Seed = seed
			g := NewScaledGenerator(writer, courseIDs, opts, zerolog.Nop())

			if _, err := g.Generate(context.Background(), scale); err != nil {
				return false
			}

			valid := make(map[int64]bool, len(courseIDs))
			for _, id := range courseIDs {
				valid[id] = true
			}

			perStudent := make(map[int64]int)
			for _, e := range writer.enrollments {
				if e.Grade < 0 || e.Grade > 100 {
					return false
				}
				if !valid[e.CourseID] {
					return false
				}
				perStudent[e.StudentID]++
			}

			if len(perStudent) != scale {
				return false
			}
			for _, n := range perStudent {
				if n < opts.EnrollmentsMin || n > opts.EnrollmentsMax {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 200),
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}
