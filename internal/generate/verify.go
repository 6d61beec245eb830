package generate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityReport is the result of a post-generation referential sweep
type IntegrityReport struct {
	Students            int64
	Enrollments         int64
	DanglingStudentRefs int64
	DanglingCourseRefs  int64
	DuplicateEmails     int64
	GradesOutOfRange    int64
	MinEnrollments      int64
	MaxEnrollments      int64
}

// Ok reports whether the sweep found no violations against the configured
// enrollment range.
func (r IntegrityReport) Ok(enrollMin, enrollMax int) bool {
	return r.DanglingStudentRefs == 0 &&
		r.DanglingCourseRefs == 0 &&
		r.DuplicateEmails == 0 &&
		r.GradesOutOfRange == 0 &&
		r.MinEnrollments >= int64(enrollMin) &&
		r.MaxEnrollments <= int64(enrollMax)
}

// VerifyIntegrity sweeps the generated population for dangling foreign
// keys, duplicate emails, out-of-range grades and enrollment counts outside
// the configured range. Run after every generation pass.
func VerifyIntegrity(ctx context.Context, db *pgxpool.Pool) (IntegrityReport, error) {
	var r IntegrityReport

	checks := []struct {
		dest  *int64
		query string
	}{
		{&r.Students, "SELECT COUNT(*) FROM students"},
		{&r.Enrollments, "SELECT COUNT(*) FROM enrollments"},
		{&r.DanglingStudentRefs, `
			SELECT COUNT(*) FROM enrollments e
			LEFT JOIN students s ON e.student_id = s.student_id
			WHERE s.student_id IS NULL`},
		{&r.DanglingCourseRefs, `
			SELECT COUNT(*) FROM enrollments e
			LEFT JOIN courses c ON e.course_id = c.course_id
			WHERE c.course_id IS NULL`},
		{&r.DuplicateEmails, `
			SELECT COUNT(*) FROM (
				SELECT email FROM students GROUP BY email HAVING COUNT(*) > 1
			) dup`},
		{&r.GradesOutOfRange, "SELECT COUNT(*) FROM enrollments WHERE grade < 0 OR grade > 100"},
		{&r.MinEnrollments, `
			SELECT COALESCE(MIN(n), 0) FROM (
				SELECT COUNT(*) AS n FROM enrollments GROUP BY student_id
			) per_student`},
		{&r.MaxEnrollments, `
			SELECT COALESCE(MAX(n), 0) FROM (
				SELECT COUNT(*) AS n FROM enrollments GROUP BY student_id
			) per_student`},
	}

	for _, check := range checks {
		if err := db.QueryRow(ctx, check.query).Scan(check.dest); err != nil {
			return r, fmt.Errorf("integrity sweep query failed: %w", err)
		}
	}

	return r, nil
}
