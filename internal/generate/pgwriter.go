package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// Integrity violation codes from the store: unique, foreign key, check.
// Any of these on a generated batch means a generator bug, not a transient
// failure, so they are classified as non-retryable.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// PgBatchWriter flushes batches to PostgreSQL using COPY inside a single
// transaction per batch.
type PgBatchWriter struct {
	db *pgxpool.Pool
}

// NewPgBatchWriter creates a batch writer on the given pool
func NewPgBatchWriter(db *pgxpool.Pool) *PgBatchWriter {
	return &PgBatchWriter{db: db}
}

// WriteBatch bulk-loads the student rows, reads back their store-assigned
// IDs, builds the batch's enrollments via enrollFor and bulk-loads those
// too, all in one transaction. Either the whole batch commits or none of
// it does.
func (w *PgBatchWriter) WriteBatch(ctx context.Context, students []StudentRow, enrollFor func(studentIDs []int64) ([]EnrollmentRow, error)) (BatchResult, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return BatchResult{}, classifyFlushError(fmt.Errorf("begin batch transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"students"},
		[]string{"first_name", "last_name", "email", "enrollment_date", "date_of_birth"},
		pgx.CopyFromSlice(len(students), func(i int) ([]interface{}, error) {
			s := students[i]
			return []interface{}{s.FirstName, s.LastName, s.Email, s.EnrollmentDate, s.DateOfBirth}, nil
		}),
	)
	if err != nil {
		return BatchResult{}, classifyFlushError(err)
	}
	if int(copied) != len(students) {
		return BatchResult{}, apperrors.NewBenchError(apperrors.ErrBatchFlush,
			fmt.Sprintf("copied %d of %d student rows", copied, len(students)))
	}

	studentIDs, err := w.batchStudentIDs(ctx, tx, len(students))
	if err != nil {
		return BatchResult{}, classifyFlushError(err)
	}

	enrollments, err := enrollFor(studentIDs)
	if err != nil {
		return BatchResult{}, err
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"enrollments"},
		[]string{"student_id", "course_id", "semester", "grade"},
		pgx.CopyFromSlice(len(enrollments), func(i int) ([]interface{}, error) {
			e := enrollments[i]
			return []interface{}{e.StudentID, e.CourseID, e.Semester, e.Grade}, nil
		}),
	)
	if err != nil {
		return BatchResult{}, classifyFlushError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return BatchResult{}, classifyFlushError(fmt.Errorf("commit batch: %w", err))
	}

	return BatchResult{Students: int(copied), Enrollments: int(inserted)}, nil
}

// batchStudentIDs returns the IDs the store assigned to the batch just
// copied, in insertion order. The harness is the sole writer during a run,
// so the last n IDs are exactly this batch.
func (w *PgBatchWriter) batchStudentIDs(ctx context.Context, tx pgx.Tx, n int) ([]int64, error) {
	rows, err := tx.Query(ctx,
		"SELECT student_id FROM students ORDER BY student_id DESC LIMIT $1", n)
	if err != nil {
		return nil, fmt.Errorf("read back batch student ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into insertion order
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	return ids, nil
}

// classifyFlushError separates generator bugs (constraint violations) from
// transient store failures. Only the latter are retryable.
func classifyFlushError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
			return apperrors.NewBenchError(apperrors.ErrGenerationConstraint,
				fmt.Sprintf("store rejected generated batch: %s (%s)", pgErr.Message, pgErr.Code))
		}
	}
	return apperrors.NewBenchError(apperrors.ErrBatchFlush, err.Error())
}
