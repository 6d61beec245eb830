package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// Index is one member of the fixed secondary index set
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// CreateSQL returns the existence-guarded create statement
func (i Index) CreateSQL() string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
		i.Name, i.Table, strings.Join(i.Columns, ", "))
}

// DropSQL returns the existence-guarded drop statement
func (i Index) DropSQL() string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", i.Name)
}

// IndexSet is the fixed set of secondary indexes applied between the
// without-index and with-index measurement passes.
var IndexSet = []Index{
	{Name: "idx_enrollments_student_id", Table: "enrollments", Columns: []string{"student_id"}},
	{Name: "idx_enrollments_course_id", Table: "enrollments", Columns: []string{"course_id"}},
	{Name: "idx_enrollments_semester", Table: "enrollments", Columns: []string{"semester"}},
	{Name: "idx_courses_teacher_id", Table: "courses", Columns: []string{"teacher_id"}},
	{Name: "idx_courses_course_name", Table: "courses", Columns: []string{"course_name"}},
	{Name: "idx_teachers_department_id", Table: "teachers", Columns: []string{"department_id"}},
	{Name: "idx_students_enrollment_date", Table: "students", Columns: []string{"enrollment_date"}},
}

// IndexManager creates and drops the secondary index set
type IndexManager struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *pgxpool.Pool, lgr zerolog.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: lgr,
	}
}

// CreateAll creates every index in the set. Idempotent: re-running against
// an already-indexed store produces no error and no duplicate objects.
func (m *IndexManager) CreateAll(ctx context.Context) error {
	for _, idx := range IndexSet {
		if _, err := m.db.Exec(ctx, idx.CreateSQL()); err != nil {
			return fmt.Errorf("%w: create index %s: %v", apperrors.ErrProvisioning, idx.Name, err)
		}
		m.logger.Info().Str("index", idx.Name).Str("table", idx.Table).Msg("Index created")
	}
	return nil
}

// DropAll drops every index in the set. Idempotent via IF EXISTS.
func (m *IndexManager) DropAll(ctx context.Context) error {
	for _, idx := range IndexSet {
		if _, err := m.db.Exec(ctx, idx.DropSQL()); err != nil {
			return fmt.Errorf("%w: drop index %s: %v", apperrors.ErrProvisioning, idx.Name, err)
		}
	}
	m.logger.Info().Int("count", len(IndexSet)).Msg("Indexes dropped")
	return nil
}
