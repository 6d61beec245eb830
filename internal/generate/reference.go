package generate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/db"
)

// ReferenceOptions sizes the scale-invariant tables
type ReferenceOptions struct {
	Departments int
	Teachers    int
	Courses     int
	Seed        int64
}

// ReferenceGenerator produces the small, scale-invariant tables:
// departments, teachers and courses. Sizes do not vary with scale.
type ReferenceGenerator struct {
	db     *pgxpool.Pool
	rnd    *rand.Rand
	opts   ReferenceOptions
	logger zerolog.Logger
}

// NewReferenceGenerator creates a reference data generator
func NewReferenceGenerator(db *pgxpool.Pool, opts ReferenceOptions, lgr zerolog.Logger) *ReferenceGenerator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ReferenceGenerator{
		db:     db,
		rnd:    rand.New(rand.NewSource(seed)),
		opts:   opts,
		logger: lgr,
	}
}

// Generate populates departments, teachers and courses inside a single
// transaction and returns the provisioned course IDs, which are the only
// legal foreign-key targets for generated enrollments. If reference data
// already exists the tables are left untouched and the existing course IDs
// are returned, so re-running is safe.
func (g *ReferenceGenerator) Generate(ctx context.Context) ([]int64, error) {
	var existing int64
	if err := g.db.QueryRow(ctx, "SELECT COUNT(*) FROM departments").Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to check existing reference data: %w", err)
	}
	if existing > 0 {
		g.logger.Info().Msg("Reference data already present, skipping generation")
		return g.loadCourseIDs(ctx)
	}

	var courseIDs []int64
	err := db.WithTransaction(ctx, g.db, func(ctx context.Context, tx pgx.Tx) error {
		departmentIDs, err := g.insertDepartments(ctx, tx)
		if err != nil {
			return err
		}

		teacherIDs, err := g.insertTeachers(ctx, tx, departmentIDs)
		if err != nil {
			return err
		}

		courseIDs, err = g.insertCourses(ctx, tx, teacherIDs)
		if err != nil {
			return err
		}

		g.logger.Info().
			Int("departments", len(departmentIDs)).
			Int("teachers", len(teacherIDs)).
			Int("courses", len(courseIDs)).
			Msg("Reference data generated")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference data: %w", err)
	}

	return courseIDs, nil
}

func (g *ReferenceGenerator) insertDepartments(ctx context.Context, tx pgx.Tx) ([]int64, error) {
	ids := make([]int64, 0, g.opts.Departments)
	for i := 0; i < g.opts.Departments; i++ {
		dept := departmentPool[i%len(departmentPool)]
		name := dept.Name
		if i >= len(departmentPool) {
			name = fmt.Sprintf("%s %d", dept.Name, i/len(departmentPool)+1)
		}

		var id int64
		err := tx.QueryRow(ctx,
			"INSERT INTO departments (department_name, building) VALUES ($1, $2) RETURNING department_id",
			name, dept.Building).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert department %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *ReferenceGenerator) insertTeachers(ctx context.Context, tx pgx.Tx, departmentIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, g.opts.Teachers)
	for i := 0; i < g.opts.Teachers; i++ {
		first := firstNames[g.rnd.Intn(len(firstNames))]
		last := lastNames[g.rnd.Intn(len(lastNames))]
		// The counter suffix keeps emails unique regardless of name pool collisions
		email := fmt.Sprintf("%s.%s.%d@university.edu",
			strings.ToLower(first), strings.ToLower(last), i)
		departmentID := departmentIDs[g.rnd.Intn(len(departmentIDs))]
		hireDate := daysAgo(g.rnd, 20*365)

		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO teachers (first_name, last_name, email, department_id, hire_date)
			 VALUES ($1, $2, $3, $4, $5) RETURNING teacher_id`,
			first, last, email, departmentID, hireDate).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert teacher %q: %w", email, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *ReferenceGenerator) insertCourses(ctx context.Context, tx pgx.Tx, teacherIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, g.opts.Courses)
	for i := 0; i < g.opts.Courses; i++ {
		name := CourseName(g.rnd)
		credits := 1 + g.rnd.Intn(4)
		teacherID := teacherIDs[g.rnd.Intn(len(teacherIDs))]

		var id int64
		err := tx.QueryRow(ctx,
			"INSERT INTO courses (course_name, credits, teacher_id) VALUES ($1, $2, $3) RETURNING course_id",
			name, credits, teacherID).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert course %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *ReferenceGenerator) loadCourseIDs(ctx context.Context) ([]int64, error) {
	rows, err := g.db.Query(ctx, "SELECT course_id FROM courses ORDER BY course_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load course ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
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
	return ids, nil
}

// CourseName composes a course name from the template and subject pools
func CourseName(rnd *rand.Rand) string {
	template := courseTemplates[rnd.Intn(len(courseTemplates))]
	subject := courseSubjects[rnd.Intn(len(courseSubjects))]
	return template + " " + subject
}

// daysAgo returns a date a uniform number of days in the past, capped at max
func daysAgo(rnd *rand.Rand, max int) time.Time {
	return time.Now().AddDate(0, 0, -rnd.Intn(max)).Truncate(24 * time.Hour)
}
