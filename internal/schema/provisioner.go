package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/unibench/unibench/internal/db"
	"github.com/unibench/unibench/internal/pkg/apperrors"
)

// Tables lists the five benchmark tables in foreign-key order: parents
// before children for creation, reversed for teardown.
var Tables = []string{"departments", "teachers", "courses", "students", "enrollments"}

// createTableStatements holds the idempotent DDL for the five tables.
// The grade range is enforced at the store layer, not by the generator.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		department_id SERIAL PRIMARY KEY,
		department_name VARCHAR(100) NOT NULL,
		building VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		teacher_id SERIAL PRIMARY KEY,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		department_id INTEGER NOT NULL,
		hire_date DATE NOT NULL,
		FOREIGN KEY (department_id) REFERENCES departments(department_id)
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		course_id SERIAL PRIMARY KEY,
		course_name VARCHAR(100) NOT NULL,
		credits INTEGER NOT NULL,
		teacher_id INTEGER NOT NULL,
		FOREIGN KEY (teacher_id) REFERENCES teachers(teacher_id)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_id SERIAL PRIMARY KEY,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		enrollment_date DATE NOT NULL,
		date_of_birth DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		enrollment_id SERIAL PRIMARY KEY,
		student_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		semester VARCHAR(20) NOT NULL,
		grade INTEGER NOT NULL CHECK (grade >= 0 AND grade <= 100),
		FOREIGN KEY (student_id) REFERENCES students(student_id),
		FOREIGN KEY (course_id) REFERENCES courses(course_id)
	)`,
}

// CreateTableStatements returns the DDL executed by Provision, in order.
func CreateTableStatements() []string {
	out := make([]string, len(createTableStatements))
	copy(out, createTableStatements)
	return out
}

// Provisioner creates and tears down the benchmark schema
type Provisioner struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewProvisioner creates a new schema provisioner
func NewProvisioner(db *pgxpool.Pool, lgr zerolog.Logger) *Provisioner {
	return &Provisioner{
		db:     db,
		logger: lgr,
	}
}

// Provision creates the five tables inside one transaction. Safe to re-run:
// every statement is guarded with IF NOT EXISTS.
func (p *Provisioner) Provision(ctx context.Context) error {
	err := db.WithTransaction(ctx, p.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range createTableStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProvisioning, err)
	}

	p.logger.Info().Msg("Schema provisioned")
	return nil
}

// Truncate clears all data between scales and resets the SERIAL sequences,
// so every generation pass starts from id 1.
func (p *Provisioner) Truncate(ctx context.Context) error {
	// Reverse FK order
	for i := len(Tables) - 1; i >= 0; i-- {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", Tables[i])
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: truncate %s: %v", apperrors.ErrProvisioning, Tables[i], err)
		}
	}

	p.logger.Info().Msg("All tables truncated")
	return nil
}

// Teardown drops the five tables. Idempotent via IF EXISTS.
func (p *Provisioner) Teardown(ctx context.Context) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", Tables[i])
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: drop %s: %v", apperrors.ErrProvisioning, Tables[i], err)
		}
	}

	p.logger.Info().Msg("Schema torn down")
	return nil
}

// RowCount returns the number of rows in a table
func (p *Provisioner) RowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	err := p.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
