package bench

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgExecutor executes suite queries against PostgreSQL. pgx cancels the
// in-flight statement server-side when the query context expires, which is
// the cooperative cancellation the timeout ceiling relies on.
type PgExecutor struct {
	db *pgxpool.Pool
}

// NewPgExecutor creates an executor on the given pool
func NewPgExecutor(db *pgxpool.Pool) *PgExecutor {
	return &PgExecutor{db: db}
}

// CountRows executes the query and drains the result set, returning the row
// count. Draining matters: elapsed time must include delivering the full
// result, not just the first row.
func (e *PgExecutor) CountRows(ctx context.Context, sql string, args ...interface{}) (int, error) {
	rows, err := e.db.Query(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("result iteration failed: %w", err)
	}

	return count, nil
}
