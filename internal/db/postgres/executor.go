// Package postgres runs the procurement query agent against a PostgreSQL
// database over a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/pkg/models"
)

const (
	connectAttempts = 5
	connectBackoff  = 3 * time.Second
)

// Executor implements query execution over a pgx pool.
type Executor struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn, retrying while the database comes up.
// Deployments start the engine and the database together, so the first
// attempts routinely race the database's readiness.
func Connect(ctx context.Context, dsn string) (*Executor, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Executor{pool: pool}, nil
			}
			pool.Close()
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("PostgreSQL not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("connect to PostgreSQL after %d attempts: %w", connectAttempts, lastErr)
}

// Close releases the pool.
func (e *Executor) Close() {
	e.pool.Close()
}

// Dialect names the SQL dialect for prompt construction.
func (e *Executor) Dialect() string { return "PostgreSQL" }

// Run executes a query and materializes every row.
func (e *Executor) Run(ctx context.Context, query string) (*models.QueryResult, error) {
	rows, err := e.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	result := &models.QueryResult{Query: query, Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// ListTables returns the public-schema tables in name order.
func (e *Executor) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name ASC
	`
	rows, err := e.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DescribeSchema renders the column layout of one table as readable text.
func (e *Executor) DescribeSchema(ctx context.Context, table string) (string, error) {
	const query = `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position ASC
	`
	rows, err := e.pool.Query(ctx, query, table)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "Tabla %s:\n", table)
	found := false
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  %s %s\n", name, typ)
		found = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("la tabla %q no existe", table)
	}
	return b.String(), nil
}

// normalize converts pgx driver values into plain scalars. Monetary columns
// arrive as pgtype.Numeric, which does not serialize usefully as-is.
func normalize(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
