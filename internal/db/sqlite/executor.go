package sqlite

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vigilaperu/chaski/pkg/models"
)

// Executor runs model-generated queries against the procurement database.
// Generated SQL varies per question, so it bypasses the statement cache.
type Executor struct {
	store *Store
}

// NewExecutor creates an executor over an open store.
func NewExecutor(store *Store) *Executor {
	return &Executor{store: store}
}

// Dialect names the SQL dialect for prompt construction.
func (e *Executor) Dialect() string { return "SQLite" }

// Run executes a query and materializes every row.
func (e *Executor) Run(ctx context.Context, query string) (*models.QueryResult, error) {
	rows, err := e.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &models.QueryResult{Query: query, Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// ListTables returns the user tables in name order.
func (e *Executor) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name ASC
	`
	rows, err := e.store.QueryContext(ctx, query)
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

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DescribeSchema renders the column layout of one table as readable text.
// The table name is interpolated into a PRAGMA, so it is validated first.
func (e *Executor) DescribeSchema(ctx context.Context, table string) (string, error) {
	if !identPattern.MatchString(table) {
		return "", fmt.Errorf("nombre de tabla inválido: %q", table)
	}

	rows, err := e.store.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "Tabla %s:\n", table)
	found := false
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
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
