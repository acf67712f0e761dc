// Package sqlagent converts natural-language questions about structured
// public records into validated, executed, read-only SQL queries. The agent
// runs a fixed sub-stage order (discover schema, inspect one table, generate
// a candidate query, validate it, execute) with a bounded regeneration loop
// on execution failure.
package sqlagent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/llm"
	"github.com/vigilaperu/chaski/internal/prompts"
	"github.com/vigilaperu/chaski/pkg/models"
)

// maxRetries bounds regeneration after a failed execution. With the initial
// attempt this allows at most 4 query generations per turn.
const maxRetries = 3

// Executor is the external query-execution capability.
type Executor interface {
	Run(ctx context.Context, sql string) (*models.QueryResult, error)
	ListTables(ctx context.Context) ([]string, error)
	DescribeSchema(ctx context.Context, table string) (string, error)
	Dialect() string
}

// Agent generates, validates, executes, and retries read-only queries.
type Agent struct {
	gen  llm.Generator
	exec Executor
}

// New creates a structured-query agent.
func New(gen llm.Generator, exec Executor) *Agent {
	return &Agent{gen: gen, exec: exec}
}

var schemaSpec = llm.ToolSpec{
	Name:        "consultar_esquema",
	Description: "Devuelve el esquema (columnas y tipos) de una tabla de la base de datos.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tabla": map[string]any{"type": "string", "description": "Nombre de la tabla a inspeccionar"},
		},
		"required": []string{"tabla"},
	},
}

var execSpec = llm.ToolSpec{
	Name:        "ejecutar_sql",
	Description: "Ejecuta una consulta SQL de solo lectura y devuelve las filas resultantes.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"consulta": map[string]any{"type": "string", "description": "La consulta SQL a ejecutar"},
		},
		"required": []string{"consulta"},
	},
}

// Ask answers a question with raw column/row data. It never returns an
// error: failures degrade to an empty result carrying the last error as a
// row-level diagnostic, so the answer stage can explain the shortfall.
func (a *Agent) Ask(ctx context.Context, question string) *models.QueryResult {
	started := time.Now()

	// Discover schema: always first, unconditionally.
	tables, err := a.exec.ListTables(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("SQL agent could not list tables")
		return errorResult("", fmt.Sprintf("listar tablas: %s", err))
	}

	msgs := []models.Message{
		models.NewHuman(question),
		models.NewAssistant("Tablas disponibles: " + strings.Join(tables, ", ")),
	}

	// Inspect schema: the model must pick a table via the schema tool.
	inspect, err := a.gen.Generate(ctx, llm.Request{
		Messages:  msgs,
		Tools:     []llm.ToolSpec{schemaSpec},
		ForceTool: true,
	})
	if err != nil {
		return errorResult("", fmt.Sprintf("inspección de esquema: %s", err))
	}
	if inspect.HasToolCalls() {
		call := inspect.ToolCalls[0]
		payload, derr := a.exec.DescribeSchema(ctx, call.StringArg("tabla"))
		if derr != nil {
			payload = "Error: " + derr.Error()
		}
		msgs = append(msgs, *inspect, models.NewToolResult(call.ID, payload))
	}

	var lastQuery, lastErr string
	attempts := 0
	for {
		// Generate a candidate query from scratch.
		resp, err := a.gen.Generate(ctx, llm.Request{
			System:   prompts.SQLGenerate(a.exec.Dialect()),
			Messages: msgs,
			Tools:    []llm.ToolSpec{execSpec},
		})
		if err != nil {
			return errorResult(lastQuery, fmt.Sprintf("generación de consulta: %s", err))
		}
		if !resp.HasToolCalls() {
			// The model answered directly: no executable query this turn.
			return &models.QueryResult{Query: "", Columns: []string{}, Rows: [][]any{}}
		}
		call := resp.ToolCalls[0]
		query := call.StringArg("consulta")

		// Validate: an independent pass over the candidate, ending in a
		// forced execute call that carries the (possibly corrected) query.
		check, cerr := a.gen.Generate(ctx, llm.Request{
			System:    prompts.SQLCheck(a.exec.Dialect()),
			Messages:  []models.Message{models.NewHuman(query)},
			Tools:     []llm.ToolSpec{execSpec},
			ForceTool: true,
		})
		if cerr == nil && check.HasToolCalls() {
			if corrected := check.ToolCalls[0].StringArg("consulta"); corrected != "" {
				query = corrected
			}
		}

		result, xerr := a.execute(ctx, query)
		if xerr == nil {
			log.Debug().
				Str("query", query).
				Int("rows", len(result.Rows)).
				Dur("elapsed", time.Since(started)).
				Msg("SQL agent query succeeded")
			return result
		}

		lastQuery, lastErr = query, xerr.Error()
		msgs = append(msgs, *resp, models.NewToolResult(call.ID, "Error: "+lastErr))

		attempts++
		if attempts > maxRetries {
			break
		}
		log.Debug().Int("attempt", attempts).Str("error", lastErr).Msg("SQL agent retrying")
	}

	log.Warn().Str("query", lastQuery).Str("error", lastErr).Msg("SQL agent exhausted retries")
	return errorResult(lastQuery, lastErr)
}

// execute enforces the read-only guard, runs the query, and normalizes the
// returned values to JSON-safe scalars.
func (a *Agent) execute(ctx context.Context, query string) (*models.QueryResult, error) {
	if !isReadOnly(query) {
		return nil, fmt.Errorf("solo se permiten consultas de lectura")
	}

	result, err := a.exec.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	normalized := &models.QueryResult{
		Query:   query,
		Columns: result.Columns,
		Rows:    make([][]any, len(result.Rows)),
	}
	if normalized.Columns == nil {
		normalized.Columns = []string{}
	}
	for i, row := range result.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = normalizeValue(v)
		}
		normalized.Rows[i] = out
	}
	return normalized, nil
}

// isReadOnly accepts only single SELECT/WITH statements. Leading comments are
// skipped; stacked statements are rejected outright.
func isReadOnly(query string) bool {
	q := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(q, "--"):
			if idx := strings.IndexByte(q, '\n'); idx >= 0 {
				q = strings.TrimSpace(q[idx+1:])
				continue
			}
			return false
		case strings.HasPrefix(q, "/*"):
			if idx := strings.Index(q, "*/"); idx >= 0 {
				q = strings.TrimSpace(q[idx+2:])
				continue
			}
			return false
		}
		break
	}

	q = strings.TrimSuffix(strings.TrimSpace(q), ";")
	if strings.ContainsRune(q, ';') {
		return false
	}

	first, _, _ := strings.Cut(q, " ")
	switch strings.ToUpper(first) {
	case "SELECT", "WITH":
		return true
	default:
		return false
	}
}

// normalizeValue converts driver values to JSON-safe scalars: timestamps to
// ISO-8601 text, byte slices to strings.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return v
	}
}

// errorResult preserves the degraded-output contract: empty columns, the
// last query text, and the error embedded as a row-level diagnostic.
func errorResult(query, msg string) *models.QueryResult {
	rows := [][]any{}
	if msg != "" {
		rows = [][]any{{"Error: " + msg}}
	}
	return &models.QueryResult{Query: query, Columns: []string{}, Rows: rows}
}
