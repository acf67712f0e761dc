package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/llm"
	"github.com/vigilaperu/chaski/internal/retrieval"
	"github.com/vigilaperu/chaski/internal/sqlagent"
	"github.com/vigilaperu/chaski/internal/websearch"
	"github.com/vigilaperu/chaski/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Tool names exposed to the answer stage.
const (
	toolAttendance      = "buscar_documentos_asistencia"
	toolAttendanceRange = "obtener_rango_asistencia"
	toolVoting          = "consultar_votacion"
	toolVotingRange     = "obtener_rango_votaciones"
	toolProcurement     = "consultar_contrataciones"
	toolWeb             = "buscar_web"
)

// ToolSet aggregates the capabilities the answer stage may invoke. Dispatch
// is a static switch on tool name; there is no dynamic registration.
type ToolSet struct {
	Attendance  *retrieval.Tool
	Voting      *retrieval.Tool
	Procurement *sqlagent.Agent
	Web         websearch.Client
}

func questionParams(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pregunta": map[string]any{"type": "string", "description": desc},
		},
		"required": []string{"pregunta"},
	}
}

var emptyParams = map[string]any{"type": "object", "properties": map[string]any{}}

// Specs describes the tool set to the generation capability.
func (t *ToolSet) Specs() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        toolAttendance,
			Description: "Busca registros de asistencia de congresistas a sesiones del pleno. Acepta fechas dentro de la pregunta.",
			Parameters:  questionParams("La pregunta sobre asistencias, incluyendo fechas si las hay"),
		},
		{
			Name:        toolAttendanceRange,
			Description: "Devuelve el rango de fechas cubierto por los registros de asistencia.",
			Parameters:  emptyParams,
		},
		{
			Name:        toolVoting,
			Description: "Busca registros de votaciones de congresistas en el pleno. Acepta fechas dentro de la pregunta.",
			Parameters:  questionParams("La pregunta sobre votaciones, incluyendo fechas si las hay"),
		},
		{
			Name:        toolVotingRange,
			Description: "Devuelve el rango de fechas cubierto por los registros de votaciones.",
			Parameters:  emptyParams,
		},
		{
			Name:        toolProcurement,
			Description: "Consulta la base de datos de contrataciones públicas (contratos, montos, proveedores) y devuelve filas de datos.",
			Parameters:  questionParams("La pregunta sobre contrataciones públicas"),
		},
		{
			Name:        toolWeb,
			Description: "Busca información general en la web, por ejemplo sobre la identidad de un congresista.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"consulta": map[string]any{"type": "string", "description": "La consulta de búsqueda web"},
				},
				"required": []string{"consulta"},
			},
		},
	}
}

// Dispatch runs every requested call and returns one ToolResult per call, in
// request order. Calls run concurrently; failures and panics degrade to
// error-bearing results so the answer stage can keep going.
func (t *ToolSet) Dispatch(ctx context.Context, calls []models.ToolCall) []models.Message {
	results := make([]models.Message, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			results[i] = models.NewToolResult(call.ID, t.invoke(gctx, call))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// invoke runs one tool call, converting any failure into a readable payload.
func (t *ToolSet) invoke(ctx context.Context, call models.ToolCall) (payload string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", call.Name).Any("panic", r).Msg("Tool handler panicked")
			payload = fmt.Sprintf("Ocurrió un error al ejecutar la herramienta %s", call.Name)
		}
	}()

	switch call.Name {
	case toolAttendance:
		return strings.Join(t.Attendance.Fetch(ctx, call.StringArg("pregunta")), "\n\n")
	case toolAttendanceRange:
		return retrieval.AttendanceRange()
	case toolVoting:
		return strings.Join(t.Voting.Fetch(ctx, call.StringArg("pregunta")), "\n\n")
	case toolVotingRange:
		return retrieval.VotingRange()
	case toolProcurement:
		result := t.Procurement.Ask(ctx, call.StringArg("pregunta"))
		encoded, err := json.Marshal(result)
		if err != nil {
			return fmt.Sprintf("Ocurrió un error al codificar el resultado: %s", err)
		}
		return string(encoded)
	case toolWeb:
		results, err := t.Web.Lookup(ctx, call.StringArg("consulta"))
		if err != nil {
			log.Warn().Err(err).Msg("Web lookup failed")
			return fmt.Sprintf("Ocurrió un error al buscar en la web: %s", err)
		}
		return websearch.Format(results)
	default:
		return fmt.Sprintf("Herramienta desconocida: %s", call.Name)
	}
}
