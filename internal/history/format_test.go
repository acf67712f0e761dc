package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vigilaperu/chaski/pkg/models"
)

func TestFormatContextPairsAndExcludesLast(t *testing.T) {
	msgs := []models.Message{
		models.NewHuman("¿Cuánto contrató la empresa Alfa?"),
		models.NewAssistant("La empresa Alfa contrató por 2 millones de soles."),
		models.NewHuman("¿Y en qué año?"),
	}

	got := FormatContext(msgs, 150, true, 4)

	assert.Contains(t, got, "Q: ¿Cuánto contrató la empresa Alfa?")
	assert.Contains(t, got, "A: La empresa Alfa contrató por 2 millones de soles.")
	// The newest question is under test, not context.
	assert.NotContains(t, got, "¿Y en qué año?")
}

func TestFormatContextTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("palabra ", 40) // well over 150 chars
	msgs := []models.Message{
		models.NewHuman("pregunta"),
		models.NewAssistant(long),
		models.NewHuman("otra"),
	}

	got := FormatContext(msgs, 150, true, 4)

	aLine := ""
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "A: ") {
			aLine = strings.TrimPrefix(line, "A: ")
		}
	}
	assert.True(t, strings.HasSuffix(aLine, "…"), "truncated answer must end with ellipsis")
	assert.LessOrEqual(t, len([]rune(aLine)), 151)
	// Cut at a word boundary: no partial "palabr" fragment before the ellipsis.
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(aLine, "…"), "palabra"))
}

func TestFormatContextWindowsLastN(t *testing.T) {
	var msgs []models.Message
	for i := 0; i < 6; i++ {
		msgs = append(msgs,
			models.NewHuman("pregunta "+string(rune('a'+i))),
			models.NewAssistant("respuesta "+string(rune('a'+i))),
		)
	}
	msgs = append(msgs, models.NewHuman("la última"))

	got := FormatContext(msgs, 150, true, 4)

	assert.NotContains(t, got, "pregunta a")
	assert.NotContains(t, got, "pregunta b")
	assert.Contains(t, got, "pregunta c")
	assert.Contains(t, got, "pregunta f")
	assert.Equal(t, 4, strings.Count(got, "Q: "))
}

func TestFormatContextUnansweredQuestion(t *testing.T) {
	msgs := []models.Message{
		models.NewHuman("primera sin respuesta"),
		models.NewHuman("segunda"),
		models.NewAssistant("respuesta a la segunda"),
		models.NewHuman("tercera"),
	}

	got := FormatContext(msgs, 150, true, 4)

	assert.Contains(t, got, "Q: primera sin respuesta\nA: [Pendiente de responder...]")
	assert.Contains(t, got, "Q: segunda\nA: respuesta a la segunda")
}

func TestFormatContextSkipsToolEntries(t *testing.T) {
	msgs := []models.Message{
		models.NewHuman("pregunta"),
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{ID: "tc-1", Name: "buscar_web"}}},
		models.NewToolResult("tc-1", `{"documentos":["..."]}`),
		models.NewHuman("siguiente"),
	}

	got := FormatContext(msgs, 150, true, 4)

	// The tool-requesting assistant entry pairs with the question but carries
	// no text; tool results never appear.
	assert.NotContains(t, got, "documentos")
	assert.Contains(t, got, "Q: pregunta")
}

func TestFormatContextEmpty(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil, 150, true, 4))
	assert.Equal(t, "", FormatContext([]models.Message{models.NewHuman("solo una")}, 150, true, 4))
}

func TestLastQuestion(t *testing.T) {
	msgs := []models.Message{
		models.NewHuman("primera"),
		models.NewAssistant("respuesta"),
		models.NewHuman("  segunda  "),
		models.NewAssistant("otra"),
	}
	assert.Equal(t, "segunda", LastQuestion(msgs))
	assert.Equal(t, "", LastQuestion(nil))
	assert.Equal(t, "", LastQuestion([]models.Message{models.NewAssistant("sin humano")}))
}
