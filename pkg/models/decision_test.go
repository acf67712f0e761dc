package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTopicDecision(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want TopicDecision
	}{
		{"uppercase yes", "YES", TopicOn},
		{"lowercase yes", "yes", TopicOn},
		{"mixed case no", "No", TopicOff},
		{"padded yes", "  YES\n", TopicOn},
		{"empty", "", TopicOff},
		{"explanatory answer", "YES, because the question mentions contracts", TopicOff},
		{"spanish si", "SÍ", TopicOff},
		{"garbage", "maybe?", TopicOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTopicDecision(tt.raw))
		})
	}
}

func TestTopicDecisionString(t *testing.T) {
	assert.Equal(t, "UNSET", TopicUnset.String())
	assert.Equal(t, "ON_TOPIC", TopicOn.String())
	assert.Equal(t, "OFF_TOPIC", TopicOff.String())
}

func TestMessageHasToolCalls(t *testing.T) {
	assert.False(t, NewHuman("hola").HasToolCalls())
	assert.False(t, NewAssistant("respuesta").HasToolCalls())

	withCalls := Message{
		Role:      RoleAssistant,
		ToolCalls: []ToolCall{{ID: "tc-1", Name: "buscar_web"}},
	}
	assert.True(t, withCalls.HasToolCalls())

	// Tool calls on a non-assistant message are not a valid request.
	bogus := Message{Role: RoleTool, ToolCalls: []ToolCall{{ID: "tc-2", Name: "x"}}}
	assert.False(t, bogus.HasToolCalls())
}

func TestToolCallStringArg(t *testing.T) {
	call := ToolCall{Args: map[string]any{"pregunta": "asistencias de octubre", "n": 3}}
	assert.Equal(t, "asistencias de octubre", call.StringArg("pregunta"))
	assert.Equal(t, "", call.StringArg("n"))
	assert.Equal(t, "", call.StringArg("missing"))
	assert.Equal(t, "", ToolCall{}.StringArg("pregunta"))
}
