// Package models contains domain models for chaski.
package models

// Role identifies the author of a conversation message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a request emitted by the generation capability to invoke a
// named tool with JSON-decoded arguments.
type ToolCall struct {
	Args map[string]any `json:"args,omitempty"`
	ID   string         `json:"id"`
	Name string         `json:"name"`
}

// StringArg returns a string argument by key, or "" when absent or not a string.
func (c ToolCall) StringArg(key string) string {
	if c.Args == nil {
		return ""
	}
	s, _ := c.Args[key].(string)
	return s
}

// Message is one entry in a conversation history. The union is tagged by Role:
// human messages carry Content only; assistant messages carry Content and
// optionally ToolCalls; tool messages carry Content as the result payload for
// the call identified by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewHuman creates a human message.
func NewHuman(text string) Message {
	return Message{Role: RoleHuman, Content: text}
}

// NewAssistant creates an assistant message with plain text content.
func NewAssistant(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolResult creates a tool-result message paired to a tool call id.
func NewToolResult(callID, payload string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Content: payload}
}

// HasToolCalls reports whether an assistant message requests tool invocations.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}
