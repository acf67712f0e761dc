// Package llm defines the generation capability consumed by the pipeline and
// provides a primary/backup failover wrapper plus an OpenAI-compatible HTTP
// client.
package llm

import (
	"context"

	"github.com/vigilaperu/chaski/pkg/models"
)

// ToolSpec describes a tool the generation capability may request. Parameters
// follow JSON Schema, matching what chat-completion APIs expect.
type ToolSpec struct {
	Parameters  map[string]any `json:"parameters,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

// Request is one generation call. When OnDelta is non-nil the implementation
// streams text fragments through it as they arrive; tool-invocation fragments
// are never passed to OnDelta. The returned message is always the complete
// response either way.
type Request struct {
	OnDelta   func(token string)
	System    string
	Messages  []models.Message
	Tools     []ToolSpec
	ForceTool bool
}

// Generator is the language-model inference capability. Implementations own
// their transport-level timeouts and retries; the pipeline treats a returned
// error as a capability failure.
type Generator interface {
	Generate(ctx context.Context, req Request) (*models.Message, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, req Request) (*models.Message, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, req Request) (*models.Message, error) {
	return f(ctx, req)
}
