package llm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/vigilaperu/chaski/pkg/models"
)

// OpenAIConfig configures an OpenAI-compatible chat-completions client.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAI is a thin client for any OpenAI-compatible chat-completions
// endpoint. It implements Generator including token streaming.
type OpenAI struct {
	http *http.Client
	cfg  OpenAIConfig
}

// NewOpenAI creates a client. BaseURL defaults to the public OpenAI API.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenAI{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type wireToolCall struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
	Index int `json:"index,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*models.Message, error) {
	payload := map[string]any{
		"model":       o.cfg.Model,
		"temperature": o.cfg.Temperature,
		"messages":    o.wireMessages(req),
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]any, 0, len(req.Tools))
		for _, t := range req.Tools {
			params := t.Parameters
			if params == nil {
				params = map[string]any{"type": "object", "properties": map[string]any{}}
			}
			tools = append(tools, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        t.Name,
					"description": t.Description,
					"parameters":  params,
				},
			})
		}
		payload["tools"] = tools
		if req.ForceTool {
			payload["tool_choice"] = "required"
		}
	}
	if req.OnDelta != nil {
		payload["stream"] = true
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(o.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chat completion: status %d: %s", resp.StatusCode, string(errBody))
	}

	if req.OnDelta != nil {
		return o.readStream(resp.Body, req.OnDelta)
	}
	return o.readComplete(resp.Body)
}

// wireMessages converts the pipeline history to API message objects.
func (o *OpenAI) wireMessages(req Request) []wireMessage {
	out := make([]wireMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, wireMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		wm := wireMessage{Content: m.Content}
		switch m.Role {
		case models.RoleHuman:
			wm.Role = "user"
		case models.RoleAssistant:
			wm.Role = "assistant"
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Args)
				wtc := wireToolCall{ID: tc.ID, Type: "function"}
				wtc.Function.Name = tc.Name
				wtc.Function.Arguments = string(args)
				wm.ToolCalls = append(wm.ToolCalls, wtc)
			}
		case models.RoleTool:
			wm.Role = "tool"
			wm.ToolCallID = m.ToolCallID
		}
		out = append(out, wm)
	}
	return out
}

func (o *OpenAI) readComplete(r io.Reader) (*models.Message, error) {
	var parsed struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response")
	}
	return fromWire(parsed.Choices[0].Message), nil
}

// readStream consumes an SSE chat-completions stream, forwarding text deltas
// and accumulating tool-call fragments into complete calls.
func (o *OpenAI) readStream(r io.Reader, onDelta func(string)) (*models.Message, error) {
	var content strings.Builder
	toolCalls := map[int]*wireToolCall{}
	maxIndex := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content   string         `json:"content"`
					ToolCalls []wireToolCall `json:"tool_calls"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			content.WriteString(delta.Content)
			onDelta(delta.Content)
		}
		for _, tc := range delta.ToolCalls {
			acc, ok := toolCalls[tc.Index]
			if !ok {
				copied := tc
				toolCalls[tc.Index] = &copied
				if tc.Index > maxIndex {
					maxIndex = tc.Index
				}
				continue
			}
			if tc.ID != "" {
				acc.ID = tc.ID
			}
			if tc.Function.Name != "" {
				acc.Function.Name = tc.Function.Name
			}
			acc.Function.Arguments += tc.Function.Arguments
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	msg := wireMessage{Role: "assistant", Content: content.String()}
	for i := 0; i <= maxIndex; i++ {
		if tc, ok := toolCalls[i]; ok {
			msg.ToolCalls = append(msg.ToolCalls, *tc)
		}
	}
	return fromWire(msg), nil
}

// fromWire converts an API message to the pipeline message union.
func fromWire(wm wireMessage) *models.Message {
	msg := &models.Message{Role: models.RoleAssistant, Content: wm.Content}
	for _, wtc := range wm.ToolCalls {
		call := models.ToolCall{ID: wtc.ID, Name: wtc.Function.Name}
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		if wtc.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(wtc.Function.Arguments), &call.Args)
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	return msg
}
