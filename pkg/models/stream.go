package models

// StreamChunk is one entry in a streamed turn. Non-terminal chunks carry a
// single non-empty Token. Exactly one terminal chunk per turn has IsComplete
// set, an empty Token, the concatenated FullMessage, and the producing Stage
// ("answer" or "fallback").
type StreamChunk struct {
	SessionID   string `json:"session_id"`
	Token       string `json:"token"`
	FullMessage string `json:"full_message,omitempty"`
	Stage       string `json:"stage"`
	IsComplete  bool   `json:"is_complete"`
}
