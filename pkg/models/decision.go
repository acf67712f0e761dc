package models

import "strings"

// TopicDecision is the outcome of the topic classification stage.
type TopicDecision int

const (
	TopicUnset TopicDecision = iota
	TopicOn
	TopicOff
)

// String returns the decision name used in transcripts and logs.
func (d TopicDecision) String() string {
	switch d {
	case TopicOn:
		return "ON_TOPIC"
	case TopicOff:
		return "OFF_TOPIC"
	default:
		return "UNSET"
	}
}

// ParseTopicDecision normalizes raw classifier output. Only a YES/NO answer
// (case-insensitive, surrounding whitespace ignored) is accepted; anything
// else fails closed to TopicOff so ambiguous output never grants tool access.
func ParseTopicDecision(raw string) TopicDecision {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES":
		return TopicOn
	case "NO":
		return TopicOff
	default:
		return TopicOff
	}
}
