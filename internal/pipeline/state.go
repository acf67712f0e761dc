// Package pipeline orchestrates one conversational turn: rewrite the
// question, gate it by topic relevance, then either answer with tools or
// fall back to a polite redirect. The stage graph is a fixed finite-state
// machine; routing decisions are events fed to a pure transition function.
package pipeline

import "fmt"

// Stage is one step of the turn state machine.
type Stage int

const (
	StageStart Stage = iota
	StageRewrite
	StageClassify
	StageAnswer
	StageTools
	StageFallback
	StageEnd
)

// String returns the wire name of the stage.
func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageRewrite:
		return "rewrite"
	case StageClassify:
		return "classify"
	case StageAnswer:
		return "answer"
	case StageTools:
		return "tools"
	case StageFallback:
		return "fallback"
	case StageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is an outcome that advances the state machine.
type Event int

const (
	EventBegin Event = iota
	EventRewritten
	EventOnTopic
	EventOffTopic
	EventToolCallsRequested
	EventToolResultsReady
	EventFinalResponse
)

// String returns a readable event name for logs.
func (e Event) String() string {
	switch e {
	case EventBegin:
		return "begin"
	case EventRewritten:
		return "rewritten"
	case EventOnTopic:
		return "on_topic"
	case EventOffTopic:
		return "off_topic"
	case EventToolCallsRequested:
		return "tool_calls_requested"
	case EventToolResultsReady:
		return "tool_results_ready"
	case EventFinalResponse:
		return "final_response"
	default:
		return "unknown"
	}
}

// Next is the pure transition function of the turn state machine. Any
// (stage, event) pair outside the graph is a programming error.
func Next(s Stage, e Event) (Stage, error) {
	switch {
	case s == StageStart && e == EventBegin:
		return StageRewrite, nil
	case s == StageRewrite && e == EventRewritten:
		return StageClassify, nil
	case s == StageClassify && e == EventOnTopic:
		return StageAnswer, nil
	case s == StageClassify && e == EventOffTopic:
		return StageFallback, nil
	case s == StageAnswer && e == EventToolCallsRequested:
		return StageTools, nil
	case s == StageTools && e == EventToolResultsReady:
		return StageAnswer, nil
	case s == StageAnswer && e == EventFinalResponse:
		return StageEnd, nil
	case s == StageFallback && e == EventFinalResponse:
		return StageEnd, nil
	default:
		return s, fmt.Errorf("no transition from %s on %s", s, e)
	}
}
