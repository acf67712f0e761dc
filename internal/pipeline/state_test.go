package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextValidTransitions(t *testing.T) {
	tests := []struct {
		from  Stage
		event Event
		want  Stage
	}{
		{StageStart, EventBegin, StageRewrite},
		{StageRewrite, EventRewritten, StageClassify},
		{StageClassify, EventOnTopic, StageAnswer},
		{StageClassify, EventOffTopic, StageFallback},
		{StageAnswer, EventToolCallsRequested, StageTools},
		{StageTools, EventToolResultsReady, StageAnswer},
		{StageAnswer, EventFinalResponse, StageEnd},
		{StageFallback, EventFinalResponse, StageEnd},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.event)
		require.NoError(t, err, "%s on %s", tt.from, tt.event)
		assert.Equal(t, tt.want, got)
	}
}

func TestNextRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		from  Stage
		event Event
	}{
		{StageStart, EventFinalResponse},
		{StageRewrite, EventOnTopic},
		{StageClassify, EventBegin},
		{StageFallback, EventToolCallsRequested},
		{StageEnd, EventBegin},
	}
	for _, tt := range tests {
		_, err := Next(tt.from, tt.event)
		assert.Error(t, err, "%s on %s", tt.from, tt.event)
	}
}

func TestStageWireNames(t *testing.T) {
	assert.Equal(t, "answer", StageAnswer.String())
	assert.Equal(t, "fallback", StageFallback.String())
}
