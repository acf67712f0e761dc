package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/history"
	"github.com/vigilaperu/chaski/internal/llm"
	"github.com/vigilaperu/chaski/internal/prompts"
	"github.com/vigilaperu/chaski/internal/session"
	"github.com/vigilaperu/chaski/pkg/models"
)

// Limits for history rendering in the classify stage.
const (
	classifyAnswerChars = 150
	classifyLastPairs   = 4
)

// rewriteGuardFactor bounds how much longer a rewrite may be than the
// original question before it is discarded as a runaway completion.
const rewriteGuardFactor = 3

// StageGenerators holds one generation capability per stage that calls the
// model. Each is typically a failover pair over different model configs.
type StageGenerators struct {
	Rewrite  llm.Generator
	Classify llm.Generator
	Answer   llm.Generator
	Fallback llm.Generator
}

// Archiver receives committed turn messages for offline audit. Optional.
type Archiver interface {
	Append(ctx context.Context, sessionID string, msg models.Message) error
}

// Engine drives turns through the stage machine over shared session state.
type Engine struct {
	gens     StageGenerators
	tools    *ToolSet
	sessions *session.Store
	archive  Archiver
}

// New creates an engine. archive may be nil.
func New(gens StageGenerators, tools *ToolSet, sessions *session.Store, archive Archiver) *Engine {
	return &Engine{gens: gens, tools: tools, sessions: sessions, archive: archive}
}

// Submit processes one turn end to end and returns the final message and the
// session id (generated when the caller passed none).
func (e *Engine) Submit(ctx context.Context, query, sessionID string) (string, string, error) {
	sess := e.sessions.Acquire(sessionID)
	defer sess.Release()

	final, _, err := e.runTurn(ctx, sess, query, nil)
	if err != nil {
		return "", sess.ID, err
	}
	return final, sess.ID, nil
}

// SubmitStream processes one turn, pushing answer tokens as they arrive. The
// returned channel yields zero or more token chunks followed, on normal
// completion, by exactly one terminal chunk carrying the concatenation of
// every forwarded token and the producing stage. On turn failure the channel
// closes without a terminal chunk and no session mutation is committed.
func (e *Engine) SubmitStream(ctx context.Context, query, sessionID string) <-chan models.StreamChunk {
	out := make(chan models.StreamChunk)

	go func() {
		defer close(out)

		sess := e.sessions.Acquire(sessionID)
		defer sess.Release()

		// streamed collects every forwarded token, including text the model
		// emitted before requesting a tool round.
		var streamed strings.Builder
		onDelta := func(token string) {
			if token == "" {
				return
			}
			streamed.WriteString(token)
			select {
			case out <- models.StreamChunk{SessionID: sess.ID, Token: token}:
			case <-ctx.Done():
			}
		}

		final, stage, err := e.runTurn(ctx, sess, query, onDelta)
		if err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("Streaming turn failed")
			return
		}

		full := streamed.String()
		if full == "" {
			full = final
		}
		select {
		case out <- models.StreamChunk{
			SessionID:   sess.ID,
			FullMessage: full,
			Stage:       stage.String(),
			IsComplete:  true,
		}:
		case <-ctx.Done():
		}
	}()

	return out
}

// runTurn advances the state machine for one turn. It mutates sess only on
// normal completion; any error leaves the session exactly as it was.
func (e *Engine) runTurn(ctx context.Context, sess *session.Session, query string, onDelta func(string)) (string, Stage, error) {
	started := time.Now()
	work := sess.WorkingSnapshot()

	stage, err := Next(StageStart, EventBegin)
	if err != nil {
		return "", stage, err
	}

	// REWRITE. The chosen text joins the working history as the turn's
	// human entry; the raw input is recorded separately at commit.
	chosen, err := e.rewrite(ctx, query)
	if err != nil {
		return "", stage, fmt.Errorf("rewrite stage: %w", err)
	}
	work = append(work, models.NewHuman(chosen))

	if stage, err = Next(stage, EventRewritten); err != nil {
		return "", stage, err
	}

	// CLASSIFY.
	decision, err := e.classify(ctx, work)
	if err != nil {
		return "", stage, fmt.Errorf("classify stage: %w", err)
	}

	routing := EventOnTopic
	if decision == models.TopicOff {
		routing = EventOffTopic
	}
	if stage, err = Next(stage, routing); err != nil {
		return "", stage, err
	}
	log.Debug().
		Str("session", sess.ID).
		Str("decision", decision.String()).
		Str("question", chosen).
		Msg("Turn routed")

	var final string
	var terminal Stage
	switch stage {
	case StageAnswer:
		terminal = StageAnswer
		work, final, err = e.answer(ctx, work, onDelta, &stage)
	case StageFallback:
		terminal = StageFallback
		final, err = e.fallback(ctx, chosen, onDelta)
		if err == nil {
			stage, err = Next(stage, EventFinalResponse)
		}
	}
	if err != nil {
		return "", stage, err
	}

	// Commit: the turn completed, so the session may now observe it.
	sess.Raw = append(sess.Raw, models.NewHuman(query))
	if terminal == StageFallback {
		work = append(work, models.NewAssistant(final))
	}
	sess.Working = work
	sess.LastDecision = decision
	e.archiveTurn(ctx, sess.ID, query, final)

	log.Info().
		Str("session", sess.ID).
		Str("stage", terminal.String()).
		Dur("elapsed", time.Since(started)).
		Msg("Turn completed")
	return final, terminal, nil
}

// rewrite reformulates the question towards the domain, reverting to the
// original when the model's output exceeds the length guard. The rewriter
// sees only the newest input; prior turns are withheld so accumulated context
// cannot steer the reformulation.
func (e *Engine) rewrite(ctx context.Context, query string) (string, error) {
	resp, err := e.gens.Rewrite.Generate(ctx, llm.Request{
		System:   prompts.Rewriter,
		Messages: []models.Message{models.NewHuman(query)},
	})
	if err != nil {
		return "", err
	}

	rewritten := strings.TrimSpace(resp.Content)
	if rewritten == "" || len([]rune(rewritten)) > rewriteGuardFactor*len([]rune(query)) {
		log.Debug().Str("rewritten", rewritten).Msg("Rewrite discarded by length guard")
		return query, nil
	}
	return rewritten, nil
}

// classify renders the prior context and the question under test and asks for
// a binary relevance verdict. Anything other than YES/NO is off-topic.
func (e *Engine) classify(ctx context.Context, work []models.Message) (models.TopicDecision, error) {
	historyContext := history.FormatContext(work, classifyAnswerChars, true, classifyLastPairs)
	question := history.LastQuestion(work)

	resp, err := e.gens.Classify.Generate(ctx, llm.Request{
		Messages: []models.Message{models.NewHuman(prompts.Classify(historyContext, question))},
	})
	if err != nil {
		return models.TopicUnset, err
	}
	return models.ParseTopicDecision(resp.Content), nil
}

// answer runs the tool loop: generate, execute requested tools, extend the
// history, repeat until the model responds without tool calls.
func (e *Engine) answer(ctx context.Context, work []models.Message, onDelta func(string), stage *Stage) ([]models.Message, string, error) {
	for {
		resp, err := e.gens.Answer.Generate(ctx, llm.Request{
			System:   prompts.Main,
			Messages: work,
			Tools:    e.tools.Specs(),
			OnDelta:  onDelta,
		})
		if err != nil {
			return work, "", fmt.Errorf("answer stage: %w", err)
		}
		work = append(work, *resp)

		if !resp.HasToolCalls() {
			next, err := Next(*stage, EventFinalResponse)
			if err != nil {
				return work, "", err
			}
			*stage = next
			return work, resp.Content, nil
		}

		next, err := Next(*stage, EventToolCallsRequested)
		if err != nil {
			return work, "", err
		}
		*stage = next

		names := make([]string, len(resp.ToolCalls))
		for i, call := range resp.ToolCalls {
			names[i] = call.Name
		}
		log.Debug().Strs("tools", names).Msg("Dispatching tool calls")

		work = append(work, e.tools.Dispatch(ctx, resp.ToolCalls)...)

		if next, err = Next(*stage, EventToolResultsReady); err != nil {
			return work, "", err
		}
		*stage = next
	}
}

// fallback answers an off-topic turn from the newest question alone: prior
// context is deliberately withheld.
func (e *Engine) fallback(ctx context.Context, question string, onDelta func(string)) (string, error) {
	resp, err := e.gens.Fallback.Generate(ctx, llm.Request{
		System:   prompts.Fallback,
		Messages: []models.Message{models.NewHuman(question)},
		OnDelta:  onDelta,
	})
	if err != nil {
		return "", fmt.Errorf("fallback stage: %w", err)
	}
	return resp.Content, nil
}

// archiveTurn records the raw question and the final answer. Best-effort.
func (e *Engine) archiveTurn(ctx context.Context, sessionID, query, final string) {
	if e.archive == nil {
		return
	}
	if err := e.archive.Append(ctx, sessionID, models.NewHuman(query)); err != nil {
		log.Warn().Err(err).Msg("Transcript append failed")
		return
	}
	if err := e.archive.Append(ctx, sessionID, models.NewAssistant(final)); err != nil {
		log.Warn().Err(err).Msg("Transcript append failed")
	}
}
