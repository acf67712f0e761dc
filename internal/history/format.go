// Package history renders bounded textual summaries of conversation logs for
// prompt construction.
package history

import (
	"strings"

	"github.com/vigilaperu/chaski/pkg/models"
)

// pendingAnswer is rendered when a question has no paired answer yet.
const pendingAnswer = "[Pendiente de responder...]"

// pair groups a human question with its following assistant answer, if any.
type pair struct {
	question models.Message
	answer   *models.Message
}

// FormatContext renders a history as "Q:"/"A:" pair lines. Questions are kept
// whole; each answer is truncated to maxChars runes at the last word boundary
// and suffixed with "…". Only the last lastN pairs are included, and when
// excludeLast is set the newest entry is left out (it is the question under
// test, not context). Tool-result entries never contribute to pairs.
func FormatContext(msgs []models.Message, maxChars int, excludeLast bool, lastN int) string {
	if excludeLast && len(msgs) > 0 {
		msgs = msgs[:len(msgs)-1]
	}

	var pairs []pair
	var pending *models.Message
	for i := range msgs {
		msg := msgs[i]
		switch msg.Role {
		case models.RoleHuman:
			if pending != nil {
				pairs = append(pairs, pair{question: *pending})
			}
			pending = &msgs[i]
		case models.RoleAssistant:
			if pending != nil {
				pairs = append(pairs, pair{question: *pending, answer: &msgs[i]})
				pending = nil
			}
		}
	}
	if pending != nil {
		pairs = append(pairs, pair{question: *pending})
	}

	if lastN > 0 && len(pairs) > lastN {
		pairs = pairs[len(pairs)-lastN:]
	}

	var lines []string
	for _, p := range pairs {
		lines = append(lines, "Q: "+strings.TrimSpace(p.question.Content))
		if p.answer != nil {
			lines = append(lines, "A: "+truncateAtWord(strings.TrimSpace(p.answer.Content), maxChars))
		} else {
			lines = append(lines, "A: "+pendingAnswer)
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// LastQuestion returns the content of the newest human message, or "".
func LastQuestion(msgs []models.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleHuman {
			return strings.TrimSpace(msgs[i].Content)
		}
	}
	return ""
}

// truncateAtWord cuts s to at most maxChars runes, backing up to the last
// space so words are not split, and appends an ellipsis.
func truncateAtWord(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	cut := maxChars
	for i := maxChars - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}
