// Package retrieval fetches supporting documents for a question, scoping the
// similarity search by any date predicate found in the question text.
package retrieval

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/internal/temporal"
)

// Document is one ranked result from the similarity-search capability.
type Document struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Content  string         `json:"content"`
}

// Searcher is the external vector-similarity capability. A nil filter means
// an unfiltered search. Ranking order of the returned slice is authoritative.
type Searcher interface {
	Search(ctx context.Context, text string, f *temporal.Filter) ([]Document, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, text string, f *temporal.Filter) ([]Document, error)

// Search implements Searcher.
func (fn SearcherFunc) Search(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
	return fn(ctx, text, f)
}

// Tool answers "find supporting documents for this question" over a single
// corpus. Failures from the external index are converted into a one-element
// list with a readable error string so the answer stage can keep going.
type Tool struct {
	searcher Searcher
	corpus   string
}

// New creates a retrieval tool over the named corpus.
func New(corpus string, s Searcher) *Tool {
	return &Tool{corpus: corpus, searcher: s}
}

// Fetch parses a temporal filter out of the question, runs the similarity
// search with it, and returns the document contents in ranking order.
func (t *Tool) Fetch(ctx context.Context, question string) []string {
	filter := temporal.Parse(question)

	docs, err := t.searcher.Search(ctx, question, filter)
	if err != nil {
		log.Warn().Str("corpus", t.corpus).Err(err).Msg("Similarity search failed")
		return []string{fmt.Sprintf("Ocurrió un error al buscar información: %s", err)}
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	return contents
}

// AttendanceRange describes the date coverage of the attendance corpus.
func AttendanceRange() string {
	return "La información de asistencias está disponible desde enero de 2009 hasta marzo de 2025"
}

// VotingRange describes the date coverage of the voting corpus.
func VotingRange() string {
	return "La información de votaciones está disponible desde enero de 2009 hasta marzo de 2025"
}
