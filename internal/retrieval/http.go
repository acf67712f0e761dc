package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/vigilaperu/chaski/internal/temporal"
)

// HTTPSearcher calls a retrieval sidecar over HTTP. The sidecar owns
// embedding and index access; this client only translates the question and
// the optional date predicate into the wire filter.
type HTTPSearcher struct {
	http       *http.Client
	baseURL    string
	collection string
}

// NewHTTPSearcher creates a searcher for one collection of the sidecar.
func NewHTTPSearcher(baseURL, collection string) *HTTPSearcher {
	return &HTTPSearcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		collection: collection,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// wireFilter mirrors the metadata predicate shape the index understands:
// exact year/month/day matches, or an inclusive year range.
type wireFilter struct {
	Year     int `json:"year,omitempty"`
	Month    int `json:"month,omitempty"`
	Day      int `json:"day,omitempty"`
	YearFrom int `json:"year_from,omitempty"`
	YearTo   int `json:"year_to,omitempty"`
}

// Search implements Searcher.
func (s *HTTPSearcher) Search(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
	payload := map[string]any{"query": text}
	if f != nil {
		var wf wireFilter
		switch f.Kind {
		case temporal.KindDay:
			wf = wireFilter{Year: f.Year, Month: f.Month, Day: f.Day}
		case temporal.KindMonth:
			wf = wireFilter{Year: f.Year, Month: f.Month}
		case temporal.KindYear:
			wf = wireFilter{Year: f.Year}
		case temporal.KindYearRange:
			wf = wireFilter{YearFrom: f.YearFrom, YearTo: f.YearTo}
		}
		payload["filter"] = wf
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/collections/%s/search", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("search %s: status %d: %s", s.collection, resp.StatusCode, string(errBody))
	}

	var parsed struct {
		Documents []Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Documents, nil
}
