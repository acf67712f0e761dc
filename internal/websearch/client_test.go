package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSendsQueryAndLimit(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Congreso de la República", "url": "https://www.congreso.gob.pe", "content": "Portal oficial."},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tvly-test")
	results, err := c.Lookup(context.Background(), "¿quién preside el congreso?")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Congreso de la República", results[0].Title)
	assert.Equal(t, "¿quién preside el congreso?", captured["query"])
	assert.EqualValues(t, 2, captured["max_results"])
}

func TestLookupCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "uno"}, {"title": "dos"}, {"title": "tres"},
			},
		})
	}))
	defer srv.Close()

	results, err := NewHTTPClient(srv.URL, "k").Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLookupErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "k").Lookup(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFormat(t *testing.T) {
	out := Format([]Result{
		{Title: "A", URL: "https://a", Content: "alfa"},
		{Title: "B", URL: "https://b", Content: "beta"},
	})
	assert.Contains(t, out, "A (https://a)\nalfa")
	assert.Contains(t, out, "B (https://b)\nbeta")

	assert.Equal(t, "No se encontraron resultados en la web.", Format(nil))
}
