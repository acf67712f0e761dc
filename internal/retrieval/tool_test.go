package retrieval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilaperu/chaski/internal/temporal"
)

func TestFetchPassesParsedFilter(t *testing.T) {
	var gotFilter *temporal.Filter
	var gotText string

	tool := New("asistencias", SearcherFunc(func(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
		gotText = text
		gotFilter = f
		return []Document{{Content: "acta del pleno"}, {Content: "lista de asistencia"}}, nil
	}))

	question := "dame las asistencias del 10 de diciembre del 2022"
	docs := tool.Fetch(context.Background(), question)

	assert.Equal(t, []string{"acta del pleno", "lista de asistencia"}, docs)
	assert.Equal(t, question, gotText)
	require.NotNil(t, gotFilter)
	assert.Equal(t, temporal.Filter{Kind: temporal.KindDay, Year: 2022, Month: 12, Day: 10}, *gotFilter)
}

func TestFetchUnfilteredWhenNoDate(t *testing.T) {
	var gotFilter *temporal.Filter
	called := false

	tool := New("votaciones", SearcherFunc(func(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
		called = true
		gotFilter = f
		return nil, nil
	}))

	docs := tool.Fetch(context.Background(), "¿qué asuntos se votaron sobre salud?")
	assert.True(t, called)
	assert.Nil(t, gotFilter)
	assert.Empty(t, docs)
}

func TestFetchWrapsSearchErrors(t *testing.T) {
	tool := New("asistencias", SearcherFunc(func(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
		return nil, errors.New("índice no disponible")
	}))

	docs := tool.Fetch(context.Background(), "asistencias de octubre del 2022")

	require.Len(t, docs, 1)
	assert.Contains(t, docs[0], "Ocurrió un error al buscar información")
	assert.Contains(t, docs[0], "índice no disponible")
}

func TestFetchPreservesRankingOrder(t *testing.T) {
	tool := New("votaciones", SearcherFunc(func(ctx context.Context, text string, f *temporal.Filter) ([]Document, error) {
		return []Document{{Content: "primero"}, {Content: "segundo"}, {Content: "tercero"}}, nil
	}))

	docs := tool.Fetch(context.Background(), "votaciones")
	assert.Equal(t, []string{"primero", "segundo", "tercero"}, docs)
}

func TestHTTPSearcherSendsFilterAndDecodesDocuments(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/attendance/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"documents": []map[string]any{
				{"content": "doc uno"},
				{"content": "doc dos", "metadata": map[string]any{"anio": 2022}},
			},
		})
	}))
	defer srv.Close()

	s := NewHTTPSearcher(srv.URL, "attendance")
	docs, err := s.Search(context.Background(), "asistencias de octubre del 2022",
		&temporal.Filter{Kind: temporal.KindMonth, Year: 2022, Month: 10})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "doc uno", docs[0].Content)

	filter, ok := captured["filter"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2022, filter["year"])
	assert.EqualValues(t, 10, filter["month"])
	_, hasDay := filter["day"]
	assert.False(t, hasDay)
}

func TestHTTPSearcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHTTPSearcher(srv.URL, "voting")
	_, err := s.Search(context.Background(), "votaciones", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
