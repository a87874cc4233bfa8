package researchtools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riabuilder/internal/tools"
)

func TestClampMaxResults(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 5},
		{-3, 5},
		{1, 1},
		{7, 7},
		{10, 10},
		{25, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampMaxResults(tc.in), "ClampMaxResults(%d)", tc.in)
	}
}

func TestSearchSendsQuery(t *testing.T) {
	var got Query
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Answer{
			Query:  got.Query,
			Answer: "Altruist and Schwab are the common low-cost custodians.",
			Results: []Source{
				{Title: "Custodian comparison", URL: "https://example.com/custodians", Score: 0.92},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	answer, err := c.Search(context.Background(), Query{Query: "RIA custodians", MaxResults: 3, SearchDepth: "advanced"})
	require.NoError(t, err)
	assert.Equal(t, "RIA custodians", got.Query)
	assert.Equal(t, 3, got.MaxResults)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Len(t, answer.Results, 1)
}

func TestToolClampsAndRenders(t *testing.T) {
	var got Query
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Answer{
			Answer:  "Short answer.",
			Results: []Source{{Title: "Source A", URL: "https://a.example"}},
		})
	}))
	defer srv.Close()

	r := tools.NewRegistry()
	Register(r, NewClient(srv.URL))

	res := r.Execute(context.Background(), "web_research", map[string]any{
		"query":        "fee benchmarks",
		"max_results":  float64(50),
		"search_depth": "thorough", // not a valid depth, dropped
	})
	require.True(t, res.IsSuccess(), "error: %v", res.Error)
	assert.Equal(t, 10, got.MaxResults)
	assert.Empty(t, got.SearchDepth)
	assert.Contains(t, res.Result, "Short answer.")
	assert.Contains(t, res.Result, "[Source A](https://a.example)")
}

func TestToolUnconfigured(t *testing.T) {
	r := tools.NewRegistry()
	Register(r, NewClient(""))

	res := r.Execute(context.Background(), "web_research", map[string]any{"query": "anything"})
	require.False(t, res.IsSuccess())
	assert.Contains(t, res.Error.Error(), "not configured")
}
