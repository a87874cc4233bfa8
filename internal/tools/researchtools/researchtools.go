// Package researchtools runs web research queries through the configured
// search endpoint and renders cited answers.
package researchtools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"riabuilder/internal/logging"
	"riabuilder/internal/tools"
)

const (
	defaultMaxResults = 5
	minResults        = 1
	maxResults        = 10
)

// Client posts queries to the web research endpoint.
type Client struct {
	searchURL  string
	httpClient *http.Client
}

// NewClient creates a research client. An empty searchURL leaves the
// client unconfigured.
func NewClient(searchURL string) *Client {
	return &Client{
		searchURL:  searchURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether a search endpoint is set.
func (c *Client) Configured() bool {
	return c.searchURL != ""
}

// Query is one research request.
type Query struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"maxResults,omitempty"`
	SearchDepth string `json:"searchDepth,omitempty"` // basic | advanced
	Topic       string `json:"topic,omitempty"`
	TimeRange   string `json:"timeRange,omitempty"`
}

// Source is one cited search result.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Answer is the research endpoint's response.
type Answer struct {
	Query        string   `json:"query"`
	Answer       string   `json:"answer"`
	Results      []Source `json:"results"`
	ResponseTime float64  `json:"responseTime"`
	Error        string   `json:"error,omitempty"`
}

// Search runs one research query.
func (c *Client) Search(ctx context.Context, q Query) (Answer, error) {
	if !c.Configured() {
		return Answer{}, fmt.Errorf("web research is not configured: no search URL set")
	}

	body, err := json.Marshal(q)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to marshal research request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.searchURL, bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("failed to create research request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to read research response: %w", err)
	}

	var answer Answer
	if err := json.Unmarshal(respBody, &answer); err != nil {
		return Answer{}, fmt.Errorf("failed to parse research response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := answer.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return Answer{}, fmt.Errorf("research failed: %s", msg)
	}

	logging.Research("Query %q: %d sources in %v", q.Query, len(answer.Results), time.Since(start))
	return answer, nil
}

// ClampMaxResults bounds a requested result count to [1, 10], defaulting
// to 5 when unset or non-positive.
func ClampMaxResults(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	if n < minResults {
		return minResults
	}
	if n > maxResults {
		return maxResults
	}
	return n
}

// Register adds web_research to the registry.
func Register(r *tools.Registry, client *Client) {
	r.MustRegister(&tools.Tool{
		Name:        "web_research",
		Description: "Research a topic on the web and return a sourced answer.",
		Category:    tools.CategoryResearch,
		Schema: tools.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]tools.Property{
				"query":        {Type: "string", Description: "What to research"},
				"max_results":  {Type: "integer", Description: "Number of sources to consult (1-10)", Default: defaultMaxResults},
				"search_depth": {Type: "string", Description: "Search depth", Enum: []any{"basic", "advanced"}},
				"topic":        {Type: "string", Description: "Topic hint, e.g. news or finance"},
				"time_range":   {Type: "string", Description: "Restrict results to a recency window, e.g. week, month, year"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := tools.RequiredString(args, "query")
			if err != nil {
				return "", err
			}

			depth := tools.StringArg(args, "search_depth", "")
			if depth != "basic" && depth != "advanced" {
				depth = ""
			}

			answer, err := client.Search(ctx, Query{
				Query:       query,
				MaxResults:  ClampMaxResults(tools.IntArg(args, "max_results", 0)),
				SearchDepth: depth,
				Topic:       tools.StringArg(args, "topic", ""),
				TimeRange:   tools.StringArg(args, "time_range", ""),
			})
			if err != nil {
				return "", err
			}
			return renderAnswer(query, answer), nil
		},
	})
}

func renderAnswer(query string, answer Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Research: %s**\n\n", query)
	if answer.Answer != "" {
		b.WriteString(strings.TrimSpace(answer.Answer))
		b.WriteString("\n")
	}
	if len(answer.Results) > 0 {
		b.WriteString("\nSources:\n")
		for _, src := range answer.Results {
			title := src.Title
			if title == "" {
				title = src.URL
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, src.URL)
		}
	}
	return strings.TrimSpace(b.String())
}
