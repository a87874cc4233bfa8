package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"riabuilder/internal/logging"
)

const (
	maxRetries      = 3
	minRequestGap   = 100 * time.Millisecond
	defaultModel    = "gemini-2.0-flash"
	defaultMaxTok   = 8192
	defaultTimeout  = 2 * time.Minute
	defaultTemp     = 1.0
)

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a client from config, filling in defaults.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultConfig("").BaseURL
	}
	maxTok := cfg.MaxOutputTokens
	if maxTok <= 0 {
		maxTok = defaultMaxTok
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxTok,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a request to the model and returns the parsed response.
// Rate-limit responses are retried with exponential backoff.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		logging.ModelError("Generate: API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if req.GenerationConfig.MaxOutputTokens == 0 {
		req.GenerationConfig.MaxOutputTokens = c.maxOutputTokens
	}
	if req.GenerationConfig.Temperature == 0 {
		req.GenerationConfig.Temperature = defaultTemp
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < minRequestGap {
		time.Sleep(minRequestGap - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	logging.ModelDebug("Generate: model=%s contents=%d tools=%d bytes=%d",
		c.model, len(req.Contents), len(req.Tools), len(jsonData))

	start := time.Now()
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			logging.Model("Generate: rate limited (attempt %d/%d)", i+1, maxRetries+1)
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var out Response
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if out.Error != nil {
			return nil, fmt.Errorf("API error: %s", out.Error.Message)
		}

		logging.ModelDebug("Generate: done in %v tokens=%d", time.Since(start), out.UsageMetadata.TotalTokenCount)
		return &out, nil
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// CompleteWithSystem sends a single user prompt under a system instruction
// and returns the text of the first candidate.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := Request{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: userPrompt}}}},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: systemPrompt}}}
	}
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		cand, ok := resp.FirstCandidate()
		if ok {
			return "", fmt.Errorf("empty response (finish reason %s)", cand.FinishReason)
		}
		return "", fmt.Errorf("empty response: no candidates")
	}
	return text, nil
}
