// Package gemini is a minimal REST client for the Gemini generateContent
// API: text parts, inline media, and native function calling.
package gemini

import "time"

// Config holds client configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.0-flash",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// Content is one conversation entry in the request.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a piece of content: text, inline media, or a function call.
type Part struct {
	Text         string        `json:"text,omitempty"`
	InlineData   *InlineData   `json:"inlineData,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// InlineData carries base64-encoded media inside a part.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// GenerationConfig represents generation parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Request is the generateContent request body.
type Request struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig,omitempty"`
	Tools             []Tool           `json:"tools,omitempty"`
}

// Tool is a set of function declarations offered to the model.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// FunctionDeclaration describes one callable function.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// FinishReason is the model's stated reason for ending a candidate.
type FinishReason string

const (
	FinishStop                  FinishReason = "STOP"
	FinishSafety                FinishReason = "SAFETY"
	FinishRecitation            FinishReason = "RECITATION"
	FinishMaxTokens             FinishReason = "MAX_TOKENS"
	FinishMalformedFunctionCall FinishReason = "MALFORMED_FUNCTION_CALL"
)

// Candidate is one model output.
type Candidate struct {
	Content      Content      `json:"content"`
	FinishReason FinishReason `json:"finishReason"`
}

// Response is the generateContent response body.
type Response struct {
	Candidates    []Candidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// FirstCandidate returns the first candidate, if any.
func (r *Response) FirstCandidate() (Candidate, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Text concatenates the text parts of the first candidate.
func (r *Response) Text() string {
	cand, ok := r.FirstCandidate()
	if !ok {
		return ""
	}
	var out string
	for _, part := range cand.Content.Parts {
		out += part.Text
	}
	return out
}
