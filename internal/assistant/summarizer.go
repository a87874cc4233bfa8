package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"riabuilder/internal/logging"
	"riabuilder/internal/store"
)

const summarizerSystemPrompt = `You compress a project conversation into durable memory.
Respond with ONLY a JSON object of this exact shape:
{"summary": "<2-4 sentence summary of what was discussed and accomplished>", "keyDecisions": ["<decision>", ...]}
keyDecisions lists concrete choices that were made, not topics. Use an empty array when nothing was decided.`

// summaryPayload is the JSON the summarizer model returns.
type summaryPayload struct {
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"keyDecisions"`
}

// Summarize compresses the current session into a stored summary and
// resets the history to the welcome message. A session with no real
// exchange is a no-op. On any failure the exchange is preserved and the
// failure is reported into the conversation as an error-flagged
// assistant message, matching how turn failures surface.
func (o *Orchestrator) Summarize(ctx context.Context) (*store.ConversationSummary, error) {
	transcript := o.transcript()
	if transcript == "" {
		logging.SessionDebug("Summarize: nothing to summarize")
		return nil, nil
	}

	raw, err := o.model.CompleteWithSystem(ctx, summarizerSystemPrompt, transcript)
	if err != nil {
		return nil, o.failSummarize(fmt.Errorf("summary model call failed: %w", err))
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return nil, o.failSummarize(fmt.Errorf("summary response was not valid JSON: %w", err))
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, o.failSummarize(fmt.Errorf("summary response had no summary text"))
	}

	saved, err := o.store.AppendSummary(payload.Summary, payload.KeyDecisions)
	if err != nil {
		return nil, o.failSummarize(fmt.Errorf("failed to persist summary: %w", err))
	}

	o.mu.Lock()
	o.history = []Message{welcomeMessage()}
	o.mu.Unlock()

	logging.Session("Summarized session into %s (%d decisions)", saved.ID, len(saved.KeyDecisions))
	return &saved, nil
}

// failSummarize reports a summarization failure into the conversation
// and passes the error back to the caller. The session exchange stays
// in place so it can be retried.
func (o *Orchestrator) failSummarize(err error) error {
	logging.ModelError("Summarize: %v", err)
	o.failTurn(fmt.Sprintf("I couldn't save a summary of this session: %v", err))
	return err
}

// transcript formats the history for the summarizer, excluding the
// welcome message. Returns "" when there is nothing worth summarizing.
func (o *Orchestrator) transcript() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var b strings.Builder
	real := 0
	for _, m := range o.history {
		if m.IsWelcome() {
			continue
		}
		real++
		speaker := "User"
		if m.Role == RoleModel {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Text)
	}
	if real == 0 {
		return ""
	}
	return b.String()
}

// stripCodeFences unwraps a ```json ... ``` (or plain ```) fenced block.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
