package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"riabuilder/internal/gemini"
	"riabuilder/internal/logging"
	"riabuilder/internal/tools"
)

// ModelClient is the model surface the orchestrator needs.
// *gemini.Client satisfies it.
type ModelClient interface {
	Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Speaker voices replies aloud. Optional.
type Speaker interface {
	Speak(text string) error
}

// Orchestrator errors.
var (
	// ErrTurnInFlight is returned when a turn starts while another one is
	// still running.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrEmptyTurn is returned when a turn has no text and no attachments.
	ErrEmptyTurn = errors.New("nothing to send")
)

// Orchestrator owns the chat history and runs turns against the model and
// the tool catalogue. Collaborators are injected at construction.
type Orchestrator struct {
	model    ModelClient
	registry *tools.Registry
	store    ContextStore
	speaker  Speaker

	now func() time.Time

	mu      sync.Mutex
	busy    bool
	history []Message
	pending pendingAttachments

	// onReply is invoked with every appended assistant message.
	onReply func(Message)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithSpeaker voices assistant replies through the given speaker.
func WithSpeaker(s Speaker) Option {
	return func(o *Orchestrator) { o.speaker = s }
}

// WithReplyListener registers a callback for assistant messages.
func WithReplyListener(fn func(Message)) Option {
	return func(o *Orchestrator) { o.onReply = fn }
}

// New creates an orchestrator with a fresh history.
func New(model ModelClient, registry *tools.Registry, store ContextStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:    model,
		registry: registry,
		store:    store,
		now:      time.Now,
		history:  []Message{welcomeMessage()},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// History returns a copy of the chat history, welcome message included.
func (o *Orchestrator) History() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.history))
	copy(out, o.history)
	return out
}

// Busy reports whether a turn is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Attach stages a file for the next turn.
func (o *Orchestrator) Attach(a *Attachment) {
	o.pending.Add(a)
}

// DropAttachments discards staged attachments without sending them.
func (o *Orchestrator) DropAttachments() {
	o.pending.Drop()
}

// PendingAttachments returns the number of staged attachments.
func (o *Orchestrator) PendingAttachments() int {
	return o.pending.Len()
}

// Turn runs one conversation turn: assemble context, call the model,
// dispatch any tool invocations, and append the reply. Model failures
// come back as an error-flagged assistant message; the user's message
// stays in history either way.
func (o *Orchestrator) Turn(ctx context.Context, text string) (Message, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return Message{}, ErrTurnInFlight
	}
	o.busy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	attachments := o.pending.Take()
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return Message{}, ErrEmptyTurn
	}

	userMsg := newMessage(RoleUser, text)
	o.appendMessage(userMsg)
	logging.Session("Turn: user message %s (%d chars, %d attachments)", userMsg.ID, len(text), len(attachments))

	snap, err := loadSnapshot(ctx, o.store)
	if err != nil {
		return o.failTurn(fmt.Sprintf("I couldn't read the project state: %v", err)), nil
	}

	req := gemini.Request{
		Contents:          o.modelContents(attachments),
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: snap.systemInstruction(o.now())}}},
		Tools:             o.registry.Declarations(),
	}

	resp, err := o.model.Generate(ctx, req)
	if err != nil {
		logging.ModelError("Turn: model call failed: %v", err)
		return o.failTurn(fmt.Sprintf("The model call failed: %v", err)), nil
	}

	reply := o.renderReply(ctx, resp)
	replyMsg := newMessage(RoleModel, reply)
	o.appendMessage(replyMsg)

	if o.speaker != nil {
		if err := o.speaker.Speak(reply); err != nil {
			logging.Voice("Failed to speak reply: %v", err)
		}
	}
	return replyMsg, nil
}

// failTurn appends and returns an error-flagged assistant message.
func (o *Orchestrator) failTurn(text string) Message {
	msg := newMessage(RoleModel, text)
	msg.IsError = true
	o.appendMessage(msg)
	return msg
}

func (o *Orchestrator) appendMessage(m Message) {
	o.mu.Lock()
	o.history = append(o.history, m)
	o.mu.Unlock()
	if m.Role == RoleModel && o.onReply != nil {
		o.onReply(m)
	}
}

// modelContents renders the history (minus the welcome message) as model
// contents, with attachments inlined on the final user message.
func (o *Orchestrator) modelContents(attachments []*Attachment) []gemini.Content {
	o.mu.Lock()
	defer o.mu.Unlock()

	contents := make([]gemini.Content, 0, len(o.history))
	for _, m := range o.history {
		if m.IsWelcome() {
			continue
		}
		// The wire format rejects empty parts, so attachment-only
		// messages carry no text part.
		var parts []gemini.Part
		if m.Text != "" {
			parts = append(parts, gemini.Part{Text: m.Text})
		}
		contents = append(contents, gemini.Content{Role: m.Role, Parts: parts})
	}

	if len(attachments) > 0 && len(contents) > 0 {
		last := &contents[len(contents)-1]
		for _, a := range attachments {
			last.Parts = append(last.Parts, gemini.Part{
				InlineData: &gemini.InlineData{
					MimeType: a.MimeType,
					Data:     base64.StdEncoding.EncodeToString(a.Data),
				},
			})
		}
	}

	// A text-less message whose attachments are gone would render as a
	// content with no parts; drop those.
	filtered := contents[:0]
	for _, c := range contents {
		if len(c.Parts) > 0 {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// renderReply walks the response parts in order, dispatching function
// calls sequentially and collecting text, then assembles the final reply:
// tool result sections in category order, then free text.
func (o *Orchestrator) renderReply(ctx context.Context, resp *gemini.Response) string {
	cand, ok := resp.FirstCandidate()
	if !ok {
		return fallbackReply("")
	}

	var freeText []string
	var results []*tools.ToolResult
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			result := o.registry.Execute(ctx, part.FunctionCall.Name, part.FunctionCall.Args)
			results = append(results, result)
		case strings.TrimSpace(part.Text) != "":
			freeText = append(freeText, strings.TrimSpace(part.Text))
		}
	}

	if len(freeText) == 0 && len(results) == 0 {
		logging.Session("Turn: empty candidate (finish reason %s)", cand.FinishReason)
		return fallbackReply(cand.FinishReason)
	}

	var sections []string
	byCategory := map[tools.ToolCategory][]string{}
	for _, result := range results {
		line := result.Result
		if result.Error != nil {
			line = fmt.Sprintf("%s failed: %v", result.ToolName, result.Error)
		}
		byCategory[result.Category] = append(byCategory[result.Category], line)
	}
	for _, category := range tools.CategoryOrder {
		if lines, ok := byCategory[category]; ok {
			sections = append(sections, strings.Join(lines, "\n\n"))
		}
	}
	// Results from unknown tools carry no category; keep them visible.
	if lines, ok := byCategory[""]; ok {
		sections = append(sections, strings.Join(lines, "\n\n"))
	}
	sections = append(sections, freeText...)
	return strings.Join(sections, "\n\n")
}
