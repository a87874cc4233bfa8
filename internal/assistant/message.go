// Package assistant runs the conversation loop: context assembly, model
// calls with the tool catalogue, tool dispatch, and session summaries.
package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// WelcomeID marks the synthetic greeting. It is shown in the UI but never
// sent to the model or included in summaries.
const WelcomeID = "welcome"

const welcomeText = "Hello! I am aligned with your canon and project constraints. How shall we proceed?"

// Message is one chat history entry.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	IsError   bool   `json:"isError,omitempty"`
}

func newMessage(role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

func welcomeMessage() Message {
	return Message{
		ID:        WelcomeID,
		Role:      RoleModel,
		Text:      welcomeText,
		Timestamp: time.Now().UnixMilli(),
	}
}

// IsWelcome reports whether the message is the synthetic greeting.
func (m Message) IsWelcome() bool {
	return m.ID == WelcomeID
}

// Attachment is a file staged for the next turn. Its preview resource is
// released exactly once, whether the attachment is sent or dropped.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte

	release     func()
	releaseOnce sync.Once
}

// NewAttachment creates an attachment. release may be nil; when set it is
// invoked exactly once, on send or drop.
func NewAttachment(name, mimeType string, data []byte, release func()) *Attachment {
	return &Attachment{Name: name, MimeType: mimeType, Data: data, release: release}
}

// Release frees the attachment's preview resource. Safe to call more than
// once; only the first call has effect.
func (a *Attachment) Release() {
	a.releaseOnce.Do(func() {
		if a.release != nil {
			a.release()
		}
	})
}

// pendingAttachments is the staging area for the next turn.
type pendingAttachments struct {
	mu    sync.Mutex
	items []*Attachment
}

// Add stages an attachment.
func (p *pendingAttachments) Add(a *Attachment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, a)
}

// Take removes and returns all staged attachments, releasing their
// previews. The caller gets the data; the preview resource is gone either
// way.
func (p *pendingAttachments) Take() []*Attachment {
	p.mu.Lock()
	items := p.items
	p.items = nil
	p.mu.Unlock()

	for _, a := range items {
		a.Release()
	}
	return items
}

// Drop discards all staged attachments without sending, releasing their
// previews.
func (p *pendingAttachments) Drop() {
	p.Take()
}

// Len returns the number of staged attachments.
func (p *pendingAttachments) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
