// Package voice bridges speech to the assistant: fixed-window recording,
// server-side transcription, and spoken replies with strict turn-taking.
package voice

import (
	"context"

	"riabuilder/internal/assistant"
)

// MinSegmentBytes is the smallest audio segment worth transcribing.
// Shorter segments are treated as accidental taps and discarded.
const MinSegmentBytes = 1024

// Segment is one recorded audio window.
type Segment struct {
	Data     []byte
	MimeType string
}

// Recorder captures audio in fixed-duration segments.
type Recorder interface {
	// Record captures one segment, returning early when ctx is
	// cancelled.
	Record(ctx context.Context) (Segment, error)
}

// Transcriber converts an audio segment to text.
type Transcriber interface {
	Transcribe(ctx context.Context, seg Segment) (string, error)
}

// Handle controls one in-flight speech synthesis.
type Handle interface {
	// Cancel stops the synthesis immediately.
	Cancel()

	// Done is closed when the synthesis finishes or is cancelled.
	Done() <-chan struct{}
}

// SpeechOutput voices text aloud.
type SpeechOutput interface {
	Speak(text string) (Handle, error)
}

// TurnRunner feeds transcribed text into the conversation.
type TurnRunner interface {
	Turn(ctx context.Context, text string) (assistant.Message, error)
}
