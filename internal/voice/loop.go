package voice

import (
	"context"
	"errors"
	"strings"
	"sync"

	"riabuilder/internal/logging"
)

// Status describes what the conversation loop is doing, for UI surfaces
// that mirror the listening / loading / speaking states.
type Status string

const (
	StatusListening Status = "listening"
	StatusLoading   Status = "loading"
	StatusSpeaking  Status = "speaking"
	StatusIdle      Status = "idle"
)

// Event is a loop state change or a user-visible failure notice.
type Event struct {
	Status Status
	Notice string
}

// ErrAlreadyRunning is returned when Start is called on an active loop.
var ErrAlreadyRunning = errors.New("conversation mode is already active")

// Loop runs hands-free conversation mode: record a segment, transcribe
// it, hand the text to the assistant, speak the reply, listen again.
// One exchange is in flight at a time.
type Loop struct {
	recorder    Recorder
	transcriber Transcriber
	speech      SpeechOutput
	turns       TurnRunner
	onEvent     func(Event)

	mu       sync.Mutex
	cancel   context.CancelFunc
	speaking Handle
	done     chan struct{}
}

// NewLoop wires a conversation loop. onEvent may be nil.
func NewLoop(rec Recorder, tr Transcriber, out SpeechOutput, turns TurnRunner, onEvent func(Event)) *Loop {
	return &Loop{
		recorder:    rec,
		transcriber: tr,
		speech:      out,
		turns:       turns,
		onEvent:     onEvent,
	}
}

// Active reports whether conversation mode is running.
func (l *Loop) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Start turns conversation mode on and begins listening.
func (l *Loop) Start() error {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	logging.Voice("conversation mode on")
	go func() {
		defer close(done)
		l.run(ctx)
	}()
	return nil
}

// Stop turns conversation mode off: recording is abandoned and any
// in-flight speech is cancelled immediately. Stop blocks until the loop
// goroutine has exited.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	speaking := l.speaking
	done := l.done
	l.cancel = nil
	l.speaking = nil
	l.done = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if speaking != nil {
		speaking.Cancel()
	}
	if done != nil {
		<-done
	}
	logging.Voice("conversation mode off")
	l.emit(Event{Status: StatusIdle})
}

func (l *Loop) run(ctx context.Context) {
	for ctx.Err() == nil {
		l.exchange(ctx)
	}
}

// exchange runs one listen-transcribe-reply-speak cycle. Failures are
// reported and the loop returns to listening.
func (l *Loop) exchange(ctx context.Context) {
	l.emit(Event{Status: StatusListening})
	seg, err := l.recorder.Record(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Voice("recording failed: %v", err)
		l.emit(Event{Status: StatusListening, Notice: "Recording failed, listening again."})
		return
	}
	if len(seg.Data) < MinSegmentBytes {
		logging.VoiceDebug("discarding %d byte segment below threshold", len(seg.Data))
		return
	}

	l.emit(Event{Status: StatusLoading})
	text, err := l.transcriber.Transcribe(ctx, seg)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Voice("transcription failed: %v", err)
		l.emit(Event{Status: StatusListening, Notice: "Transcription failed, listening again."})
		return
	}
	if text == "" {
		return
	}

	logging.Voice("heard: %s", text)
	reply, err := l.turns.Turn(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Voice("turn failed: %v", err)
		l.emit(Event{Status: StatusListening, Notice: "The assistant did not reply, listening again."})
		return
	}
	if strings.TrimSpace(reply.Text) == "" {
		return
	}
	l.speak(ctx, reply.Text)
}

// speak voices one reply and waits for it to finish or be cancelled
// before the loop listens again.
func (l *Loop) speak(ctx context.Context, text string) {
	handle, err := l.speech.Speak(text)
	if err != nil {
		logging.Voice("speech failed: %v", err)
		return
	}

	l.mu.Lock()
	l.speaking = handle
	l.mu.Unlock()
	l.emit(Event{Status: StatusSpeaking})

	select {
	case <-handle.Done():
	case <-ctx.Done():
		handle.Cancel()
		<-handle.Done()
	}

	l.mu.Lock()
	if l.speaking == handle {
		l.speaking = nil
	}
	l.mu.Unlock()
}

func (l *Loop) emit(ev Event) {
	if l.onEvent != nil {
		l.onEvent(ev)
	}
}
