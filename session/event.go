package session

import "github.com/tbxark/voiceform/agent"

type EventKind string

const (
	EventStarted          EventKind = "started"
	EventResumed          EventKind = "resumed"
	EventSpoke            EventKind = "spoke"
	EventListening        EventKind = "listening"
	EventHeard            EventKind = "heard"
	EventRecognitionError EventKind = "recognition_error"
	EventTimeout          EventKind = "timeout"
	EventCompleted        EventKind = "completed"
	EventPaused           EventKind = "paused"
	EventStopped          EventKind = "stopped"
)

// Event reports what the session is doing, for display and logging.
type Event struct {
	Session string
	Kind    EventKind
	// Text is what was spoken or heard, or the user-facing error message.
	Text     string
	Err      error
	Response *agent.Response
}
