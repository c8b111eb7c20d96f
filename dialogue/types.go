package dialogue

import (
	"context"

	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/types"
)

// Kind selects which message the generator produces.
type Kind string

const (
	KindGreeting     Kind = "greeting"
	KindAsk          Kind = "ask"
	KindConfirm      Kind = "confirm"
	KindDenied       Kind = "denied"
	KindCorrect      Kind = "correct"
	KindUnrecognized Kind = "unrecognized"
	KindComplete     Kind = "complete"
	KindFinished     Kind = "finished"
	KindSkipped      Kind = "skipped"
	KindHelp         Kind = "help"
	KindUrgent       Kind = "urgent"
	KindPaused       Kind = "paused"
)

// Completion describes a successful submission for the closing message.
type Completion struct {
	Token         int
	TimeRange     string
	Position      int
	EstimatedWait int
}

type Request struct {
	Kind  Kind
	Phase types.Phase
	// Field is the field being asked, skipped or corrected.
	Field types.FieldID
	// AskCount is how many times Field has been asked, this ask included.
	AskCount int
	// SkipValue is the value written by a skip.
	SkipValue  string
	Form       form.Reader
	Completion *Completion
}

func (r *Request) value(field types.FieldID) string {
	if r.Form == nil {
		return ""
	}
	return r.Form.Get(field)
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
