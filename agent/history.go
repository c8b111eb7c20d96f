package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(transcript []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps every system message and the last N turns of
// the user and the assistant. N <= 0 keeps system messages only.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(transcript []*schema.Message) []*schema.Message {
	budget := max(t.N, 0)
	// walk backwards so the newest turns win the budget
	keep := make([]bool, len(transcript))
	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		switch {
		case m == nil:
		case m.Role == schema.System:
			keep[i] = true
		case budget > 0:
			keep[i] = true
			budget--
		}
	}
	out := make([]*schema.Message, 0, len(transcript))
	for i, m := range transcript {
		if keep[i] {
			out = append(out, m)
		}
	}
	return out
}

// TranscriptStore records what was said in each conversation.
type TranscriptStore struct {
	store   Store[[]*schema.Message]
	trimmer Trimmer
}

func NewTranscriptStore(core Cache[[]*schema.Message], trimmer Trimmer) *TranscriptStore {
	return &TranscriptStore{
		store:   NewStore(core, "agent:transcript", stateKeyOrDefault),
		trimmer: trimmer,
	}
}

func NewMemoryTranscriptStore(trimmer Trimmer) *TranscriptStore {
	return NewTranscriptStore(NewMemoryCache[[]*schema.Message](), trimmer)
}

func (s *TranscriptStore) Load(ctx context.Context) ([]*schema.Message, error) {
	transcript, _, err := s.store.Get(ctx)
	return transcript, err
}

func (s *TranscriptStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

// Append adds msgs, skipping nil messages and a message repeating the one
// before it, then trims and saves. It returns the saved transcript.
func (s *TranscriptStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	transcript, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(transcript); n > 0 && transcript[n-1].Role == msg.Role && transcript[n-1].Content == msg.Content {
			continue
		}
		transcript = append(transcript, msg)
	}
	if s.trimmer != nil {
		transcript = s.trimmer.Trim(transcript)
	}
	if err := s.store.Set(ctx, transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}
