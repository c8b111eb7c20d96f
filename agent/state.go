package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/patch"
)

// Conversation is the state and form of one registration.
type Conversation struct {
	State *State
	Form  *form.Form
}

// ConversationStore provides per-conversation state using context for routing.
type ConversationStore interface {
	Load(ctx context.Context) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	Remove(ctx context.Context) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey sets the conversation routing key in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

// StateKeyFromContext gets the routing key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(stateKeyContext{}).(string)
	return key, ok && key != ""
}

func stateKeyOrDefault(ctx context.Context) (string, bool) {
	if key, ok := StateKeyFromContext(ctx); ok {
		return key, true
	}
	return defaultStateKey, true
}

// PrefillFunc returns known patient details to seed a new conversation with.
type PrefillFunc func(ctx context.Context) form.Registration

// MemoryConversationStore keeps conversations in memory. A missing
// conversation is created on Load.
type MemoryConversationStore struct {
	store   Store[*Conversation]
	prefill PrefillFunc
}

func NewMemoryConversationStore(prefill PrefillFunc) *MemoryConversationStore {
	return &MemoryConversationStore{
		store:   NewStore(Cache[*Conversation](NewMemoryCache[*Conversation]()), "agent:conversation", stateKeyOrDefault),
		prefill: prefill,
	}
}

func (m *MemoryConversationStore) Load(ctx context.Context) (*Conversation, error) {
	conv, ok, err := m.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return conv, nil
	}
	conv, err = m.newConversation(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *MemoryConversationStore) Save(ctx context.Context, conv *Conversation) error {
	conv.State.ensure()
	return m.store.Set(ctx, conv)
}

func (m *MemoryConversationStore) Remove(ctx context.Context) error {
	return m.store.Del(ctx)
}

func (m *MemoryConversationStore) newConversation(ctx context.Context) (*Conversation, error) {
	conv := &Conversation{State: NewState(), Form: form.New()}
	if m.prefill == nil {
		return conv, nil
	}
	ops, err := patch.GeneratePatchesFromInitial(conv.Form.Snapshot(), m.prefill(ctx), true)
	if err != nil {
		return nil, fmt.Errorf("failed to build prefill: %w", err)
	}
	// prefilled details come from outside the conversation and stay editable
	if _, err := conv.Form.Edit(ops); err != nil {
		return nil, fmt.Errorf("failed to apply prefill: %w", err)
	}
	slog.Debug("Prefilled conversation", "fields", patch.Fields(ops))
	return conv, nil
}

var _ ConversationStore = (*MemoryConversationStore)(nil)
