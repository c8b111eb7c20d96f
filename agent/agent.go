package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes the registration flow as a text agent. Conversations are
// routed by WithStateKey.
type Agent struct {
	name          string
	description   string
	flow          *FormFlow
	conversations ConversationStore
	transcripts   *TranscriptStore
}

func NewAgent(name, description string, flow *FormFlow, conversations ConversationStore, transcripts *TranscriptStore) *Agent {
	return &Agent{
		name:          name,
		description:   description,
		flow:          flow,
		conversations: conversations,
		transcripts:   transcripts,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

// Step runs one turn for the routed conversation. An empty input on a
// conversation that has not asked anything yet starts it with the greeting.
func (a *Agent) Step(ctx context.Context, input string) (*Response, error) {
	conv, err := a.conversations.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	req := &Request{State: conv.State, Form: conv.Form, UserInput: input}

	var resp *Response
	if conv.State.LatestQuestion == "" && strings.TrimSpace(input) == "" {
		resp, err = a.flow.Begin(ctx, req)
	} else {
		resp, err = a.flow.Invoke(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	conv.State = resp.State
	if err := a.conversations.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	if a.transcripts != nil {
		msgs := []*schema.Message{schema.AssistantMessage(resp.Message, nil)}
		if strings.TrimSpace(input) != "" {
			msgs = append([]*schema.Message{schema.UserMessage(input)}, msgs...)
		}
		if _, err := a.transcripts.Append(ctx, msgs...); err != nil {
			return nil, fmt.Errorf("failed to record transcript: %w", err)
		}
	}
	return resp, nil
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: errors.New("no messages in input"),
			})
			return
		}
		resp, err := a.Step(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("flow invoke failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(resp.Message, nil),
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}
