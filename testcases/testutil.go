// Package testcases holds end-to-end registration scenarios driven through
// the public agent and session surfaces.
package testcases

import (
	"context"
	"testing"
	"time"

	"github.com/tbxark/voiceform/agent"
	"github.com/tbxark/voiceform/extract"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/types"
)

// Today is the fixed clock every scenario runs at.
var Today = time.Date(2026, time.October, 18, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return Today }

type agentOptions struct {
	policy    agent.Policy
	submitter agent.Submitter
}

type AgentOption func(*agentOptions)

func WithPolicy(p agent.Policy) AgentOption {
	return func(o *agentOptions) { o.policy = p }
}

func WithRegistry(r registry.Registry) AgentOption {
	return func(o *agentOptions) { o.submitter = r }
}

// NewFlow builds the rule-based flow used by every scenario.
func NewFlow(t *testing.T, opts ...AgentOption) *agent.FormFlow {
	t.Helper()
	o := &agentOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.submitter == nil {
		o.submitter = registry.NewMemoryRegistry(registry.WithHospital("City General Hospital"), registry.WithClock(clock))
	}
	flow, err := agent.NewLocalFormFlow(
		agent.NewRegistrationSpec(o.policy),
		"City General Hospital",
		[]extract.Option{extract.WithClock(clock)},
		agent.WithSubmitter(o.submitter),
	)
	if err != nil {
		t.Fatalf("failed to build flow: %v", err)
	}
	return flow
}

// TestAgent is one patient conversation with the registration agent.
type TestAgent struct {
	t             *testing.T
	ctx           context.Context
	agent         *agent.Agent
	conversations *agent.MemoryConversationStore
}

func NewTestAgent(t *testing.T, opts ...AgentOption) *TestAgent {
	t.Helper()
	conversations := agent.NewMemoryConversationStore(nil)
	return &TestAgent{
		t:             t,
		ctx:           agent.WithStateKey(context.Background(), t.Name()),
		agent:         agent.NewAgent("Registration", "test", NewFlow(t, opts...), conversations, nil),
		conversations: conversations,
	}
}

// Start opens the conversation with the greeting.
func (a *TestAgent) Start() *agent.Response {
	a.t.Helper()
	return a.Say("")
}

func (a *TestAgent) Say(input string) *agent.Response {
	a.t.Helper()
	resp, err := a.agent.Step(a.ctx, input)
	if err != nil {
		a.t.Fatalf("Step(%q): %v", input, err)
	}
	if msg := resp.Metadata["error"]; msg != "" {
		a.t.Fatalf("Step(%q) reported: %s", input, msg)
	}
	return resp
}

// SayAll answers several questions in order.
func (a *TestAgent) SayAll(inputs ...string) {
	a.t.Helper()
	for _, in := range inputs {
		a.Say(in)
	}
}

func (a *TestAgent) Conversation() *agent.Conversation {
	a.t.Helper()
	conv, err := a.conversations.Load(a.ctx)
	if err != nil {
		a.t.Fatalf("Load: %v", err)
	}
	return conv
}

func (a *TestAgent) Field(f types.FieldID) string {
	return a.Conversation().Form.Get(f)
}

// ExpectAsking fails unless the agent's current question is about field.
func (a *TestAgent) ExpectAsking(field types.FieldID) {
	a.t.Helper()
	state := a.Conversation().State
	if state.LastQuestion != field {
		a.t.Fatalf("asking %q, want %q (last question %q)", state.LastQuestion, field, state.LatestQuestion)
	}
}

// Identity answers the name and birth date questions.
var Identity = []string{"My name is John Smith", "15 June 1990"}

// PersonalDetails answers everything up to the medical questions.
var PersonalDetails = append(append([]string{}, Identity...), "male", "plus one", "555 123 4567", "I live at 7 Elm Ave.")

// Everything answers every question up to the confirmation.
var Everything = append(append([]string{}, PersonalDetails...),
	"headache", "none", "none", "none",
	"Jane Doe, my sister", "555 987 6543",
)
