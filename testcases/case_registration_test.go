package testcases

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbxark/voiceform/agent"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/types"
)

func TestNameAdvancesToBirthDate(t *testing.T) {
	t.Parallel()
	a := NewTestAgent(t)
	a.Start()

	resp := a.Say("My name is John Smith")
	if a.Field(types.FieldFirstName) != "John" || a.Field(types.FieldLastName) != "Smith" {
		t.Fatalf("name = %q %q", a.Field(types.FieldFirstName), a.Field(types.FieldLastName))
	}
	if a.Conversation().State.Step() != types.StepPersonalDetails {
		t.Errorf("step = %s", a.Conversation().State.Step())
	}
	a.ExpectAsking(types.FieldDateOfBirth)
	if !strings.Contains(resp.Message, "John") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRegistrationIssuesTokens(t *testing.T) {
	t.Parallel()
	reg, err := registry.NewSQLiteRegistry(
		registry.WithDSN(filepath.Join(t.TempDir(), "registry.db")),
		registry.WithHospital("City General Hospital"),
		registry.WithClock(clock),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	for i, name := range []string{"first", "second"} {
		t.Run(name, func(t *testing.T) {
			a := NewTestAgent(t, WithRegistry(reg))
			a.Start()
			a.SayAll(Everything...)
			if step := a.Conversation().State.Step(); step != types.StepConfirmation {
				t.Fatalf("step = %s", step)
			}

			resp := a.Say("yes")
			state := a.Conversation().State
			if state.Step() != types.StepCompleted || state.Receipt == nil {
				t.Fatalf("state = %+v", state)
			}
			if state.Receipt.Token != i+1 {
				t.Errorf("token = %d, want %d", state.Receipt.Token, i+1)
			}
			if !strings.Contains(resp.Message, "token number is") {
				t.Errorf("completion = %q", resp.Message)
			}
			_, stored, err := reg.Get(context.Background(), state.Receipt.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.FirstName != "John" || stored.EmergencyPhone != "555-987-6543" {
				t.Errorf("stored = %+v", stored)
			}
		})
	}
}

func TestConversationsAreIsolated(t *testing.T) {
	t.Parallel()
	john := NewTestAgent(t)
	john.Start()
	john.Say("My name is John Smith")

	// same agent and store, different routing key
	mary := &TestAgent{t: t, ctx: agent.WithStateKey(context.Background(), "mary"), agent: john.agent, conversations: john.conversations}
	mary.Start()
	mary.Say("I'm Mary Jones")

	if john.Field(types.FieldFirstName) != "John" || mary.Field(types.FieldFirstName) != "Mary" {
		t.Errorf("john = %q, mary = %q", john.Field(types.FieldFirstName), mary.Field(types.FieldFirstName))
	}
}
