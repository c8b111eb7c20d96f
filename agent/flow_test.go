package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbxark/voiceform/command"
	"github.com/tbxark/voiceform/dialogue"
	"github.com/tbxark/voiceform/extract"
	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/types"
)

var testNow = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	flow  *FormFlow
	reg   *registry.MemoryRegistry
	state *State
	form  *form.Form
}

func newHarness(t *testing.T, policy Policy) *harness {
	t.Helper()
	clock := func() time.Time { return testNow }
	reg := registry.NewMemoryRegistry(registry.WithHospital("City General"), registry.WithClock(clock))
	flow, err := NewLocalFormFlow(
		NewRegistrationSpec(policy),
		"City General Hospital",
		[]extract.Option{extract.WithClock(clock)},
		WithSubmitter(reg),
	)
	if err != nil {
		t.Fatalf("NewLocalFormFlow: %v", err)
	}
	return &harness{t: t, flow: flow, reg: reg, state: NewState(), form: form.New()}
}

func (h *harness) begin() *Response {
	h.t.Helper()
	resp, err := h.flow.Begin(context.Background(), &Request{State: h.state, Form: h.form})
	if err != nil {
		h.t.Fatalf("Begin: %v", err)
	}
	return resp
}

func (h *harness) say(input string) *Response {
	h.t.Helper()
	resp, err := h.flow.Invoke(context.Background(), &Request{State: h.state, Form: h.form, UserInput: input})
	if err != nil {
		h.t.Fatalf("Invoke(%q): %v", input, err)
	}
	if resp.Metadata["error"] != "" {
		h.t.Fatalf("Invoke(%q) error: %s", input, resp.Metadata["error"])
	}
	return resp
}

func (h *harness) expectAsking(field types.FieldID) {
	h.t.Helper()
	if h.state.LastQuestion != field {
		h.t.Fatalf("asking %q, want %q (message %q)", h.state.LastQuestion, field, h.state.LatestQuestion)
	}
}

func (h *harness) fillIdentity() {
	h.t.Helper()
	h.begin()
	h.say("My name is John Smith")
	h.say("15 June 1990")
}

func TestFlowFullRegistration(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})

	resp := h.begin()
	if !strings.Contains(resp.Message, "Welcome to City General Hospital") || !strings.Contains(resp.Message, "full name") {
		t.Errorf("greeting = %q", resp.Message)
	}
	h.expectAsking(types.FieldFirstName)

	resp = h.say("My name is John Smith")
	if h.form.Get(types.FieldFirstName) != "John" || h.form.Get(types.FieldLastName) != "Smith" {
		t.Fatalf("name = %+v", h.form.Snapshot())
	}
	if h.state.Step() != types.StepPersonalDetails {
		t.Errorf("step = %s", h.state.Step())
	}
	h.expectAsking(types.FieldDateOfBirth)

	resp = h.say("15 June 1990")
	if !strings.Contains(resp.Message, "36 years old") {
		t.Errorf("dob message = %q", resp.Message)
	}
	h.expectAsking(types.FieldGender)

	h.say("female")
	h.expectAsking(types.FieldCountryCode)

	resp = h.say("plus nine one")
	if !strings.Contains(resp.Message, "+91 for India") {
		t.Errorf("country message = %q", resp.Message)
	}
	h.expectAsking(types.FieldPhone)

	h.say("555 123 4567")
	h.expectAsking(types.FieldAddress)

	h.say("I live at 7 Elm Ave.")
	h.expectAsking(types.FieldSymptoms)
	if _, ok := h.state.Current.(MedicalStep); !ok {
		t.Errorf("current = %#v, want MedicalStep", h.state.Current)
	}

	h.say("headache and fever")
	h.expectAsking(types.FieldAllergies)
	h.say("no allergies")
	h.expectAsking(types.FieldMedications)
	h.say("none")
	h.expectAsking(types.FieldMedicalHistory)
	h.say("none")
	h.expectAsking(types.FieldEmergencyName)

	h.say("Jane Doe, my sister")
	if h.form.Get(types.FieldEmergencyRelation) != "Sister" {
		t.Errorf("relation = %q", h.form.Get(types.FieldEmergencyRelation))
	}
	h.expectAsking(types.FieldEmergencyPhone)

	resp = h.say("555 987 6543")
	if h.state.Step() != types.StepConfirmation || h.state.Phase != types.PhaseConfirming {
		t.Fatalf("step = %s, phase = %s", h.state.Step(), h.state.Phase)
	}
	if !strings.Contains(resp.Summary, "John") || !strings.Contains(resp.Summary, "555-987-6543") {
		t.Errorf("summary = %q", resp.Summary)
	}

	want := map[types.FieldID]string{
		types.FieldDateOfBirth:    "1990-06-15",
		types.FieldGender:         "female",
		types.FieldCountryCode:    "+91",
		types.FieldPhone:          "555-123-4567",
		types.FieldAddress:        "7 Elm Ave",
		types.FieldSymptoms:       "headache and fever",
		types.FieldAllergies:      extract.NoneReported[types.FieldAllergies],
		types.FieldMedicalHistory: extract.NoneReported[types.FieldMedicalHistory],
		types.FieldEmergencyName:  "Jane Doe",
	}
	for field, value := range want {
		if got := h.form.Get(field); got != value {
			t.Errorf("%s = %q, want %q", field, got, value)
		}
	}

	resp = h.say("yes, that's right")
	if resp.Command != command.Affirm {
		t.Errorf("command = %s", resp.Command)
	}
	if h.state.Step() != types.StepCompleted || h.state.Phase != types.PhaseConfirmed {
		t.Fatalf("step = %s, phase = %s", h.state.Step(), h.state.Phase)
	}
	if h.state.Receipt == nil || h.state.Receipt.Token != 1 {
		t.Fatalf("receipt = %+v", h.state.Receipt)
	}
	if !strings.Contains(resp.Message, "Thank you, John!") || !strings.Contains(resp.Message, "token number is 1") {
		t.Errorf("completion = %q", resp.Message)
	}
	if _, stored, err := h.reg.Get(context.Background(), h.state.Receipt.ID); err != nil || stored.Phone != "555-123-4567" {
		t.Errorf("stored = %+v, %v", stored, err)
	}

	resp = h.say("hello?")
	if !strings.Contains(resp.Message, "already complete") {
		t.Errorf("after completion = %q", resp.Message)
	}
}

func TestFlowGenderEscalationAndSkip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.fillIdentity()
	h.expectAsking(types.FieldGender)

	wants := []string{"didn't catch that clearly", "Let me try once more", "skip gender"}
	for i, want := range wants {
		resp := h.say("banana")
		if !resp.Escalated || !strings.Contains(resp.Message, want) {
			t.Errorf("attempt %d: escalated=%v message=%q, want %q", i+2, resp.Escalated, resp.Message, want)
		}
	}
	if h.state.AskCount[types.FieldGender] != 4 {
		t.Errorf("ask count = %d", h.state.AskCount[types.FieldGender])
	}

	resp := h.say("skip gender")
	if resp.Command != command.SkipGender || len(resp.Skipped) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if got := h.form.Get(types.FieldGender); got != extract.GenderOther {
		t.Errorf("gender = %q", got)
	}
	if !strings.Contains(resp.Message, "recorded your gender as other") {
		t.Errorf("message = %q", resp.Message)
	}
	h.expectAsking(types.FieldCountryCode)
}

func TestFlowSkipOtherFieldRepeatsQuestion(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.fillIdentity()
	question := h.state.LatestQuestion

	resp := h.say("skip address")
	if got := h.form.Get(types.FieldAddress); got != types.SkippedByUser {
		t.Errorf("address = %q", got)
	}
	if !strings.HasSuffix(resp.Message, question) || h.state.AskCount[types.FieldGender] != 1 {
		t.Errorf("message = %q, asks = %d", resp.Message, h.state.AskCount[types.FieldGender])
	}

	h.say("male")
	h.say("plus one")
	h.say("555 123 4567")
	h.expectAsking(types.FieldSymptoms)
}

func TestFlowSkipCurrentKeepsAnsweredFields(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.fillIdentity()

	resp := h.say("skip phone")
	if len(resp.Skipped) != 1 || h.form.Get(types.FieldPhone) != types.SkippedByUser {
		t.Fatalf("resp = %+v", resp)
	}
	h.say("skip field")
	if h.form.Get(types.FieldFirstName) != "John" {
		t.Errorf("first name = %q", h.form.Get(types.FieldFirstName))
	}
	if h.form.Get(types.FieldGender) != extract.GenderOther {
		t.Errorf("gender = %q", h.form.Get(types.FieldGender))
	}
}

func TestFlowHelpRepeatsQuestion(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.begin()
	question := h.state.LatestQuestion

	resp := h.say("help")
	if resp.Command != command.Help {
		t.Fatalf("command = %s", resp.Command)
	}
	if !strings.HasSuffix(resp.Message, question) || h.state.AskCount[types.FieldFirstName] != 1 {
		t.Errorf("message = %q, asks = %d", resp.Message, h.state.AskCount[types.FieldFirstName])
	}
}

func TestFlowYearOnlyFollowUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.begin()
	h.say("My name is John Smith")

	resp := h.say("1990")
	if !strings.Contains(resp.Message, "I heard 1990") || h.state.PendingYear != 1990 {
		t.Fatalf("message = %q, pending = %d", resp.Message, h.state.PendingYear)
	}
	h.expectAsking(types.FieldDateOfBirth)

	h.say("June twenty eighth")
	if got := h.form.Get(types.FieldDateOfBirth); got != "1990-06-28" {
		t.Errorf("dob = %q", got)
	}
	if h.state.PendingYear != 0 {
		t.Errorf("pending year kept: %d", h.state.PendingYear)
	}
	h.expectAsking(types.FieldGender)
}

func completePersonal(h *harness) {
	h.fillIdentity()
	h.say("male")
	h.say("plus one")
	h.say("555 123 4567")
	h.say("I live at 7 Elm Ave.")
	h.say("none")
	h.say("none")
	h.say("none")
	h.say("none")
	h.say("Jane Doe, my sister")
	h.say("555 987 6543")
}

func TestFlowCorrectionAfterDenial(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	completePersonal(h)
	if h.state.Step() != types.StepConfirmation {
		t.Fatalf("step = %s", h.state.Step())
	}

	resp := h.say("maybe")
	if resp.Command != command.None || h.state.Step() != types.StepConfirmation {
		t.Errorf("unrecognized = %q, step = %s", resp.Message, h.state.Step())
	}

	resp = h.say("no, my phone number is wrong")
	if resp.Command != command.Deny {
		t.Fatalf("command = %s", resp.Command)
	}
	if !strings.Contains(resp.Message, "correct phone number") {
		t.Errorf("message = %q", resp.Message)
	}
	h.expectAsking(types.FieldPhone)

	h.say("555 222 3333")
	if got := h.form.Get(types.FieldPhone); got != "555-222-3333" {
		t.Errorf("phone = %q", got)
	}
	if h.state.Step() != types.StepConfirmation || h.state.Correcting {
		t.Errorf("step = %s, correcting = %v", h.state.Step(), h.state.Correcting)
	}
}

func TestFlowDenialWithoutField(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	completePersonal(h)

	resp := h.say("no")
	if !strings.Contains(resp.Message, "What would you like to change?") {
		t.Errorf("message = %q", resp.Message)
	}
	if h.state.Phase != types.PhaseCollecting || !h.state.Correcting {
		t.Errorf("phase = %s, correcting = %v", h.state.Phase, h.state.Correcting)
	}

	h.say("my address is 42 Baker Street")
	if got := h.form.Get(types.FieldAddress); got != "42 Baker Street" {
		t.Errorf("address = %q", got)
	}
	if h.state.Step() != types.StepConfirmation {
		t.Errorf("step = %s", h.state.Step())
	}
}

func TestFlowSoftRequirement(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{SoftRequireAfter: 2})
	h.fillIdentity()
	h.say("male")
	h.say("plus one")
	h.expectAsking(types.FieldPhone)

	h.say("I don't know")
	h.expectAsking(types.FieldPhone)
	h.say("I don't know")
	h.expectAsking(types.FieldAddress)
	if h.form.IsSet(types.FieldPhone) {
		t.Errorf("phone = %q", h.form.Get(types.FieldPhone))
	}
}

func TestFlowEmailPolicy(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{CollectEmail: true})
	h.fillIdentity()
	h.say("male")
	h.say("plus one")
	h.say("555 123 4567")
	h.expectAsking(types.FieldEmail)
}

func TestFlowUrgentNotice(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.begin()
	resp := h.say("this is urgent, my name is John Smith")
	if !strings.Contains(resp.Message, "medical emergency") {
		t.Errorf("message = %q", resp.Message)
	}
}

type failingGenerator struct{}

func (failingGenerator) GenerateDialogue(ctx context.Context, req *dialogue.Request) (string, error) {
	return "", errors.New("catalog unavailable")
}

func TestFlowReportsErrorsInMetadata(t *testing.T) {
	t.Parallel()
	flow, err := NewFormFlow(
		NewRegistrationSpec(Policy{}),
		extract.NewEngine(),
		failingGenerator{},
		command.NewLocalCommandParser(),
	)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := flow.Invoke(context.Background(), &Request{State: NewState(), Form: form.New(), UserInput: "hello"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(resp.Metadata["error"], "catalog unavailable") {
		t.Errorf("metadata = %v", resp.Metadata)
	}

	if _, err := flow.Invoke(context.Background(), &Request{State: NewState()}); err == nil {
		t.Error("expected an error without a form")
	}
}

func TestFlowSchema(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	if !strings.Contains(h.flow.Schema(), "emergencyRelation") {
		t.Errorf("schema = %s", h.flow.Schema())
	}
}

func TestSpecSummaryListsMissing(t *testing.T) {
	t.Parallel()
	spec := NewRegistrationSpec(Policy{})
	f := form.New()
	if err := f.Fill(types.FieldFirstName, "John"); err != nil {
		t.Fatal(err)
	}
	out := spec.Summary(f)
	if !strings.Contains(out, "John") || !strings.Contains(out, "Missing required fields") {
		t.Errorf("summary = %s", out)
	}
	if missing := spec.MissingFacts(f, nil); len(missing) != len(spec.Fields())-1 {
		t.Errorf("missing = %d fields", len(missing))
	}
}

func TestFlowComplaintDoesNotBecomeValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		complaint string
		field     types.FieldID
		answer    string
		want      string
	}{
		{"no, my first name is wrong", types.FieldFirstName, "Jon", "Jon"},
		{"no, my last name is wrong", types.FieldLastName, "Smyth", "Smyth"},
		{"no, my address is wrong", types.FieldAddress, "42 Baker Street", "42 Baker Street"},
		{"no, my allergies are wrong", types.FieldAllergies, "penicillin", "penicillin"},
	}
	for _, tt := range tests {
		t.Run(tt.complaint, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, Policy{})
			completePersonal(h)
			before := h.form.Get(tt.field)

			resp := h.say(tt.complaint)
			if got := h.form.Get(tt.field); got != before {
				t.Fatalf("%s changed to %q by the complaint", tt.field, got)
			}
			if !strings.Contains(resp.Message, "Please tell me the correct") {
				t.Errorf("message = %q", resp.Message)
			}
			h.expectAsking(tt.field)

			h.say(tt.answer)
			if got := h.form.Get(tt.field); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
			if h.state.Step() != types.StepConfirmation {
				t.Errorf("step = %s", h.state.Step())
			}
		})
	}
}

func TestFlowCorrectionWithValueInSameSentence(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	completePersonal(h)

	h.say("no, my last name is Smyth")
	if got := h.form.Get(types.FieldLastName); got != "Smyth" {
		t.Errorf("last name = %q", got)
	}
	if h.form.Get(types.FieldFirstName) != "John" {
		t.Errorf("first name = %q", h.form.Get(types.FieldFirstName))
	}
	if h.state.Step() != types.StepConfirmation {
		t.Errorf("step = %s", h.state.Step())
	}
}

func TestFlowConfusionIsASymptom(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Policy{})
	h.fillIdentity()
	h.say("male")
	h.say("plus one")
	h.say("555 123 4567")
	h.say("I live at 7 Elm Ave.")
	h.expectAsking(types.FieldSymptoms)

	resp := h.say("I feel confused and dizzy")
	if resp.Command == command.Help {
		t.Fatal("symptom read as a help request")
	}
	if got := h.form.Get(types.FieldSymptoms); !strings.Contains(got, "confused") {
		t.Errorf("symptoms = %q", got)
	}
	h.expectAsking(types.FieldAllergies)

	resp = h.say("help")
	if resp.Command != command.Help {
		t.Errorf("command = %s", resp.Command)
	}
	h.expectAsking(types.FieldAllergies)
}
