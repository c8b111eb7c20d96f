package agent

import (
	"github.com/tbxark/voiceform/command"
	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/registry"
	"github.com/tbxark/voiceform/types"
)

// StepState is the registration step together with the sub-state only that
// step has. The concrete types are IdentityStep, PersonalStep, MedicalStep,
// EmergencyStep, ConfirmationStep and CompletedStep.
type StepState interface {
	Step() types.Step
	isStep()
}

type IdentityStep struct{}

type PersonalStep struct{}

// MedicalStep asks types.MedicalFields[Index].
type MedicalStep struct {
	Index int
}

// EmergencyStep asks types.EmergencyFields[Index].
type EmergencyStep struct {
	Index int
}

// ConfirmationStep reviews the filled form before submission.
type ConfirmationStep struct{}

type CompletedStep struct{}

func (IdentityStep) Step() types.Step     { return types.StepIdentity }
func (PersonalStep) Step() types.Step     { return types.StepPersonalDetails }
func (MedicalStep) Step() types.Step      { return types.StepMedical }
func (EmergencyStep) Step() types.Step    { return types.StepEmergencyContact }
func (ConfirmationStep) Step() types.Step { return types.StepConfirmation }
func (CompletedStep) Step() types.Step    { return types.StepCompleted }

func (IdentityStep) isStep()     {}
func (PersonalStep) isStep()     {}
func (MedicalStep) isStep()      {}
func (EmergencyStep) isStep()    {}
func (ConfirmationStep) isStep() {}
func (CompletedStep) isStep()    {}

// subIndex returns the medical or emergency sub-step, or 0.
func subIndex(s StepState) int {
	switch v := s.(type) {
	case MedicalStep:
		return v.Index
	case EmergencyStep:
		return v.Index
	}
	return 0
}

// stepFor returns the step that asks field.
func stepFor(field types.FieldID) StepState {
	switch field {
	case types.FieldFirstName, types.FieldLastName:
		return IdentityStep{}
	}
	for i, f := range types.MedicalFields {
		if f == field {
			return MedicalStep{Index: i}
		}
	}
	for i, f := range types.EmergencyFields {
		if f == field {
			return EmergencyStep{Index: i}
		}
	}
	return PersonalStep{}
}

// State is the conversation state of one registration. It lives for the
// session only.
type State struct {
	Current      StepState     `json:"-"`
	Phase        types.Phase   `json:"phase"`
	LastQuestion types.FieldID `json:"last_question,omitempty"`
	// AskCount counts prompts per field.
	AskCount map[types.FieldID]int `json:"ask_count"`
	// PendingYear holds a year-only birth date awaiting month and day.
	PendingYear int `json:"pending_year,omitempty"`
	// Correcting is set from a denied confirmation until the form is
	// reviewed again; naming a field then reopens it.
	Correcting     bool              `json:"correcting,omitempty"`
	LatestQuestion string            `json:"latest_question,omitempty"`
	Receipt        *registry.Receipt `json:"receipt,omitempty"`
}

func NewState() *State {
	return &State{
		Current:  IdentityStep{},
		Phase:    types.PhaseCollecting,
		AskCount: map[types.FieldID]int{},
	}
}

// Step returns the current registration step.
func (s *State) Step() types.Step {
	if s.Current == nil {
		return types.StepIdentity
	}
	return s.Current.Step()
}

func (s *State) ensure() {
	if s.Current == nil {
		s.Current = IdentityStep{}
	}
	if s.Phase == "" {
		s.Phase = types.PhaseCollecting
	}
	if s.AskCount == nil {
		s.AskCount = map[types.FieldID]int{}
	}
}

type Request struct {
	State     *State     `json:"state"`
	Form      *form.Form `json:"-"`
	UserInput string     `json:"user_input"`
}

type Response struct {
	// Message is the full reply to speak: notices followed by the question.
	Message string `json:"message,omitempty"`
	// Question is the prompt part of Message.
	Question string `json:"question,omitempty"`
	// Summary is the review table shown alongside the confirmation prompt.
	Summary   string            `json:"summary,omitempty"`
	State     *State            `json:"state,omitempty"`
	Command   command.Command   `json:"command,omitempty"`
	Filled    []types.FieldID   `json:"filled,omitempty"`
	Skipped   []types.FieldID   `json:"skipped,omitempty"`
	Escalated bool              `json:"escalated,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
