package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tbxark/voiceform/command"
	"github.com/tbxark/voiceform/dialogue"
	"github.com/tbxark/voiceform/extract"
	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/patch"
	"github.com/tbxark/voiceform/types"
)

// FormFlow runs one conversation turn: command parsing, extraction into the
// form, then the next prompt chosen from the first missing field.
type FormFlow struct {
	schema            string
	spec              FormSpec
	engine            *extract.Engine
	dialogueGenerator dialogue.Generator
	commandParser     command.Parser
	submitter         Submitter
}

type FlowOption func(*FormFlow)

// WithSubmitter sets where confirmed registrations go.
func WithSubmitter(s Submitter) FlowOption {
	return func(f *FormFlow) { f.submitter = s }
}

func NewFormFlow(
	spec FormSpec,
	engine *extract.Engine,
	dialogGen dialogue.Generator,
	commandParser command.Parser,
	opts ...FlowOption,
) (*FormFlow, error) {
	schema, err := spec.JsonSchema()
	if err != nil {
		return nil, err
	}
	flow := &FormFlow{
		schema:            schema,
		spec:              spec,
		engine:            engine,
		dialogueGenerator: dialogGen,
		commandParser:     commandParser,
	}
	for _, opt := range opts {
		opt(flow)
	}
	return flow, nil
}

// NewLocalFormFlow wires the keyword command parser, the prompt catalog and
// an extraction engine configured with the policy's email setting.
func NewLocalFormFlow(spec *RegistrationSpec, hospital string, engineOpts []extract.Option, opts ...FlowOption) (*FormFlow, error) {
	engineOpts = append([]extract.Option{extract.WithEmail(spec.Policy.CollectEmail)}, engineOpts...)
	return NewFormFlow(
		spec,
		extract.NewEngine(engineOpts...),
		dialogue.NewLocalDialogueGenerator(hospital),
		command.NewLocalCommandParser(),
		opts...,
	)
}

// Schema returns the JSON schema of the form.
func (a *FormFlow) Schema() string {
	return a.schema
}

// Summary renders the review table of f.
func (a *FormFlow) Summary(f form.Reader) string {
	return a.spec.Summary(f)
}

// Paused returns the message shown when a conversation is paused.
func (a *FormFlow) Paused(ctx context.Context) (string, error) {
	return a.say(ctx, &dialogue.Request{Kind: dialogue.KindPaused})
}

// Begin greets the user and asks the first missing question.
func (a *FormFlow) Begin(ctx context.Context, input *Request) (*Response, error) {
	if input.Form == nil {
		return nil, errors.New("agent: request has no form")
	}
	input.State.ensure()
	greeting, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindGreeting, Form: input.Form})
	if err != nil {
		return a.handleError(err, input)
	}
	return a.prompt(ctx, input, &Response{State: input.State}, []string{greeting})
}

// Invoke processes one utterance.
func (a *FormFlow) Invoke(ctx context.Context, input *Request) (*Response, error) {
	if input.Form == nil {
		return nil, errors.New("agent: request has no form")
	}
	input.State.ensure()
	return a.runInternal(ctx, input)
}

func (a *FormFlow) runInternal(ctx context.Context, input *Request) (*Response, error) {
	state := input.State
	text := strings.TrimSpace(input.UserInput)
	resp := &Response{State: state}

	if _, done := state.Current.(CompletedStep); done {
		message, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindFinished, Phase: state.Phase})
		if err != nil {
			return a.handleError(err, input)
		}
		return a.finish(resp, nil, message), nil
	}

	turn := &types.TurnRequest{
		Step:         state.Step(),
		Phase:        state.Phase,
		LastQuestion: state.LastQuestion,
		AskCount:     state.AskCount[state.LastQuestion],
		MessagePair: types.MessagePair{
			Question: state.LatestQuestion,
			Answer:   text,
		},
		MissingFields: a.spec.MissingFacts(input.Form, state.AskCount),
	}

	// command
	cmd, err := a.commandParser.ParseCommand(ctx, turn)
	if err != nil {
		return a.handleError(fmt.Errorf("failed to parse command: %w", err), input)
	}
	resp.Command = cmd
	slog.Debug("Parsed command", "command", cmd, "step", turn.Step, "last_question", turn.LastQuestion)

	switch {
	case cmd == command.Help:
		help, hErr := a.say(ctx, &dialogue.Request{Kind: dialogue.KindHelp})
		if hErr != nil {
			return a.handleError(hErr, input)
		}
		resp.Message = strings.TrimSpace(help + " " + state.LatestQuestion)
		resp.Question = state.LatestQuestion
		return resp, nil
	case cmd.IsSkip():
		return a.handleSkip(ctx, input, cmd, resp)
	}

	if state.Step() == types.StepConfirmation {
		return a.handleConfirmation(ctx, input, cmd, text, resp)
	}
	return a.collect(ctx, input, text, resp)
}

// collect extracts field values from text and moves to the next question.
func (a *FormFlow) collect(ctx context.Context, input *Request, text string, resp *Response) (*Response, error) {
	state := input.State

	var reopened types.FieldID
	if state.Correcting {
		if field, ok := extract.MentionedField(text); ok && slices.Contains(a.spec.Fields(), field) {
			reopened = field
			state.LastQuestion = field
			state.Current = stepFor(field)
			state.AskCount[field] = 0
			slog.Debug("Reopened field for correction", "field", field)
		}
	}

	var notices []string
	if state.Step() != types.StepEmergencyContact && extract.IsUrgent(text) {
		urgent, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindUrgent})
		if err != nil {
			return a.handleError(err, input)
		}
		notices = append(notices, urgent)
	}

	if reopened != "" {
		// only what follows the field mention can be the new value
		text = extract.CorrectionValue(text, reopened)
		if text == "" {
			return a.askCorrection(ctx, input, resp, notices, reopened)
		}
	}

	// extraction
	outcome := a.engine.Extract(text, extract.Context{
		Step:         state.Step(),
		LastQuestion: state.LastQuestion,
		SubIndex:     subIndex(state.Current),
		AskCount:     state.AskCount,
		PendingYear:  state.PendingYear,
		Form:         input.Form,
	})
	ops := make([]patch.Operation, 0, len(outcome.Fills))
	for _, fill := range outcome.Fills {
		ops = append(ops, patch.Set(fill.Field, fill.Value))
	}
	slog.Debug("Applying extracted fields", "ops", ops)
	changed, err := input.Form.Apply(ops)
	if err != nil {
		return a.handleError(fmt.Errorf("failed to apply fields: %w", err), input)
	}
	resp.Filled = patch.Fields(ops)
	slog.Debug("Applied extracted fields", "changed", changed, "matched", outcome.Matched)
	notices = append(notices, outcome.Notices...)

	if input.Form.IsSet(types.FieldDateOfBirth) {
		state.PendingYear = 0
	}
	if outcome.PendingYear > 0 {
		state.PendingYear = outcome.PendingYear
	}

	if reopened != "" && !outcome.Filled(reopened) {
		return a.askCorrection(ctx, input, resp, notices, reopened)
	}
	if outcome.FollowUp != "" && !outcome.Filled(outcome.FollowUpField) {
		state.LastQuestion = outcome.FollowUpField
		state.Current = stepFor(outcome.FollowUpField)
		return a.finish(resp, notices, outcome.FollowUp), nil
	}
	return a.prompt(ctx, input, resp, notices)
}

func (a *FormFlow) askCorrection(ctx context.Context, input *Request, resp *Response, notices []string, field types.FieldID) (*Response, error) {
	question, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindCorrect, Field: field, Form: input.Form})
	if err != nil {
		return a.handleError(err, input)
	}
	return a.finish(resp, notices, question), nil
}

// prompt moves the state to the first missing field and asks for it, or to
// confirmation once nothing is missing.
func (a *FormFlow) prompt(ctx context.Context, input *Request, resp *Response, notices []string) (*Response, error) {
	state := input.State
	missing := a.spec.MissingFacts(input.Form, state.AskCount)
	if len(missing) == 0 {
		state.Current = ConfirmationStep{}
		state.Phase = types.PhaseConfirming
		state.LastQuestion = ""
		state.Correcting = false
		question, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindConfirm, Phase: state.Phase, Form: input.Form})
		if err != nil {
			return a.handleError(err, input)
		}
		resp.Summary = a.spec.Summary(input.Form)
		return a.finish(resp, notices, question), nil
	}

	field := missing[0].Field
	state.Current = stepFor(field)
	state.Phase = types.PhaseCollecting
	state.LastQuestion = field
	state.AskCount[field]++
	question, err := a.say(ctx, &dialogue.Request{
		Kind:     dialogue.KindAsk,
		Phase:    state.Phase,
		Field:    field,
		AskCount: state.AskCount[field],
		Form:     input.Form,
	})
	if err != nil {
		return a.handleError(err, input)
	}
	resp.Escalated = state.AskCount[field] > 1
	slog.Debug("Asking field", "field", field, "ask_count", state.AskCount[field], "step", state.Step())
	return a.finish(resp, notices, question), nil
}

func (a *FormFlow) handleSkip(ctx context.Context, input *Request, cmd command.Command, resp *Response) (*Response, error) {
	state := input.State
	field, ok := cmd.SkipField()
	if !ok {
		field = state.LastQuestion
	}
	if field == "" || !slices.Contains(a.spec.Fields(), field) {
		return a.repeat(ctx, input, resp, nil)
	}
	if input.Form.IsSet(field) && field != state.LastQuestion {
		// a skip never discards a value that was not asked for
		return a.repeat(ctx, input, resp, nil)
	}

	value := types.SkippedByUser
	if field == types.FieldGender {
		value = extract.GenderOther
	}
	if _, err := input.Form.Apply([]patch.Operation{patch.Set(field, value)}); err != nil {
		return a.handleError(fmt.Errorf("failed to skip %s: %w", field, err), input)
	}
	if field == types.FieldDateOfBirth {
		state.PendingYear = 0
	}
	resp.Skipped = []types.FieldID{field}
	slog.Debug("Skipped field", "field", field, "value", value)

	notice, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindSkipped, Field: field, SkipValue: value})
	if err != nil {
		return a.handleError(err, input)
	}
	if field != state.LastQuestion {
		return a.repeat(ctx, input, resp, []string{notice})
	}
	return a.prompt(ctx, input, resp, []string{notice})
}

// repeat asks the latest question again without counting it as a new ask.
func (a *FormFlow) repeat(ctx context.Context, input *Request, resp *Response, notices []string) (*Response, error) {
	if input.State.LatestQuestion == "" || input.State.LastQuestion == "" {
		return a.prompt(ctx, input, resp, notices)
	}
	return a.finish(resp, notices, input.State.LatestQuestion), nil
}

func (a *FormFlow) handleConfirmation(ctx context.Context, input *Request, cmd command.Command, text string, resp *Response) (*Response, error) {
	state := input.State
	switch cmd {
	case command.Affirm:
		return a.submit(ctx, input, resp)
	case command.Deny:
		state.Current = PersonalStep{}
		state.Phase = types.PhaseCollecting
		state.LastQuestion = ""
		state.Correcting = true
		if _, named := extract.MentionedField(text); named {
			return a.collect(ctx, input, text, resp)
		}
		message, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindDenied, Phase: state.Phase})
		if err != nil {
			return a.handleError(err, input)
		}
		return a.finish(resp, nil, message), nil
	default:
		message, err := a.say(ctx, &dialogue.Request{Kind: dialogue.KindUnrecognized, Phase: state.Phase})
		if err != nil {
			return a.handleError(err, input)
		}
		return a.finish(resp, nil, message), nil
	}
}

func (a *FormFlow) submit(ctx context.Context, input *Request, resp *Response) (*Response, error) {
	state := input.State
	var completion *dialogue.Completion
	if a.submitter != nil {
		receipt, err := a.submitter.Submit(ctx, input.Form.Snapshot())
		if err != nil {
			return a.handleError(fmt.Errorf("failed to submit registration: %w", err), input)
		}
		state.Receipt = receipt
		completion = &dialogue.Completion{
			Token:         receipt.Token,
			TimeRange:     receipt.TimeRange,
			Position:      receipt.Position,
			EstimatedWait: receipt.EstimatedWait,
		}
		slog.Debug("Submitted registration", "receipt", receipt.ID, "token", receipt.Token)
	}
	state.Current = CompletedStep{}
	state.Phase = types.PhaseConfirmed
	state.LastQuestion = ""
	message, err := a.say(ctx, &dialogue.Request{
		Kind:       dialogue.KindComplete,
		Phase:      state.Phase,
		Form:       input.Form,
		Completion: completion,
	})
	if err != nil {
		return a.handleError(err, input)
	}
	return a.finish(resp, nil, message), nil
}

func (a *FormFlow) say(ctx context.Context, req *dialogue.Request) (string, error) {
	message, err := a.dialogueGenerator.GenerateDialogue(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to generate dialogue: %w", err)
	}
	return message, nil
}

func (a *FormFlow) finish(resp *Response, notices []string, question string) *Response {
	parts := append(slices.Clone(notices), question)
	resp.Message = strings.TrimSpace(strings.Join(parts, " "))
	resp.Question = question
	resp.State.LatestQuestion = question
	return resp
}

func (a *FormFlow) handleError(err error, input *Request) (*Response, error) {
	slog.Warn("Turn failed", "error", err)
	message := "Sorry, I ran into a problem processing that. Could you please repeat?"
	return &Response{
		Message:  message,
		Question: input.State.LatestQuestion,
		State:    input.State,
		Metadata: map[string]string{
			"error": err.Error(),
		},
	}, nil
}
