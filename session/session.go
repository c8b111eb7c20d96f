// Package session runs a voice registration: it speaks the assistant's
// replies, listens for the next utterance and feeds it to the form flow, one
// turn at a time, until the registration is submitted or the session stops.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/tbxark/voiceform/agent"
	"github.com/tbxark/voiceform/form"
	"github.com/tbxark/voiceform/observe"
	"github.com/tbxark/voiceform/speech"
	"github.com/tbxark/voiceform/types"
)

var (
	ErrAlreadyRunning         = errors.New("session: already running")
	ErrNotRunning             = errors.New("session: not running")
	ErrRecognitionUnavailable = errors.New("session: speech recognition unavailable")
	ErrPermissionDenied       = errors.New("session: microphone permission denied")
)

const turnFailedMessage = "Sorry, I ran into a problem. Could you please say that again?"

// Config holds the turn timing.
type Config struct {
	// SettleDelay separates the end of speech from listening so the
	// recognizer does not hear the synthesizer.
	SettleDelay time.Duration
	// RestartDelay debounces listening again after a failed listen.
	RestartDelay time.Duration
	// ListenTimeout bounds one listen. Zero waits for the recognizer.
	ListenTimeout time.Duration
	Recognition   speech.RecognizerConfig
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:   time.Second,
		RestartDelay:  2 * time.Second,
		ListenTimeout: 20 * time.Second,
		Recognition:   speech.DefaultRecognizerConfig(),
	}
}

type Option func(*Session)

func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithEventHandler receives every session event on the turn goroutine.
func WithEventHandler(fn func(Event)) Option {
	return func(s *Session) { s.onEvent = fn }
}

// WithForm fills an existing form instead of a new one.
func WithForm(f *form.Form) Option {
	return func(s *Session) { s.form = f }
}

// WithTranscripts records the conversation in ts, keyed by session ID.
func WithTranscripts(ts *agent.TranscriptStore) Option {
	return func(s *Session) { s.transcripts = ts }
}

// Session is one voice registration. Only one turn runs at a time.
type Session struct {
	ID string

	cfg         Config
	flow        *agent.FormFlow
	recognizer  speech.Recognizer
	speaker     *speech.Speaker
	metrics     *observe.Metrics
	onEvent     func(Event)
	transcripts *agent.TranscriptStore

	mu      sync.Mutex
	form    *form.Form
	state   *agent.State
	running bool
	paused  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a session. A nil recognizer makes Start fail with
// ErrRecognitionUnavailable; the form stays usable through other channels.
func New(flow *agent.FormFlow, recognizer speech.Recognizer, speaker *speech.Speaker, opts ...Option) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		cfg:         DefaultConfig(),
		flow:        flow,
		recognizer:  recognizer,
		speaker:     speaker,
		transcripts: agent.NewMemoryTranscriptStore(agent.KeepSystemLastNTrimmer{N: 200}),
		state:       agent.NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.form == nil {
		s.form = form.New()
	}
	return s
}

// Form returns the form being filled.
func (s *Session) Form() *form.Form {
	return s.form
}

// State returns a copy of the conversation state.
func (s *Session) State() agent.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := *s.state
	state.AskCount = make(map[types.FieldID]int, len(s.state.AskCount))
	for k, v := range s.state.AskCount {
		state.AskCount[k] = v
	}
	return state
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done is closed when the current run ends, whether completed or stopped.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// History returns the recorded conversation.
func (s *Session) History(ctx context.Context) ([]*schema.Message, error) {
	return s.transcripts.Load(s.transcriptKey(ctx))
}

// Start requests microphone access, resets the conversation state and
// begins the turn loop with a greeting. Form values are kept.
func (s *Session) Start(ctx context.Context) error {
	if s.Running() {
		return ErrAlreadyRunning
	}
	if s.recognizer == nil {
		return ErrRecognitionUnavailable
	}
	if pr, ok := s.recognizer.(speech.PermissionRequester); ok {
		if err := pr.RequestPermission(ctx); err != nil {
			if errors.Is(err, speech.ErrUnsupported) {
				return fmt.Errorf("%w: %w", ErrRecognitionUnavailable, err)
			}
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.state = agent.NewState()
	resp, err := s.flow.Begin(ctx, &agent.Request{State: s.state, Form: s.form})
	if err != nil {
		return fmt.Errorf("failed to begin conversation: %w", err)
	}
	slog.Debug("Session started", "session", s.ID)
	s.launch(ctx, resp.Message, EventStarted)
	return nil
}

// Stop cancels any listen or speech in flight and ends the run.
func (s *Session) Stop() error {
	return s.halt(false)
}

// Pause ends the run but keeps the conversation state for Resume.
func (s *Session) Pause() error {
	return s.halt(true)
}

// Resume continues a paused conversation by repeating the last question.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	if !s.paused {
		return ErrNotRunning
	}
	slog.Debug("Session resumed", "session", s.ID)
	s.launch(ctx, s.state.LatestQuestion, EventResumed)
	return nil
}

// launch starts the turn loop. s.mu must be held.
func (s *Session) launch(ctx context.Context, first string, kind EventKind) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.paused = false
	s.cancel = cancel
	s.done = done
	go s.run(runCtx, first, kind, done)
}

func (s *Session) halt(pause bool) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	s.speaker.Cancel()
	<-done

	s.mu.Lock()
	s.paused = pause
	s.mu.Unlock()

	ctx := context.Background()
	message, err := s.flow.Paused(ctx)
	if err != nil {
		slog.Warn("Paused message unavailable", "error", err)
	}
	s.record(ctx, schema.Assistant, message)
	kind := EventStopped
	if pause {
		kind = EventPaused
	}
	s.emit(Event{Kind: kind, Text: message})
	slog.Debug("Session halted", "session", s.ID, "paused", pause)
	return nil
}

func (s *Session) run(ctx context.Context, message string, kind EventKind, done chan struct{}) {
	s.metrics.SessionStarted(ctx)
	defer func() {
		s.metrics.SessionEnded(context.WithoutCancel(ctx))
		s.mu.Lock()
		if s.done == done {
			s.running = false
			s.cancel = nil
		}
		s.mu.Unlock()
		close(done)
	}()
	s.emit(Event{Kind: kind})

	delay := s.cfg.SettleDelay
	for {
		s.say(ctx, message)
		if ctx.Err() != nil {
			return
		}
		if s.completed() {
			s.emit(Event{Kind: EventCompleted, Text: message})
			return
		}
		if !sleep(ctx, delay) {
			return
		}
		var restart bool
		message, restart = s.turn(ctx)
		if ctx.Err() != nil {
			return
		}
		delay = s.cfg.SettleDelay
		if restart {
			delay = s.cfg.RestartDelay
		}
	}
}

// turn listens until an utterance is processed or a failure needs a spoken
// message. restart reports a failed listen.
func (s *Session) turn(ctx context.Context) (message string, restart bool) {
	for {
		text, err := s.listen(ctx)
		if ctx.Err() != nil {
			return "", false
		}
		if err == nil && strings.TrimSpace(text) != "" {
			return s.handle(ctx, text), false
		}
		if err == nil {
			err = speech.ErrNoResult
		}

		var recErr *speech.RecognitionError
		switch {
		case errors.Is(err, errListenTimeout):
			s.metrics.RecordRecognitionError(ctx, "timeout")
			s.emit(Event{Kind: EventTimeout, Err: err})
			noSpeech := &speech.RecognitionError{Kind: speech.KindNoSpeech}
			return strings.TrimSpace(noSpeech.UserMessage() + " " + s.latestQuestion()), true
		case errors.As(err, &recErr) && !recErr.Silent():
			s.metrics.RecordRecognitionError(ctx, string(recErr.Kind))
			s.emit(Event{Kind: EventRecognitionError, Text: recErr.UserMessage(), Err: err})
			slog.Warn("Speech recognition failed", "session", s.ID, "kind", recErr.Kind, "error", err)
			return recErr.UserMessage(), true
		case errors.As(err, &recErr), errors.Is(err, speech.ErrNoResult):
			// nothing to report; listen again after the debounce
			slog.Debug("Listening ended without a result", "session", s.ID, "error", err)
		default:
			generic := &speech.RecognitionError{Kind: "unknown", Err: err}
			s.metrics.RecordRecognitionError(ctx, string(generic.Kind))
			s.emit(Event{Kind: EventRecognitionError, Text: generic.UserMessage(), Err: err})
			slog.Warn("Speech recognition failed", "session", s.ID, "error", err)
			return generic.UserMessage(), true
		}
		if !sleep(ctx, s.cfg.RestartDelay) {
			return "", false
		}
	}
}

var errListenTimeout = errors.New("session: listen timed out")

func (s *Session) listen(ctx context.Context) (string, error) {
	listenCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.ListenTimeout > 0 {
		listenCtx, cancel = context.WithTimeout(ctx, s.cfg.ListenTimeout)
	}
	defer cancel()
	s.emit(Event{Kind: EventListening})
	text, err := s.recognizer.Listen(listenCtx, s.cfg.Recognition)
	if ctx.Err() == nil && errors.Is(listenCtx.Err(), context.DeadlineExceeded) {
		return "", errListenTimeout
	}
	return text, err
}

// handle runs one utterance through the flow and returns the reply.
func (s *Session) handle(ctx context.Context, text string) string {
	start := time.Now()
	s.record(ctx, schema.User, text)

	s.mu.Lock()
	before := s.state.Step()
	resp, err := s.flow.Invoke(ctx, &agent.Request{State: s.state, Form: s.form, UserInput: text})
	var (
		after    types.Step
		asked    types.FieldID
		receipt  bool
		question string
	)
	if err == nil {
		after = s.state.Step()
		asked = s.state.LastQuestion
		receipt = s.state.Receipt != nil
		question = s.state.LatestQuestion
	}
	s.mu.Unlock()

	if err != nil {
		slog.Warn("Turn failed", "session", s.ID, "error", err)
		s.emit(Event{Kind: EventHeard, Text: text, Err: err})
		return turnFailedMessage
	}
	if msg := resp.Metadata["error"]; msg != "" {
		slog.Warn("Turn reported an error", "session", s.ID, "error", msg)
	}

	s.metrics.RecordTurn(ctx, string(before), time.Since(start))
	for _, f := range resp.Filled {
		s.metrics.RecordFilled(ctx, string(f))
	}
	for _, f := range resp.Skipped {
		s.metrics.RecordSkipped(ctx, string(f))
	}
	if resp.Escalated {
		s.metrics.RecordEscalation(ctx, string(asked))
	}
	if before != types.StepCompleted && after == types.StepCompleted && receipt {
		s.metrics.RecordRegistration(ctx)
	}
	slog.Debug("Turn processed", "session", s.ID, "step", after, "filled", resp.Filled, "question", question)
	s.emit(Event{Kind: EventHeard, Text: text, Response: resp})
	return resp.Message
}

// say speaks message. Synthesis failures are logged and the turn goes on.
func (s *Session) say(ctx context.Context, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	s.record(ctx, schema.Assistant, message)
	s.emit(Event{Kind: EventSpoke, Text: message})
	if err := s.speaker.Speak(ctx, message); err != nil && ctx.Err() == nil {
		slog.Warn("Speech synthesis failed", "session", s.ID, "error", err)
	}
}

func (s *Session) completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Step() == types.StepCompleted
}

func (s *Session) latestQuestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LatestQuestion
}

func (s *Session) transcriptKey(ctx context.Context) context.Context {
	return agent.WithStateKey(context.WithoutCancel(ctx), s.ID)
}

func (s *Session) record(ctx context.Context, role schema.RoleType, text string) {
	if s.transcripts == nil || strings.TrimSpace(text) == "" {
		return
	}
	msg := &schema.Message{Role: role, Content: text}
	if _, err := s.transcripts.Append(s.transcriptKey(ctx), msg); err != nil {
		slog.Warn("Recording transcript failed", "session", s.ID, "error", err)
	}
}

func (s *Session) emit(e Event) {
	e.Session = s.ID
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
