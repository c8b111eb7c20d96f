// Package mock provides test doubles for speech.Recognizer and
// speech.Synthesizer.
//
// Example:
//
//	rec := &mock.Recognizer{Results: []mock.Result{{Text: "My name is John Smith"}}}
//	synth := &mock.Synthesizer{}
package mock

import (
	"context"
	"sync"

	"github.com/tbxark/voiceform/speech"
)

// Result is one scripted outcome of Listen.
type Result struct {
	Text string
	Err  error
}

// Recognizer is a scripted speech.Recognizer. Each Listen returns the next
// Result; once the script is exhausted Listen blocks until ctx is done.
type Recognizer struct {
	mu sync.Mutex

	Results []Result
	// PermissionErr, if non-nil, is returned by RequestPermission.
	PermissionErr error

	ListenCalls     []speech.RecognizerConfig
	PermissionCalls int
	listening       bool

	exhausted chan struct{}
	once      sync.Once
}

func (r *Recognizer) Listen(ctx context.Context, cfg speech.RecognizerConfig) (string, error) {
	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return "", speech.ErrBusy
	}
	r.ListenCalls = append(r.ListenCalls, cfg)
	if len(r.Results) > 0 {
		next := r.Results[0]
		r.Results = r.Results[1:]
		r.mu.Unlock()
		return next.Text, next.Err
	}
	r.listening = true
	r.mu.Unlock()
	r.signalExhausted()

	<-ctx.Done()
	r.mu.Lock()
	r.listening = false
	r.mu.Unlock()
	return "", &speech.RecognitionError{Kind: speech.KindAborted, Err: ctx.Err()}
}

func (r *Recognizer) RequestPermission(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PermissionCalls++
	return r.PermissionErr
}

// Exhausted is closed the first time Listen runs out of scripted results.
func (r *Recognizer) Exhausted() <-chan struct{} {
	return r.exhaustedChan()
}

func (r *Recognizer) exhaustedChan() chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exhausted == nil {
		r.exhausted = make(chan struct{})
	}
	return r.exhausted
}

func (r *Recognizer) signalExhausted() {
	ch := r.exhaustedChan()
	r.once.Do(func() { close(ch) })
}

// Listens returns how many times Listen was called.
func (r *Recognizer) Listens() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ListenCalls)
}

// Synthesizer is a recording speech.Synthesizer.
type Synthesizer struct {
	mu sync.Mutex

	VoicesResult []speech.Voice
	VoicesErr    error
	// SpeakErr, if non-nil, is returned by every Speak after recording it.
	SpeakErr error

	Spoken []speech.Utterance
}

func (s *Synthesizer) Voices(ctx context.Context) ([]speech.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.VoicesResult, s.VoicesErr
}

func (s *Synthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Spoken = append(s.Spoken, u)
	if s.SpeakErr != nil {
		return s.SpeakErr
	}
	return ctx.Err()
}

// Texts returns the spoken texts in order.
func (s *Synthesizer) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Spoken))
	for i, u := range s.Spoken {
		out[i] = u.Text
	}
	return out
}

var (
	_ speech.Recognizer          = (*Recognizer)(nil)
	_ speech.PermissionRequester = (*Recognizer)(nil)
	_ speech.Synthesizer         = (*Synthesizer)(nil)
)
