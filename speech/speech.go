// Package speech defines the recognizer and synthesizer a voice session
// talks through, the recognition error taxonomy, and the voice and tuning
// choices that make the assistant sound natural.
package speech

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the runtime has no speech recognition.
	ErrUnsupported = errors.New("speech: recognition not supported")
	// ErrNoResult is returned when recognition ended without a transcript or error.
	ErrNoResult = errors.New("speech: recognition ended without a result")
	// ErrBusy is returned by Listen while another listen is in flight.
	ErrBusy = errors.New("speech: already listening")
)

// ErrorKind classifies recognition failures.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindNotAllowed   ErrorKind = "not-allowed"
	KindNoSpeech     ErrorKind = "no-speech"
	KindAudioCapture ErrorKind = "audio-capture"
	// KindAborted is an intentional stop and is never reported to the user.
	KindAborted ErrorKind = "aborted"
)

var userMessages = map[ErrorKind]string{
	KindNetwork:      "Network error. Please check your internet connection.",
	KindNotAllowed:   "Microphone access denied. Please allow microphone access and try again.",
	KindNoSpeech:     "No speech detected. Please try speaking again.",
	KindAudioCapture: "No microphone found. Please connect a microphone and try again.",
}

const genericRecognitionMessage = "Sorry, there was an error with voice recognition."

// RecognitionError is a failed listen.
type RecognitionError struct {
	Kind ErrorKind
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech recognition %s: %v", e.Kind, e.Err)
	}
	return "speech recognition " + string(e.Kind)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// UserMessage is the plain-language text shown and spoken for the error.
// It is empty for aborted recognition.
func (e *RecognitionError) UserMessage() string {
	if e.Silent() {
		return ""
	}
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return genericRecognitionMessage
}

// Silent reports whether the error must not be surfaced to the user.
func (e *RecognitionError) Silent() bool {
	return e.Kind == KindAborted
}

// KindOf returns the recognition error kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

// RecognizerConfig tunes a single listen.
type RecognizerConfig struct {
	Continuous      bool
	InterimResults  bool
	Lang            string
	MaxAlternatives int
}

// DefaultLang is the recognition and voice locale.
const DefaultLang = "en-US"

// DefaultRecognizerConfig listens for one final utterance in US English.
func DefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		Continuous:      false,
		InterimResults:  false,
		Lang:            DefaultLang,
		MaxAlternatives: 1,
	}
}

// Recognizer turns one listening attempt into a transcript. Listen returns
// exactly one of a transcript, a *RecognitionError, or ErrNoResult, and must
// return promptly once ctx is done.
type Recognizer interface {
	Listen(ctx context.Context, cfg RecognizerConfig) (string, error)
}

// PermissionRequester is implemented by recognizers that need microphone
// access to be granted before the first listen.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) error
}

// Voice is a synthesizer voice.
type Voice struct {
	Name string
	Lang string
}

// Utterance is one piece of text to speak.
type Utterance struct {
	Text   string
	Voice  *Voice
	Rate   float64
	Pitch  float64
	Volume float64
}

// Synthesizer speaks utterances. Speak blocks until the utterance finished
// or failed, and stops speaking once ctx is done.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}
