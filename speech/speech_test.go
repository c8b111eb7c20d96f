package speech_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tbxark/voiceform/speech"
	"github.com/tbxark/voiceform/speech/mock"
)

func TestRecognitionErrorMessages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind   speech.ErrorKind
		want   string
		silent bool
	}{
		{speech.KindNetwork, "Network error. Please check your internet connection.", false},
		{speech.KindNotAllowed, "Microphone access denied. Please allow microphone access and try again.", false},
		{speech.KindNoSpeech, "No speech detected. Please try speaking again.", false},
		{speech.KindAudioCapture, "No microphone found. Please connect a microphone and try again.", false},
		{speech.KindAborted, "", true},
		{"service-not-allowed", "Sorry, there was an error with voice recognition.", false},
	}
	for _, tt := range tests {
		err := &speech.RecognitionError{Kind: tt.kind}
		if got := err.UserMessage(); got != tt.want {
			t.Errorf("%s: UserMessage() = %q, want %q", tt.kind, got, tt.want)
		}
		if err.Silent() != tt.silent {
			t.Errorf("%s: Silent() = %v", tt.kind, err.Silent())
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	cause := errors.New("socket closed")
	err := fmt.Errorf("listen: %w", &speech.RecognitionError{Kind: speech.KindNetwork, Err: cause})
	kind, ok := speech.KindOf(err)
	if !ok || kind != speech.KindNetwork {
		t.Errorf("KindOf = %q, %v", kind, ok)
	}
	if !errors.Is(err, cause) {
		t.Error("RecognitionError should unwrap to its cause")
	}
	if _, ok := speech.KindOf(speech.ErrNoResult); ok {
		t.Error("ErrNoResult has no kind")
	}
}

func TestDefaultRecognizerConfig(t *testing.T) {
	t.Parallel()
	cfg := speech.DefaultRecognizerConfig()
	if cfg.Continuous || cfg.InterimResults || cfg.Lang != "en-US" || cfg.MaxAlternatives != 1 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestSelectBestVoice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		voices []speech.Voice
		want   string
	}{
		{"neural first", []speech.Voice{{"Google US English", "en-US"}, {"Samantha", "en-US"}, {"Microsoft Aria Online (Natural)", "en-US"}}, "Microsoft Aria Online (Natural)"},
		{"premium", []speech.Voice{{"Samantha", "en-US"}, {"Ava (Premium)", "en-US"}}, "Ava (Premium)"},
		{"quality name", []speech.Voice{{"Basic voice", "en-US"}, {"Karen", "en-AU"}}, "Karen"},
		{"english female", []speech.Voice{{"Voix française female", "fr-FR"}, {"English Female", "en-GB"}}, "English Female"},
		{"skips low quality", []speech.Voice{{"Compact robot", "en-US"}, {"Fred", "en-US"}}, "Fred"},
		{"first available", []speech.Voice{{"Thomas", "fr-FR"}, {"Anna", "de-DE"}}, "Thomas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := speech.SelectBestVoice(tt.voices)
			if !ok || got.Name != tt.want {
				t.Errorf("SelectBestVoice = %q, %v; want %q", got.Name, ok, tt.want)
			}
		})
	}
	if _, ok := speech.SelectBestVoice(nil); ok {
		t.Error("no voice expected from an empty list")
	}
}

func TestNaturalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"Great. What is your phone number?", "Great... What is your phone number?"},
		{"Say your name and your date of birth", "Say your name ... and your date of birth"},
		{"What is your home address?", "What is your home address?"},
	}
	for _, tt := range tests {
		if got := speech.Naturalize(tt.in); got != tt.want {
			t.Errorf("Naturalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpeaker(t *testing.T) {
	t.Parallel()
	synth := &mock.Synthesizer{VoicesResult: []speech.Voice{{"Fred", "en-US"}, {"Samantha", "en-US"}}}
	s := speech.NewSpeaker(synth)

	if err := s.Speak(context.Background(), "Hello. Welcome"); err != nil {
		t.Fatal(err)
	}
	if err := s.Speak(context.Background(), "  "); err != nil {
		t.Fatal(err)
	}
	if len(synth.Spoken) != 1 {
		t.Fatalf("spoken = %d utterances", len(synth.Spoken))
	}
	u := synth.Spoken[0]
	if u.Text != "Hello... Welcome" || u.Voice == nil || u.Voice.Name != "Samantha" {
		t.Errorf("utterance = %+v", u)
	}
	if u.Rate != speech.DefaultRate || u.Pitch != speech.DefaultPitch || u.Volume != speech.DefaultVolume {
		t.Errorf("tuning = %v %v %v", u.Rate, u.Pitch, u.Volume)
	}

	synth.SpeakErr = errors.New("audio device busy")
	if err := s.Speak(context.Background(), "again"); err == nil {
		t.Error("expected the synthesis error")
	}
}

func TestSpeakerOptions(t *testing.T) {
	t.Parallel()
	synth := &mock.Synthesizer{VoicesErr: errors.New("should not be called")}
	s := speech.NewSpeaker(synth, speech.WithVoice(speech.Voice{Name: "Jenny"}), speech.WithTuning(1.1, 0, 0))
	if err := s.Speak(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	u := synth.Spoken[0]
	if u.Voice.Name != "Jenny" || u.Rate != 1.1 || u.Pitch != speech.DefaultPitch {
		t.Errorf("utterance = %+v", u)
	}
}

type slowVoices struct {
	*mock.Synthesizer
	entered chan struct{}
	release chan struct{}
}

func (s *slowVoices) Voices(ctx context.Context) ([]speech.Voice, error) {
	close(s.entered)
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.Synthesizer.Voices(ctx)
}

func TestSpeakerCancelWhileListingVoices(t *testing.T) {
	t.Parallel()
	synth := &slowVoices{
		Synthesizer: &mock.Synthesizer{VoicesResult: []speech.Voice{{"Samantha", "en-US"}}},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := speech.NewSpeaker(synth)

	errc := make(chan error, 1)
	go func() { errc <- s.Speak(context.Background(), "hello") }()
	<-synth.entered

	cancelled := make(chan struct{})
	go func() {
		s.Cancel()
		close(cancelled)
	}()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("Cancel blocked while voices were loading")
	}

	close(synth.release)
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if got := synth.Texts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("spoken = %q", got)
	}
}
