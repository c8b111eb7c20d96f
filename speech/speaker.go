package speech

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Tuning for a calm conversational delivery.
const (
	DefaultRate   = 0.9
	DefaultPitch  = 0.95
	DefaultVolume = 1.0
)

var (
	sentenceBreak = regexp.MustCompile(`\. `)
	conjunction   = regexp.MustCompile(`(?i)(\w+)(\s+)(and|but|so|however|also|now|well|okay|let's)(\s+)`)
	longClause    = regexp.MustCompile(`(?i)(\w+\s+\w+\s+\w+)\s+(or)\s+`)
)

// longTextThreshold is the length above which long clauses get a breath.
const longTextThreshold = 50

// Naturalize adds spoken pauses: sentence breaks become ellipses and a pause
// is placed before conjunctions and discourse markers.
func Naturalize(text string) string {
	out := sentenceBreak.ReplaceAllString(text, "... ")
	out = conjunction.ReplaceAllString(out, "$1$2... $3$4")
	if len(out) > longTextThreshold {
		out = longClause.ReplaceAllString(out, "$1, $2 ")
	}
	return out
}

// Speaker speaks text through a Synthesizer with the best available voice.
// Starting a new utterance cancels the one in flight.
type Speaker struct {
	synth  Synthesizer
	rate   float64
	pitch  float64
	volume float64

	mu       sync.Mutex
	voice    *Voice
	resolved bool
	cancel   context.CancelFunc
	seq      uint64
}

type SpeakerOption func(*Speaker)

// WithTuning overrides rate, pitch and volume. Zero values keep the defaults.
func WithTuning(rate, pitch, volume float64) SpeakerOption {
	return func(s *Speaker) {
		if rate > 0 {
			s.rate = rate
		}
		if pitch > 0 {
			s.pitch = pitch
		}
		if volume > 0 {
			s.volume = volume
		}
	}
}

// WithVoice pins the voice instead of selecting one.
func WithVoice(v Voice) SpeakerOption {
	return func(s *Speaker) {
		s.voice = &v
		s.resolved = true
	}
}

func NewSpeaker(synth Synthesizer, opts ...SpeakerOption) *Speaker {
	s := &Speaker{synth: synth, rate: DefaultRate, pitch: DefaultPitch, volume: DefaultVolume}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Speak says text and blocks until it finished, failed or was cancelled.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	voice := s.selectVoice(ctx)

	speakCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	return s.synth.Speak(speakCtx, Utterance{
		Text:   Naturalize(text),
		Voice:  voice,
		Rate:   s.rate,
		Pitch:  s.pitch,
		Volume: s.volume,
	})
}

// Cancel stops the utterance in flight, if any.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

// selectVoice resolves the voice once. The synthesizer is queried without
// holding the lock so Cancel stays responsive while voices load.
func (s *Speaker) selectVoice(ctx context.Context) *Voice {
	s.mu.Lock()
	if s.resolved {
		v := s.voice
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	voices, err := s.synth.Voices(ctx)
	if err != nil {
		slog.Warn("Listing voices failed, using the synthesizer default", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolved {
		s.resolved = true
		if v, ok := SelectBestVoice(voices); ok {
			s.voice = &v
			slog.Debug("Selected voice", "voice", v.Name, "lang", v.Lang)
		}
	}
	return s.voice
}
