package testcases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tbxark/voiceform/observe"
	"github.com/tbxark/voiceform/session"
	"github.com/tbxark/voiceform/speech"
	"github.com/tbxark/voiceform/speech/mock"
	"github.com/tbxark/voiceform/types"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func counter(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestVoiceRegistration(t *testing.T) {
	t.Parallel()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	results := []mock.Result{
		{Text: "My name is John Smith"},
		{Err: &speech.RecognitionError{Kind: speech.KindNoSpeech}},
		{Text: "twenty one ten two thousand five"},
		{Text: "femail"},
		{Text: "India"},
		{Text: "skip phone"},
		{Text: "I live at 7 Elm Ave."},
		{Text: "headache"},
		{Text: "none"},
		{Text: "none"},
		{Text: "none"},
		{Text: "Jane Doe, my sister"},
		{Text: "555 987 6543"},
		{Text: "no, that's wrong"},
		{Text: "my phone number is 555 123 4567"},
		{Text: "yes"},
	}
	rec := &mock.Recognizer{Results: results}
	synth := &mock.Synthesizer{VoicesResult: []speech.Voice{{Name: "Google US English", Lang: "en-US"}}}
	cfg := session.DefaultConfig()
	cfg.SettleDelay, cfg.RestartDelay, cfg.ListenTimeout = 0, 0, 0

	s := session.New(NewFlow(t), rec, speech.NewSpeaker(synth),
		session.WithConfig(cfg),
		session.WithMetrics(metrics),
	)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		_ = s.Stop()
		t.Fatalf("registration did not finish; spoken %q", synth.Texts())
	}

	state := s.State()
	if state.Receipt == nil {
		t.Fatalf("no receipt; state = %+v", state)
	}
	want := map[types.FieldID]string{
		types.FieldDateOfBirth: "2005-10-21",
		types.FieldGender:      "female",
		types.FieldCountryCode: "+91",
		types.FieldPhone:       "555-123-4567",
	}
	for field, value := range want {
		if got := s.Form().Get(field); got != value {
			t.Errorf("%s = %q, want %q", field, got, value)
		}
	}
	spoken := strings.Join(synth.Texts(), "\n")
	if !strings.Contains(spoken, "No speech detected") {
		t.Errorf("no-speech message missing from %q", spoken)
	}

	if n := counter(t, reader, "voiceform.registrations"); n != 1 {
		t.Errorf("registrations = %d", n)
	}
	if n := counter(t, reader, "voiceform.fields.skipped"); n != 1 {
		t.Errorf("skipped = %d", n)
	}
	if n := counter(t, reader, "voiceform.recognition.errors"); n != 1 {
		t.Errorf("recognition errors = %d", n)
	}
}
