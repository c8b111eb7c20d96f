// Package observe holds the OpenTelemetry metric instruments of the voice
// registration assistant. Tests should use NewMetrics with their own
// metric.MeterProvider; DefaultMetrics uses the global provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tbxark/voiceform"

// Metrics holds the instruments. A nil *Metrics records nothing.
type Metrics struct {
	// TurnDuration tracks the time to process one utterance.
	TurnDuration metric.Float64Histogram

	// Turns counts processed utterances. Attribute: step.
	Turns metric.Int64Counter

	// FieldsFilled counts fields written by extraction. Attribute: field.
	FieldsFilled metric.Int64Counter

	// FieldsSkipped counts skip commands. Attribute: field.
	FieldsSkipped metric.Int64Counter

	// Escalations counts re-asks of a field. Attribute: field.
	Escalations metric.Int64Counter

	// RecognitionErrors counts failed listens. Attribute: kind.
	RecognitionErrors metric.Int64Counter

	// Registrations counts submitted registrations.
	Registrations metric.Int64Counter

	// ActiveSessions tracks running voice sessions.
	ActiveSessions metric.Int64UpDownCounter
}

var turnBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TurnDuration, err = m.Float64Histogram("voiceform.turn.duration",
		metric.WithDescription("Latency of processing one utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(turnBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("voiceform.turns",
		metric.WithDescription("Processed utterances by registration step."),
	); err != nil {
		return nil, err
	}
	if met.FieldsFilled, err = m.Int64Counter("voiceform.fields.filled",
		metric.WithDescription("Fields filled from speech by field."),
	); err != nil {
		return nil, err
	}
	if met.FieldsSkipped, err = m.Int64Counter("voiceform.fields.skipped",
		metric.WithDescription("Fields skipped by the user by field."),
	); err != nil {
		return nil, err
	}
	if met.Escalations, err = m.Int64Counter("voiceform.prompt.escalations",
		metric.WithDescription("Repeated prompts by field."),
	); err != nil {
		return nil, err
	}
	if met.RecognitionErrors, err = m.Int64Counter("voiceform.recognition.errors",
		metric.WithDescription("Speech recognition failures by kind."),
	); err != nil {
		return nil, err
	}
	if met.Registrations, err = m.Int64Counter("voiceform.registrations",
		metric.WithDescription("Submitted registrations."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("voiceform.active_sessions",
		metric.WithDescription("Number of running voice sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on
// otel.GetMeterProvider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTurn records one processed utterance.
func (m *Metrics) RecordTurn(ctx context.Context, step string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step", step))
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, d.Seconds(), attrs)
}

func (m *Metrics) RecordFilled(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.FieldsFilled.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

func (m *Metrics) RecordSkipped(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.FieldsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

func (m *Metrics) RecordEscalation(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.Escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

func (m *Metrics) RecordRecognitionError(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.RecognitionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordRegistration(ctx context.Context) {
	if m == nil {
		return
	}
	m.Registrations.Add(ctx, 1)
}

// SessionStarted and SessionEnded move the active session gauge.
func (m *Metrics) SessionStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
}

func (m *Metrics) SessionEnded(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}
