package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/specialistvlad/stevedore/executor"

// StepMetrics records how many steps ran, how many failed and how long
// they took. A nil *StepMetrics records nothing.
type StepMetrics struct {
	started  metric.Int64Counter
	failed   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewStepMetrics creates the step instruments on the global meter provider.
func NewStepMetrics() (*StepMetrics, error) {
	meter := otel.Meter(meterName)

	started, err := meter.Int64Counter("stevedore_steps_started",
		metric.WithDescription("Number of task steps started."))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("stevedore_steps_failed",
		metric.WithDescription("Number of task steps whose runner returned an error."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("stevedore_step_duration_seconds",
		metric.WithDescription("Time spent running a task step."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &StepMetrics{started: started, failed: failed, duration: duration}, nil
}

// StepStarted counts a step of the given kind.
func (m *StepMetrics) StepStarted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.started.Add(ctx, 1, metric.WithAttributes(attribute.String("step", kind)))
}

// StepFinished records the duration of a step and whether it errored.
func (m *StepMetrics) StepFinished(ctx context.Context, kind string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step", kind))
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.failed.Add(ctx, 1, attrs)
	}
}
