package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/ctxlog"
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/observability"
	"github.com/specialistvlad/stevedore/internal/steps"
)

var newStepMetrics = observability.NewStepMetrics

// ParallelExecutionManager runs the steps handed out by a StateMachine,
// at most RunOptions.MaxParallelism at a time, until none remain.
//
// A single mutex guards the state machine: every PopNextStep and every
// PostEvent happens under it, so events are applied in the order they are
// logged and each step is chosen against a consistent view.
type ParallelExecutionManager struct {
	observer     Observer
	runner       StepRunner
	stateMachine StateMachine
	runOptions   config.RunOptions
	tracer       trace.Tracer
	metrics      *observability.StepMetrics
	metricsErr   error

	mu      sync.Mutex
	changed *sync.Cond
	running int
	aborted bool
}

var _ Executor = (*ParallelExecutionManager)(nil)
var _ events.Sink = (*ParallelExecutionManager)(nil)

// NewParallelExecutionManager wires a manager together. Step metrics are
// recorded on the global meter provider; if they cannot be created, Run
// logs a warning and carries on without them.
func NewParallelExecutionManager(observer Observer, runner StepRunner, stateMachine StateMachine, runOptions config.RunOptions) *ParallelExecutionManager {
	m := &ParallelExecutionManager{
		observer:     observer,
		runner:       runner,
		stateMachine: stateMachine,
		runOptions:   runOptions,
		tracer:       otel.Tracer("github.com/specialistvlad/stevedore/executor"),
	}
	m.changed = sync.NewCond(&m.mu)
	m.metrics, m.metricsErr = newStepMetrics()
	return m
}

// Run blocks until the state machine has no more steps and no step is
// running. The first error returned by the step runner stops further steps
// from being dispatched; steps already running are allowed to finish and
// all runner errors are returned together. A panic in a step propagates.
func (m *ParallelExecutionManager) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if m.metricsErr != nil {
		logger.Warn("Step metrics are unavailable.", "error", m.metricsErr)
	}
	workers := m.runOptions.EffectiveParallelism()
	p := pool.New().WithMaxGoroutines(workers).WithErrors()
	logger.Debug("Starting worker pool.", "workers", workers)

	m.mu.Lock()
	for !m.aborted {
		step := m.stateMachine.PopNextStep(m.running > 0)
		if step == nil {
			if m.running == 0 {
				break
			}
			m.changed.Wait()
			continue
		}

		m.observer.OnStepStarting(step)
		m.running++
		m.mu.Unlock()

		p.Go(func() error { return m.runStep(ctx, step) })

		m.mu.Lock()
	}
	aborted := m.aborted
	m.mu.Unlock()

	if aborted {
		logger.Warn("Step runner failed, waiting for running steps to finish.")
	}
	err := p.Wait()
	logger.Debug("Worker pool drained.")
	return err
}

// PostEvent logs the event through the observer and then applies it to
// the state machine, waking the dispatch loop.
func (m *ParallelExecutionManager) PostEvent(e events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observer.PostEvent(e)
	m.stateMachine.PostEvent(e)
	m.changed.Broadcast()
}

func (m *ParallelExecutionManager) runStep(ctx context.Context, step steps.Step) (err error) {
	kind := fmt.Sprintf("%T", step)
	logger := ctxlog.FromContext(ctx).With("step", step.String())

	completed := false
	defer func() {
		m.mu.Lock()
		m.running--
		if !completed || err != nil {
			m.aborted = true
		}
		m.changed.Broadcast()
		m.mu.Unlock()
	}()

	ctx, span := m.tracer.Start(ctx, "run_step", trace.WithAttributes(
		attribute.String("step.kind", kind),
		attribute.String("step.description", step.String()),
	))
	defer span.End()

	logger.Debug("Worker picked up step for execution.")
	m.metrics.StepStarted(ctx, kind)
	started := time.Now()

	err = m.runner.Run(ctxlog.WithLogger(ctx, logger), step, m, m.runOptions)

	m.metrics.StepFinished(ctx, kind, time.Since(started), err)
	if err != nil {
		logger.Error("Step runner failed.", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = fmt.Errorf("running %s: %w", step, err)
	} else {
		logger.Debug("Step finished.")
	}
	completed = true
	return err
}
