package pipeline

import (
	"time"

	"git.home.luguber.info/inful/docgen/internal/metrics"
)

// StepResult captures the high-level outcome of a step.
type StepResult string

const (
	StepResultSuccess StepResult = "success"
	StepResultFailed  StepResult = "failed"
)

// RunOutcome is the final state of a run.
type RunOutcome string

const (
	RunOutcomeSuccess RunOutcome = "success"
	RunOutcomeFailed  RunOutcome = "failed"
)

// RunObserver receives callbacks around step execution and run lifecycle.
// It abstracts away the metrics.Recorder so other observers (notifications,
// tracing) can hook in without changing step code.
type RunObserver interface {
	OnStepStart(step string)
	OnStepComplete(step string, duration time.Duration, result StepResult, attempts int)
	OnRunComplete(rc *Context, duration time.Duration, outcome RunOutcome)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStepStart(string)                                   {}
func (NoopObserver) OnStepComplete(string, time.Duration, StepResult, int) {}
func (NoopObserver) OnRunComplete(*Context, time.Duration, RunOutcome)     {}

// RecorderObserver adapts a metrics.Recorder into a RunObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStepStart(string) {}

func (r RecorderObserver) OnStepComplete(step string, d time.Duration, result StepResult, attempts int) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStepDuration(step, d)
	label := metrics.ResultSuccess
	if result == StepResultFailed {
		label = metrics.ResultFailed
	}
	r.Recorder.IncStepResult(step, label)
	if attempts > 1 {
		r.Recorder.IncRetries(step, attempts-1)
		if result == StepResultFailed {
			r.Recorder.IncRetriesExhausted(step)
		}
	}
}

func (r RecorderObserver) OnRunComplete(_ *Context, d time.Duration, outcome RunOutcome) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveRunDuration(d)
	r.Recorder.IncRunOutcome(string(outcome))
}

// MultiObserver fans callbacks out to several observers.
type MultiObserver []RunObserver

func (m MultiObserver) OnStepStart(step string) {
	for _, o := range m {
		o.OnStepStart(step)
	}
}

func (m MultiObserver) OnStepComplete(step string, d time.Duration, result StepResult, attempts int) {
	for _, o := range m {
		o.OnStepComplete(step, d, result, attempts)
	}
}

func (m MultiObserver) OnRunComplete(rc *Context, d time.Duration, outcome RunOutcome) {
	for _, o := range m {
		o.OnRunComplete(rc, d, outcome)
	}
}
