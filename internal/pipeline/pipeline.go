package pipeline

import (
	"context"
	"time"
)

// Pipeline owns an ordered, mutable sequence of steps plus the global
// configuration scope. It is built for a single run; re-use requires a
// fresh context.
type Pipeline struct {
	steps        []Step
	GlobalConfig Config
	Guard        Guard
	Observer     RunObserver
}

// New creates an empty pipeline with the given guard and global config.
func New(g Guard, global Config) *Pipeline {
	if global == nil {
		global = Config{}
	}
	return &Pipeline{
		steps:        make([]Step, 0, 16),
		GlobalConfig: global,
		Guard:        g,
		Observer:     NoopObserver{},
	}
}

// Append adds a step at the end of the sequence.
func (p *Pipeline) Append(s Step) *Pipeline {
	p.steps = append(p.steps, s)
	return p
}

// InsertAt inserts a step at the given index; out-of-range indexes clamp to
// the nearest end.
func (p *Pipeline) InsertAt(index int, s Step) *Pipeline {
	if index < 0 {
		index = 0
	}
	if index >= len(p.steps) {
		return p.Append(s)
	}
	p.steps = append(p.steps[:index+1], p.steps[index:]...)
	p.steps[index] = s
	return p
}

// Replace swaps the first step with the given name; it reports whether a
// replacement happened.
func (p *Pipeline) Replace(name string, s Step) bool {
	for i, existing := range p.steps {
		if existing.Name() == name {
			p.steps[i] = s
			return true
		}
	}
	return false
}

// Steps returns a defensive copy of the step sequence.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Run executes the steps in insertion order against a shallow copy of the
// initial context, stopping at the first unrecoverable failure. The
// (possibly partially populated) context is returned either way; Run never
// panics out of a step.
func (p *Pipeline) Run(ctx context.Context, initial *Context) *Context {
	rc := initial.clone()
	rc.GlobalConfig = rc.GlobalConfig.Merge(p.GlobalConfig)

	observer := p.Observer
	if observer == nil {
		observer = NoopObserver{}
	}

	start := time.Now()
	outcome := RunOutcomeSuccess
	for _, s := range p.steps {
		observer.OnStepStart(s.Name())

		t0 := time.Now()
		out := ExecuteStep(ctx, s, rc, p.Guard)
		dur := time.Since(t0)

		result := StepResultSuccess
		if !out.Succeeded {
			result = StepResultFailed
		}
		observer.OnStepComplete(s.Name(), dur, result, out.Attempts)

		if !out.Succeeded {
			rc.HaltedBy = s.Name()
			rc.Logf(s.Name(), LevelWarn, "pipeline halted by step %s", s.Name())
			outcome = RunOutcomeFailed
			break
		}
	}

	observer.OnRunComplete(rc, time.Since(start), outcome)
	return rc
}
