package pipeline

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Step is a named, independently retryable unit of pipeline logic. Steps are
// stateless aside from their name and private config; each is invoked exactly
// once per run. Logic must signal failure by returning an error (classified
// where the cause is known) and must not swallow errors meant to abort the
// step.
type Step interface {
	Name() string
	Config() Config
	Logic(ctx context.Context, rc *Context) error
}

// BaseStep carries the step name and private configuration and provides the
// context-access helpers every step relies on. Concrete steps embed it and
// implement Logic only.
type BaseStep struct {
	name   string
	config Config
}

// NewBaseStep constructs the embedded base for a concrete step.
func NewBaseStep(name string, config Config) BaseStep {
	if config == nil {
		config = Config{}
	}
	return BaseStep{name: name, config: config}
}

func (b BaseStep) Name() string   { return b.name }
func (b BaseStep) Config() Config { return b.config }

// GetConfig resolves a configuration key: step-local config wins over the
// run's global config wins over def.
func (b BaseStep) GetConfig(rc *Context, key string, def any) any {
	if v, ok := b.config[key]; ok {
		return v
	}
	if v, ok := rc.GlobalConfig[key]; ok {
		return v
	}
	return def
}

// GetConfigString is GetConfig narrowed to string values.
func (b BaseStep) GetConfigString(rc *Context, key, def string) string {
	if v, ok := b.GetConfig(rc, key, def).(string); ok {
		return v
	}
	return def
}

// RequireValues is the precondition guard: it reports whether every named
// field is present on the context (published result, intrinsic field, or
// collaborator handle), logging an ERROR for each absence. Callers must
// return a validation error when it reports false; the check itself is not
// the failure signal.
func (b BaseStep) RequireValues(rc *Context, names ...string) bool {
	ok := true
	for _, name := range names {
		if _, found := rc.Lookup(name); !found {
			rc.Logf(b.name, LevelError, "required context field %q is missing", name)
			ok = false
		}
	}
	return ok
}

// MissingFieldsError builds the validation failure raised after RequireValues
// reports absences.
func (b BaseStep) MissingFieldsError(names ...string) error {
	return errors.ValidationError(fmt.Sprintf("step %s: missing required context fields: %s", b.name, strings.Join(names, ", "))).
		WithContext("step", b.name).Build()
}

// Logf appends to the run log and forwards to the logger.
func (b BaseStep) Logf(rc *Context, level LogLevel, format string, args ...any) {
	rc.Logf(b.name, level, format, args...)
}

// Publish records a result under this step's scope.
func (b BaseStep) Publish(rc *Context, key string, value any) {
	rc.Publish(b.name, key, value)
}

// ExecuteStep runs one step through the guard: the fixed template method. On
// final failure it appends an ERROR entry with the attempt count and fills
// the context error slot. The returned outcome carries the attempt count for
// observers.
func ExecuteStep(ctx context.Context, s Step, rc *Context, g Guard) Outcome {
	meta := errors.ErrorContext{"step": s.Name(), "type": rc.DocType}
	if rc.Class != nil {
		meta = meta.Set("class", rc.Class.Code)
	}

	out := g.Run(ctx, func() error { return s.Logic(ctx, rc) }, Options{
		Name:    s.Name(),
		Recover: true,
		Meta:    meta,
	})
	if out.Succeeded {
		return out
	}

	rc.Logf(s.Name(), LevelError, "step failed after %d attempt(s): %s", out.Attempts, out.Err.Message())
	rc.Error = &Failure{
		Step:     s.Name(),
		Message:  out.Err.Message(),
		Category: out.Err.Category(),
		Stack:    out.Stack,
	}
	return out
}

// RunStep is the boolean continue/halt form of ExecuteStep.
func RunStep(ctx context.Context, s Step, rc *Context, g Guard) bool {
	return ExecuteStep(ctx, s, rc, g).Succeeded
}
