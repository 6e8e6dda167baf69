package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/retry"
)

// Options carries diagnostic metadata and the recovery mode for one guarded
// operation.
type Options struct {
	Name    string // human-readable operation name
	Recover bool   // when true, transient failures are retried under the policy
	Meta    errors.ErrorContext
}

// Outcome is the structured result of a guarded operation. It is a value,
// never a raised error: failures do not cross the step boundary as panics.
type Outcome struct {
	Succeeded bool
	Attempts  int
	Err       *errors.ClassifiedError
	Stack     string
}

// Guard wraps a single unit of work, applies the bounded retry policy to
// transient failures, and returns a structured outcome. The guard mutates
// nothing beyond what the operation itself mutates.
type Guard struct {
	Policy retry.Policy
	Sleep  func(time.Duration) // injectable for tests; nil means time.Sleep
}

// NewGuard returns a guard over the given policy.
func NewGuard(policy retry.Policy) Guard {
	return Guard{Policy: policy}
}

// Run invokes op, classifying failures and retrying transient ones up to the
// policy budget when recovery is enabled. Context cancellation between
// attempts produces a final failure without further retries.
func (g Guard) Run(ctx context.Context, op func() error, opts Options) Outcome {
	attempts := 0
	for {
		attempts++
		err, stack := invoke(op)
		if err == nil {
			return Outcome{Succeeded: true, Attempts: attempts}
		}

		transient := errors.IsTransient(err)
		if !opts.Recover || !transient || attempts > g.Policy.MaxRetries {
			return Outcome{Succeeded: false, Attempts: attempts, Err: g.classify(err, opts), Stack: stack}
		}

		select {
		case <-ctx.Done():
			return Outcome{
				Succeeded: false,
				Attempts:  attempts,
				Err: errors.WrapError(ctx.Err(), errors.CategoryInternal, fmt.Sprintf("%s canceled", opts.Name)).
					WithContextMap(opts.Meta).Build(),
			}
		default:
		}

		g.sleep(g.Policy.Delay(attempts))
	}
}

func (g Guard) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if g.Sleep != nil {
		g.Sleep(d)
		return
	}
	time.Sleep(d)
}

// invoke runs op, converting panics into errors so nothing escapes the guard.
func invoke(op func() error) (err error, stack string) {
	defer func() {
		if r := recover(); r != nil {
			stack = string(debug.Stack())
			err = errors.NewError(errors.CategoryInternal, fmt.Sprintf("panic: %v", r)).Build()
		}
	}()
	return op(), ""
}

// classify normalizes any failure into a ClassifiedError carrying the
// operation's diagnostic metadata. Unclassified errors become permanent
// internal failures.
func (g Guard) classify(err error, opts Options) *errors.ClassifiedError {
	if ce, ok := errors.AsClassified(err); ok {
		if len(opts.Meta) == 0 {
			return ce
		}
		out := ce
		for k, v := range opts.Meta {
			out = out.WithContext(k, v)
		}
		return out
	}
	return errors.WrapError(err, errors.CategoryInternal, fmt.Sprintf("%s failed", opts.Name)).
		WithContextMap(opts.Meta).Build()
}
