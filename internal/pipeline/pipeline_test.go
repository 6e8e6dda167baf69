package pipeline

import (
	"context"
	"testing"
	"time"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// scriptedStep runs a canned logic func; used to exercise pipeline control flow.
type scriptedStep struct {
	BaseStep
	logic func(rc *Context) error
	runs  int
}

func newScriptedStep(name string, cfg Config, logic func(rc *Context) error) *scriptedStep {
	return &scriptedStep{BaseStep: NewBaseStep(name, cfg), logic: logic}
}

func (s *scriptedStep) Logic(_ context.Context, rc *Context) error {
	s.runs++
	if s.logic == nil {
		return nil
	}
	return s.logic(rc)
}

func newTestContext() *Context {
	return &Context{
		RunName:      "test-run",
		DocType:      "REPORT",
		GlobalConfig: Config{},
	}
}

func TestPipelineHaltsOnFirstFailure(t *testing.T) {
	a := newScriptedStep("A", nil, nil)
	b := newScriptedStep("B", nil, func(*Context) error {
		return errors.NetworkError("unreachable").Build()
	})
	c := newScriptedStep("C", nil, nil)

	p := New(testGuard(2), nil)
	p.Append(a).Append(b).Append(c)

	rc := p.Run(context.Background(), newTestContext())

	if c.runs != 0 {
		t.Fatal("step C must never execute after B fails")
	}
	if rc.HaltedBy != "B" {
		t.Fatalf("expected haltedBy B got %q", rc.HaltedBy)
	}
	if rc.Error == nil || rc.Error.Step != "B" {
		t.Fatalf("expected error slot set by B got %+v", rc.Error)
	}
	// B is transient: 1 initial + 2 retries
	if b.runs != 3 {
		t.Fatalf("expected 3 attempts for B got %d", b.runs)
	}
}

func TestPipelineDoesNotMutateInitialContext(t *testing.T) {
	initial := newTestContext()
	s := newScriptedStep("publish", nil, func(rc *Context) error {
		rc.Publish("publish", "key", "value")
		return nil
	})

	p := New(testGuard(0), nil)
	p.Append(s)
	final := p.Run(context.Background(), initial)

	if _, ok := initial.Value("key"); ok {
		t.Fatal("initial context must not receive published results")
	}
	if got := final.StringValue("key"); got != "value" {
		t.Fatalf("expected published value on final context, got %q", got)
	}
	if len(initial.RunLog) != 0 {
		t.Fatal("initial context run log must stay empty")
	}
}

func TestPipelineMergesGlobalConfig(t *testing.T) {
	initial := newTestContext()
	initial.GlobalConfig = Config{"timeout": 99}

	p := New(testGuard(0), Config{"timeout": 10, "retries": 3})
	var seenTimeout, seenRetries any
	p.Append(newScriptedStep("inspect", nil, func(rc *Context) error {
		seenTimeout = rc.GlobalConfig["timeout"]
		seenRetries = rc.GlobalConfig["retries"]
		return nil
	}))
	p.Run(context.Background(), initial)

	// context keys win over pipeline globals; missing keys are filled in
	if seenTimeout != 99 {
		t.Fatalf("expected context timeout 99 got %v", seenTimeout)
	}
	if seenRetries != 3 {
		t.Fatalf("expected merged retries 3 got %v", seenRetries)
	}
}

func TestConfigPrecedence(t *testing.T) {
	step := newScriptedStep("step", Config{"timeout": 5}, nil)
	rc := newTestContext()
	rc.GlobalConfig = Config{"timeout": 10, "retries": 3}

	if got := step.GetConfig(rc, "timeout", 0); got != 5 {
		t.Fatalf("step-local must win: expected 5 got %v", got)
	}
	if got := step.GetConfig(rc, "retries", 0); got != 3 {
		t.Fatalf("global must win over default: expected 3 got %v", got)
	}
	if got := step.GetConfig(rc, "attempts", 7); got != 7 {
		t.Fatalf("default must apply: expected 7 got %v", got)
	}
}

func TestInsertAtAndReplace(t *testing.T) {
	a := newScriptedStep("A", nil, nil)
	b := newScriptedStep("B", nil, nil)
	c := newScriptedStep("C", nil, nil)

	p := New(testGuard(0), nil)
	p.Append(a).Append(c)
	p.InsertAt(1, b)

	steps := p.Steps()
	names := []string{steps[0].Name(), steps[1].Name(), steps[2].Name()}
	if names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Fatalf("expected order A,B,C got %v", names)
	}

	replacement := newScriptedStep("B", nil, nil)
	if !p.Replace("B", replacement) {
		t.Fatal("expected replacement to succeed")
	}
	if p.Replace("missing", replacement) {
		t.Fatal("expected replacement of unknown step to fail")
	}

	p.Run(context.Background(), newTestContext())
	if b.runs != 0 || replacement.runs != 1 {
		t.Fatalf("expected replacement to run instead of original (orig=%d repl=%d)", b.runs, replacement.runs)
	}
}

func TestInsertAtClampsOutOfRange(t *testing.T) {
	a := newScriptedStep("A", nil, nil)
	front := newScriptedStep("front", nil, nil)
	back := newScriptedStep("back", nil, nil)

	p := New(testGuard(0), nil)
	p.Append(a)
	p.InsertAt(-5, front)
	p.InsertAt(99, back)

	steps := p.Steps()
	if steps[0].Name() != "front" || steps[len(steps)-1].Name() != "back" {
		t.Fatalf("expected clamped insertion, got %v", steps)
	}
}

func TestValueLastWriterWins(t *testing.T) {
	rc := newTestContext()
	rc.Publish("first", "name", "alpha")
	rc.Publish("second", "name", "beta")

	if got := rc.StringValue("name"); got != "beta" {
		t.Fatalf("expected last writer to win, got %q", got)
	}
	// per-step results remain intact
	if rc.StepResults("first")["name"] != "alpha" {
		t.Fatal("expected first step's result preserved under its own scope")
	}
}

func TestRequireValues(t *testing.T) {
	step := newScriptedStep("check", nil, nil)
	rc := newTestContext()

	if step.RequireValues(rc, "class") {
		t.Fatal("expected missing class to fail the precondition")
	}
	found := false
	for _, e := range rc.RunLog {
		if e.Level == LevelError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ERROR log entry for missing field")
	}

	if !step.RequireValues(rc, "type") {
		t.Fatal("expected intrinsic type field to be present")
	}
}

func TestRunStepRecordsFailure(t *testing.T) {
	rc := newTestContext()
	failing := newScriptedStep("bad", nil, func(*Context) error {
		return errors.TemplateError("no template resolved").Build()
	})

	if RunStep(context.Background(), failing, rc, testGuard(1)) {
		t.Fatal("expected RunStep to report halt")
	}
	if rc.Error == nil {
		t.Fatal("expected error slot to be set")
	}
	if rc.Error.Category != errors.CategoryTemplate {
		t.Fatalf("expected template category got %s", rc.Error.Category)
	}
	last := rc.RunLog[len(rc.RunLog)-1]
	if last.Level != LevelError || last.Step != "bad" {
		t.Fatalf("expected final ERROR log entry from step, got %+v", last)
	}
}

func TestObserverReceivesCallbacks(t *testing.T) {
	var started, completed []string
	var runOutcome RunOutcome
	obs := &recordingObserver{
		onStart:    func(s string) { started = append(started, s) },
		onComplete: func(s string, _ time.Duration, r StepResult, _ int) { completed = append(completed, s+":"+string(r)) },
		onRun:      func(_ *Context, _ time.Duration, o RunOutcome) { runOutcome = o },
	}

	p := New(testGuard(0), nil)
	p.Observer = obs
	p.Append(newScriptedStep("ok", nil, nil))
	p.Append(newScriptedStep("bad", nil, func(*Context) error {
		return errors.ValidationError("nope").Build()
	}))
	p.Run(context.Background(), newTestContext())

	if len(started) != 2 {
		t.Fatalf("expected 2 step starts got %d", len(started))
	}
	if completed[0] != "ok:success" || completed[1] != "bad:failed" {
		t.Fatalf("unexpected completion sequence %v", completed)
	}
	if runOutcome != RunOutcomeFailed {
		t.Fatalf("expected failed run outcome got %s", runOutcome)
	}
}

type recordingObserver struct {
	onStart    func(string)
	onComplete func(string, time.Duration, StepResult, int)
	onRun      func(*Context, time.Duration, RunOutcome)
}

func (r *recordingObserver) OnStepStart(s string) { r.onStart(s) }
func (r *recordingObserver) OnStepComplete(s string, d time.Duration, res StepResult, attempts int) {
	r.onComplete(s, d, res, attempts)
}
func (r *recordingObserver) OnRunComplete(rc *Context, d time.Duration, o RunOutcome) {
	r.onRun(rc, d, o)
}
