// Package generator assembles the canonical document generation pipeline
// and runs it against a declarative request. Collaborators, retry policy,
// observers and the customization hooks are injected through functional
// options; the defaults wire the in-memory collaborator set from config
// fixtures.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
	"git.home.luguber.info/inful/docgen/internal/retry"
)

// Canonical step names, in pipeline order.
const (
	StepResolveDestination     = "resolve_destination"
	StepSelectTemplate         = "select_template"
	StepGenerateName           = "generate_name"
	StepCreateArtifact         = "create_artifact"
	StepConfigurePlaceholders  = "configure_placeholders"
	StepSubstitutePlaceholders = "substitute_placeholders"
	StepAssignPermissions      = "assign_permissions"
	StepPersistReference       = "persist_reference"
	StepUpdateStatus           = "update_status"
)

// StepGeneral labels failures raised outside any pipeline step: request
// preparation, hooks, or panics escaping orchestration.
const StepGeneral = "general"

// Input is one declarative generation request.
type Input struct {
	Type         string
	ClassKey     string
	Name         string // optional explicit artifact name, wins over the type's pattern
	Requester    string
	Params       map[string]any
	Placeholders map[string]string
	Config       pipeline.Config // per-run config, wins over the generator's global config
}

// Hook runs caller logic around a pipeline run. A returned error aborts the
// run with a general failure.
type Hook func(rc *pipeline.Context) error

// Generator builds and runs document generation pipelines.
type Generator struct {
	cfg      *config.Config
	collabs  *collab.Set
	guard    pipeline.Guard
	recorder metrics.Recorder
	observer pipeline.RunObserver
	selector pipeline.TemplateSelector
	preRun   Hook
	postRun  Hook
	custom   func(*pipeline.Pipeline)
	global   pipeline.Config
	logger   *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithCollaborators injects the collaborator set.
func WithCollaborators(set *collab.Set) Option {
	return func(g *Generator) { g.collabs = set }
}

// WithRetryPolicy overrides the guard's backoff policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(g *Generator) { g.guard = pipeline.NewGuard(p) }
}

// WithSleep overrides the guard's sleeper. For tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(g *Generator) { g.guard.Sleep = sleep }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithObserver attaches an additional run observer.
func WithObserver(o pipeline.RunObserver) Option {
	return func(g *Generator) { g.observer = o }
}

// WithTemplateSelector installs the template selection override hook.
func WithTemplateSelector(sel pipeline.TemplateSelector) Option {
	return func(g *Generator) { g.selector = sel }
}

// WithPreRun installs a hook invoked after preparation, before the pipeline.
func WithPreRun(h Hook) Option {
	return func(g *Generator) { g.preRun = h }
}

// WithPostRun installs a hook invoked after the pipeline completes.
func WithPostRun(h Hook) Option {
	return func(g *Generator) { g.postRun = h }
}

// WithPipelineCustomizer lets callers reshape the assembled pipeline
// (InsertAt, Replace) before each run.
func WithPipelineCustomizer(fn func(*pipeline.Pipeline)) Option {
	return func(g *Generator) { g.custom = fn }
}

// WithGlobalConfig sets the pipeline-global config scope.
func WithGlobalConfig(cfg pipeline.Config) Option {
	return func(g *Generator) { g.global = cfg }
}

// WithLogger sets the structured logger threaded through run contexts.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New builds a Generator over a loaded configuration. Without
// WithCollaborators the in-memory set seeded from the config fixtures is
// used.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:      cfg,
		guard:    pipeline.NewGuard(policy),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.collabs == nil {
		g.collabs = MemorySet(cfg.Fixtures)
	}
	return g, nil
}

// Generate runs the pipeline for one request and returns the final run
// context. It never panics: failures escaping preparation, hooks or the
// pipeline machinery land in the context's error slot under the general
// step label.
func (g *Generator) Generate(ctx context.Context, in Input) *pipeline.Context {
	rc := &pipeline.Context{
		RunID:          uuid.NewString(),
		RunName:        in.Name,
		DocType:        in.Type,
		Params:         in.Params,
		Placeholders:   in.Placeholders,
		Requester:      in.Requester,
		Collabs:        g.collabs,
		SelectTemplate: g.selector,
		GlobalConfig:   in.Config,
		Logger:         g.logger,
	}

	var final *pipeline.Context
	out := g.guard.Run(ctx, func() error {
		meta, err := g.prepare(ctx, rc, in)
		if err != nil {
			return err
		}
		if g.preRun != nil {
			if err := g.preRun(rc); err != nil {
				return err
			}
		}
		final = g.buildPipeline(meta).Run(ctx, rc)
		if g.postRun != nil {
			if err := g.postRun(final); err != nil {
				return err
			}
		}
		return nil
	}, pipeline.Options{Name: StepGeneral, Recover: false})

	if final == nil {
		final = rc
	}
	if !out.Succeeded && final.Error == nil {
		final.Error = &pipeline.Failure{
			Step:     StepGeneral,
			Message:  out.Err.Message(),
			Category: out.Err.Category(),
			Stack:    out.Stack,
		}
		final.HaltedBy = StepGeneral
	}
	return final
}

// prepare resolves the request's type metadata and class, and registers the
// base placeholders path and name patterns depend on.
func (g *Generator) prepare(ctx context.Context, rc *pipeline.Context, in Input) (config.DocumentType, error) {
	if in.Type == "" {
		return config.DocumentType{}, errors.ValidationError("document type is required").Build()
	}
	meta, ok := g.cfg.Type(in.Type)
	if !ok {
		return config.DocumentType{}, errors.ValidationError(fmt.Sprintf("unknown document type %q", in.Type)).
			WithContext("type", in.Type).Build()
	}

	if in.ClassKey != "" {
		if g.collabs.Classes == nil {
			return config.DocumentType{}, errors.ConfigError("no class registry configured").Build()
		}
		class, err := g.collabs.Classes.FindByKey(ctx, in.ClassKey)
		if err != nil {
			return config.DocumentType{}, err
		}
		rc.Class = class
	}

	g.registerBasePlaceholders(rc)
	return meta, nil
}

// registerBasePlaceholders makes run intrinsics and caller placeholders
// resolvable before the pipeline starts; destination and name patterns in
// the early steps rely on them. configure_placeholders later layers the
// full merged map on top.
func (g *Generator) registerBasePlaceholders(rc *pipeline.Context) {
	res := g.collabs.Resolver
	if res == nil {
		return
	}
	now := time.Now()
	res.Register("type", func() string { return rc.DocType })
	res.Register("today", func() string { return now.Format(dateLayout) })
	res.Register("timestamp", func() string { return now.Format(timestampLayout) })
	res.Register("requester", func() string { return rc.Requester })
	if rc.Class != nil {
		name, code := rc.Class.Name, rc.Class.Code
		res.Register("class_name", func() string { return name })
		res.Register("class_code", func() string { return code })
	}
	for k, v := range rc.Placeholders {
		value := v
		res.Register(k, func() string { return value })
	}
}

// buildPipeline assembles the canonical nine steps for one run.
func (g *Generator) buildPipeline(meta config.DocumentType) *pipeline.Pipeline {
	p := pipeline.New(g.guard, g.global)
	p.Observer = g.runObserver()
	p.Append(newResolveDestinationStep(meta, nil)).
		Append(newSelectTemplateStep(meta, nil)).
		Append(newGenerateNameStep(meta, nil)).
		Append(newCreateArtifactStep(nil)).
		Append(newConfigurePlaceholdersStep(meta, nil)).
		Append(newSubstitutePlaceholdersStep(meta, nil)).
		Append(newAssignPermissionsStep(meta, nil)).
		Append(newPersistReferenceStep(nil)).
		Append(newUpdateStatusStep(nil))
	if g.custom != nil {
		g.custom(p)
	}
	return p
}

func (g *Generator) runObserver() pipeline.RunObserver {
	observers := pipeline.MultiObserver{pipeline.RecorderObserver{Recorder: g.recorder}}
	if g.observer != nil {
		observers = append(observers, g.observer)
	}
	return observers
}

// Collaborators exposes the generator's collaborator set (CLI summaries,
// tests).
func (g *Generator) Collaborators() *collab.Set { return g.collabs }

// TypeKeys lists the configured document type keys.
func (g *Generator) TypeKeys() []string { return g.cfg.TypeKeys() }
