package generator

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "20060102-150405"
)

// configurePlaceholdersStep assembles the substitution map for content
// processing: type extra params first, caller placeholders override them,
// standard placeholders fill remaining gaps. Every entry is registered on
// the resolver.
type configurePlaceholdersStep struct {
	pipeline.BaseStep
	meta config.DocumentType
	now  func() time.Time
}

func newConfigurePlaceholdersStep(meta config.DocumentType, cfg pipeline.Config) *configurePlaceholdersStep {
	return &configurePlaceholdersStep{
		BaseStep: pipeline.NewBaseStep(StepConfigurePlaceholders, cfg),
		meta:     meta,
		now:      time.Now,
	}
}

func (s *configurePlaceholdersStep) Logic(_ context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "resolver") {
		return s.MissingFieldsError("resolver")
	}

	merged := make(map[string]string, len(s.meta.ExtraParams)+len(rc.Placeholders)+8)
	for k, v := range s.meta.ExtraParams {
		merged[k] = v
	}
	for k, v := range rc.Placeholders {
		merged[k] = v
	}

	now := s.now()
	standard := map[string]string{
		"type":           rc.DocType,
		"today":          now.Format(dateLayout),
		"timestamp":      now.Format(timestampLayout),
		"generated_name": rc.StringValue("artifact_name"),
		"requester":      rc.Requester,
	}
	if rc.Class != nil {
		standard["class_name"] = rc.Class.Name
		standard["class_code"] = rc.Class.Code
	}
	for k, v := range standard {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}

	for k, v := range merged {
		rc.Collabs.Resolver.Register(k, func() string { return v })
	}

	s.Logf(rc, pipeline.LevelInfo, "configured %d placeholders", len(merged))
	s.Publish(rc, "placeholders", merged)
	return nil
}
