package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// fallbackNamePattern names artifacts for types without a configured pattern.
const fallbackNamePattern = "{type}_{timestamp}"

// generateNameStep produces the sanitized artifact name. An explicit run name
// from the caller wins over the type's pattern.
type generateNameStep struct {
	pipeline.BaseStep
	meta config.DocumentType
}

func newGenerateNameStep(meta config.DocumentType, cfg pipeline.Config) *generateNameStep {
	return &generateNameStep{BaseStep: pipeline.NewBaseStep(StepGenerateName, cfg), meta: meta}
}

func (s *generateNameStep) Logic(_ context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "resolver") {
		return s.MissingFieldsError("resolver")
	}

	raw := rc.RunName
	if raw == "" {
		pattern := s.GetConfigString(rc, "name_pattern", s.meta.NamePattern)
		if pattern == "" {
			pattern = fallbackNamePattern
		}
		raw = rc.Collabs.Resolver.SubstituteInString(pattern)
	}

	name := sanitizeName(raw)
	if name != raw {
		s.Logf(rc, pipeline.LevelDebug, "name sanitized: %q -> %q", raw, name)
	}

	s.Logf(rc, pipeline.LevelInfo, "artifact name: %s", name)
	s.Publish(rc, "artifact_name", name)
	return nil
}
