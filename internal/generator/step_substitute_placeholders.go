package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// substitutePlaceholdersStep rewrites the created artifact's content through
// the resolver, dispatching on the artifact kind. Unknown kinds are skipped
// without failing the run.
type substitutePlaceholdersStep struct {
	pipeline.BaseStep
	meta config.DocumentType
}

func newSubstitutePlaceholdersStep(meta config.DocumentType, cfg pipeline.Config) *substitutePlaceholdersStep {
	return &substitutePlaceholdersStep{BaseStep: pipeline.NewBaseStep(StepSubstitutePlaceholders, cfg), meta: meta}
}

func (s *substitutePlaceholdersStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "resolver", "artifact_id", "artifact_kind") {
		return s.MissingFieldsError("resolver", "artifact_id", "artifact_kind")
	}

	artifactID := rc.StringValue("artifact_id")
	var (
		changed bool
		err     error
	)
	switch kind := rc.StringValue("artifact_kind"); kind {
	case kindDocument:
		changed, err = rc.Collabs.Resolver.ProcessDocument(ctx, artifactID)
	case kindSpreadsheet:
		sheet := s.GetConfigString(rc, "sheet_name", s.meta.SheetName)
		changed, err = rc.Collabs.Resolver.ProcessSheet(ctx, artifactID, sheet)
	default:
		s.Logf(rc, pipeline.LevelInfo, "artifact kind %q has no content processor, skipping", kind)
		s.Publish(rc, "substituted", false)
		return nil
	}
	if err != nil {
		return err
	}

	if changed {
		s.Logf(rc, pipeline.LevelInfo, "placeholders substituted in artifact %s", artifactID)
	} else {
		s.Logf(rc, pipeline.LevelDebug, "no placeholders found in artifact %s", artifactID)
	}
	s.Publish(rc, "substituted", changed)
	return nil
}
