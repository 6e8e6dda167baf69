package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// Artifact kinds derived from the store's content type. Downstream steps
// dispatch on these rather than on raw content types.
const (
	kindDocument    = "document"
	kindSpreadsheet = "spreadsheet"
	kindUnknown     = "unknown"
)

// createArtifactStep materializes the artifact by copying the selected
// template into the resolved destination.
type createArtifactStep struct {
	pipeline.BaseStep
}

func newCreateArtifactStep(cfg pipeline.Config) *createArtifactStep {
	return &createArtifactStep{BaseStep: pipeline.NewBaseStep(StepCreateArtifact, cfg)}
}

func (s *createArtifactStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "store", "template_id", "artifact_name", "destination_id") {
		return s.MissingFieldsError("store", "template_id", "artifact_name", "destination_id")
	}

	artifact, err := rc.Collabs.Store.Copy(ctx,
		rc.StringValue("template_id"),
		rc.StringValue("artifact_name"),
		rc.StringValue("destination_id"),
	)
	if err != nil {
		return err
	}

	kind := kindUnknown
	switch artifact.ContentType {
	case collab.ContentTypeDocument:
		kind = kindDocument
	case collab.ContentTypeSpreadsheet:
		kind = kindSpreadsheet
	}

	s.Logf(rc, pipeline.LevelInfo, "artifact created: %s (%s, %s)", artifact.Name, artifact.ID, kind)
	s.Publish(rc, "artifact", artifact)
	s.Publish(rc, "artifact_id", artifact.ID)
	s.Publish(rc, "artifact_link", artifact.Link)
	s.Publish(rc, "artifact_kind", kind)
	return nil
}
