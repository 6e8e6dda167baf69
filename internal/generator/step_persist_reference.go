package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// persistReferenceStep upserts the registry record for the generated
// artifact, keyed by artifact id. Re-running a pipeline against the same
// artifact updates the record instead of duplicating it.
type persistReferenceStep struct {
	pipeline.BaseStep
}

func newPersistReferenceStep(cfg pipeline.Config) *persistReferenceStep {
	return &persistReferenceStep{BaseStep: pipeline.NewBaseStep(StepPersistReference, cfg)}
}

func (s *persistReferenceStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "artifacts", "artifact_id", "artifact_name") {
		return s.MissingFieldsError("artifacts", "artifact_id", "artifact_name")
	}

	id := rc.StringValue("artifact_id")
	rec := &collab.ArtifactRecord{
		ID:              id,
		Type:            rc.DocType,
		Name:            rc.StringValue("artifact_name"),
		Status:          collab.ArtifactStatusCreated,
		DestinationPath: rc.StringValue("destination_path"),
		Link:            rc.StringValue("artifact_link"),
		Requester:       rc.Requester,
	}
	if rc.Class != nil {
		rec.ClassCode = rc.Class.Code
	}

	existing, err := rc.Collabs.Artifacts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		rec.CreatedAt = existing.CreatedAt
		if err := rc.Collabs.Artifacts.Update(ctx, id, rec); err != nil {
			return err
		}
		s.Logf(rc, pipeline.LevelInfo, "registry record updated for artifact %s", id)
	} else {
		if err := rc.Collabs.Artifacts.Insert(ctx, rec); err != nil {
			return err
		}
		s.Logf(rc, pipeline.LevelInfo, "registry record created for artifact %s", id)
	}

	s.Publish(rc, "record_id", id)
	return nil
}
