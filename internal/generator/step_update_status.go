package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// updateStatusStep closes the run. It verifies the registry record exists
// and logs completion; status transitions beyond CREATED are applied here by
// replacing this step through Pipeline.Replace.
type updateStatusStep struct {
	pipeline.BaseStep
}

func newUpdateStatusStep(cfg pipeline.Config) *updateStatusStep {
	return &updateStatusStep{BaseStep: pipeline.NewBaseStep(StepUpdateStatus, cfg)}
}

func (s *updateStatusStep) Logic(_ context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "artifact_id", "record_id") {
		return s.MissingFieldsError("artifact_id", "record_id")
	}
	s.Logf(rc, pipeline.LevelInfo, "generation complete for artifact %s", rc.StringValue("artifact_id"))
	return nil
}
