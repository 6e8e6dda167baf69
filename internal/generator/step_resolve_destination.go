package generator

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// resolveDestinationStep computes the destination path from the type's
// patterns and resolves it through the destination registry.
type resolveDestinationStep struct {
	pipeline.BaseStep
	meta config.DocumentType
}

func newResolveDestinationStep(meta config.DocumentType, cfg pipeline.Config) *resolveDestinationStep {
	return &resolveDestinationStep{BaseStep: pipeline.NewBaseStep(StepResolveDestination, cfg), meta: meta}
}

func (s *resolveDestinationStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "destinations", "resolver") {
		return s.MissingFieldsError("destinations", "resolver")
	}

	parent := s.GetConfigString(rc, "destination_parent", s.meta.Destination.Parent)
	if parent == "" {
		return errors.ValidationError(fmt.Sprintf("type %s has no destination pattern", rc.DocType)).Build()
	}

	path := rc.Collabs.Resolver.SubstituteInString(parent)
	if sub := s.GetConfigString(rc, "destination_sub", s.meta.Destination.Sub); sub != "" {
		path = strings.TrimSuffix(path, "/") + "/" + rc.Collabs.Resolver.SubstituteInString(sub)
	}

	dest, err := rc.Collabs.Destinations.LookupPath(ctx, path)
	if err != nil {
		return err
	}

	s.Logf(rc, pipeline.LevelInfo, "destination resolved: %s (%s)", path, dest.ID)
	s.Publish(rc, "destination", dest)
	s.Publish(rc, "destination_id", dest.ID)
	s.Publish(rc, "destination_path", path)
	return nil
}
