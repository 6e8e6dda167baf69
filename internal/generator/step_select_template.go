package generator

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// templateVariantDefault is the fallback key in a type's template map.
const templateVariantDefault = "DEFAULT"

// selectTemplateStep picks the source template: caller hook first, explicit
// config id second, the type's template map last.
type selectTemplateStep struct {
	pipeline.BaseStep
	meta config.DocumentType
}

func newSelectTemplateStep(meta config.DocumentType, cfg pipeline.Config) *selectTemplateStep {
	return &selectTemplateStep{BaseStep: pipeline.NewBaseStep(StepSelectTemplate, cfg), meta: meta}
}

func (s *selectTemplateStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "templates") {
		return s.MissingFieldsError("templates")
	}

	if rc.SelectTemplate != nil {
		t, err := rc.SelectTemplate(rc)
		if err != nil {
			return err
		}
		if t != nil {
			s.Logf(rc, pipeline.LevelInfo, "template selected by hook: %s", t.ID)
			s.publishTemplate(rc, t.ID, t.Name)
			return nil
		}
		// hook declined, fall through to configured selection
	}

	id := s.GetConfigString(rc, "template_id", "")
	if id == "" {
		variant := templateVariantDefault
		if v, ok := rc.Params["template"].(string); ok && v != "" {
			variant = v
		}
		id = s.meta.Templates[variant]
		if id == "" && variant != templateVariantDefault {
			id = s.meta.Templates[templateVariantDefault]
		}
	}
	if id == "" {
		return errors.NotFoundError(fmt.Sprintf("no template configured for type %s", rc.DocType)).Build()
	}

	t, err := rc.Collabs.Templates.Resolve(ctx, id)
	if err != nil {
		return err
	}

	s.Logf(rc, pipeline.LevelInfo, "template selected: %s (%s)", t.Name, t.ID)
	s.publishTemplate(rc, t.ID, t.Name)
	return nil
}

func (s *selectTemplateStep) publishTemplate(rc *pipeline.Context, id, name string) {
	s.Publish(rc, "template_id", id)
	s.Publish(rc, "template_name", name)
}
