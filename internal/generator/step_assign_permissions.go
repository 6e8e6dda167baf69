package generator

import (
	"context"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/pipeline"
)

// assignPermissionsStep grants access on the artifact and its destination to
// the role holders configured for the document type. Unrecognized levels are
// logged and skipped; the run continues.
type assignPermissionsStep struct {
	pipeline.BaseStep
	meta config.DocumentType
}

func newAssignPermissionsStep(meta config.DocumentType, cfg pipeline.Config) *assignPermissionsStep {
	return &assignPermissionsStep{BaseStep: pipeline.NewBaseStep(StepAssignPermissions, cfg), meta: meta}
}

func (s *assignPermissionsStep) Logic(ctx context.Context, rc *pipeline.Context) error {
	if !s.RequireValues(rc, "permissions", "artifact_id", "destination_id") {
		return s.MissingFieldsError("permissions", "artifact_id", "destination_id")
	}

	roleGrants := make(map[string]config.RoleGrant, len(s.meta.Permissions))
	for role, rg := range s.meta.Permissions {
		roleGrants[role] = rg
	}
	// direct config grants override the type metadata per role
	if override, ok := s.GetConfig(rc, "permissions", nil).(map[string]config.RoleGrant); ok {
		for role, rg := range override {
			roleGrants[role] = rg
		}
	}

	targets := []struct {
		id    string
		level func(config.RoleGrant) string
	}{
		{rc.StringValue("artifact_id"), func(rg config.RoleGrant) string { return rg.Artifact }},
		{rc.StringValue("destination_id"), func(rg config.RoleGrant) string { return rg.Destination }},
	}

	applied := make(map[string]struct{})
	granted := 0
	for _, role := range knownRoles {
		rg, ok := roleGrants[role]
		if !ok {
			continue
		}
		emails, err := s.roleEmails(ctx, rc, role)
		if err != nil {
			return err
		}
		if len(emails) == 0 {
			continue
		}
		for _, target := range targets {
			level, grant, recognized := mapGrantLevel(target.level(rg))
			if !recognized {
				s.Logf(rc, pipeline.LevelWarn, "unknown permission level %q for role %s, skipping", target.level(rg), role)
				continue
			}
			if !grant {
				continue
			}
			for _, email := range emails {
				key := role + "|" + email + "|" + target.id
				if _, done := applied[key]; done {
					continue
				}
				applied[key] = struct{}{}
				if _, err := rc.Collabs.Permissions.Grant(ctx, target.id, email, level, collab.PrincipalUser); err != nil {
					return err
				}
				granted++
			}
		}
	}

	s.Logf(rc, pipeline.LevelInfo, "applied %d grants", granted)
	s.Publish(rc, "grants_applied", granted)
	return nil
}

// roleEmails resolves the grantee emails for one role. A referent code that
// resolves to nobody is reported and skipped rather than failing the run.
func (s *assignPermissionsStep) roleEmails(ctx context.Context, rc *pipeline.Context, role string) ([]string, error) {
	switch role {
	case RoleCoordinator:
		return rc.Class.Coordinators(), nil
	case RoleTutor:
		return rc.Class.Tutors(), nil
	case RoleSubjectTeacher:
		subject, _ := rc.Params["subject"].(string)
		return rc.Class.SubjectTeachers(subject), nil
	case RoleSelf:
		if rc.Requester == "" {
			return nil, nil
		}
		return []string{rc.Requester}, nil
	case RoleReferent:
		code := s.GetConfigString(rc, "referent_code", "")
		if code == "" {
			code, _ = rc.Params["referent_code"].(string)
		}
		if code == "" || rc.Collabs.Staff == nil {
			return nil, nil
		}
		staff, err := rc.Collabs.Staff.FindByCode(ctx, code)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) {
				s.Logf(rc, pipeline.LevelWarn, "referent %s not found, skipping role", code)
				return nil, nil
			}
			return nil, err
		}
		return []string{staff.Email}, nil
	}
	return nil, nil
}
