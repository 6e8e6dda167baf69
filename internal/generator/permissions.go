package generator

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/collab"
)

// Role keys understood by the permission assignment step.
const (
	RoleCoordinator    = "coordinator"
	RoleReferent       = "referent"
	RoleSubjectTeacher = "subject_teacher"
	RoleTutor          = "tutor"
	RoleSelf           = "self"
)

var knownRoles = []string{RoleCoordinator, RoleReferent, RoleSubjectTeacher, RoleTutor, RoleSelf}

// mapGrantLevel translates a configured permission level into the store's
// grant level. Legacy aliases from the previous system are accepted. The
// second return is false for NONE/empty (skip silently); an unrecognized
// level returns ok=false with recognized=false so the caller can warn.
func mapGrantLevel(level string) (mapped collab.GrantLevel, ok, recognized bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "", "NONE":
		return "", false, true
	case "READ", "LETTURA":
		return collab.GrantReader, true, true
	case "COMMENT", "COMMENTO":
		return collab.GrantCommenter, true, true
	case "WRITE", "SCRITTURA":
		return collab.GrantWriter, true, true
	case "OWNER", "PROPRIETARIO":
		return collab.GrantOwner, true, true
	}
	return "", false, false
}
