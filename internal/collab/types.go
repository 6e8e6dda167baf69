package collab

import "time"

// Content types assigned by the content store to copied artifacts.
// The artifact kind routing in the pipeline derives from these.
const (
	ContentTypeDocument    = "application/vnd.docgen.document"
	ContentTypeSpreadsheet = "application/vnd.docgen.spreadsheet"
)

// Template is a source document resolvable through the template repository.
type Template struct {
	ID          string
	Name        string
	ContentType string
	Link        string
}

// Artifact is the product of copying a template into a destination.
type Artifact struct {
	ID          string
	Name        string
	ContentType string
	Link        string
	Parents     []string
}

// Destination is a resolved target container in the content store.
type Destination struct {
	ID   string
	Name string
	Path string
	Link string
}

// Class is the target entity documents are generated for. Role accessors
// feed the permission assignment step.
type Class struct {
	Code                 string
	Name                 string
	CoordinatorEmails    []string
	TutorEmails          []string
	SubjectTeacherEmails map[string][]string // subject -> teacher emails
}

// Coordinators returns the coordinator emails for the class.
func (c *Class) Coordinators() []string {
	if c == nil {
		return nil
	}
	return c.CoordinatorEmails
}

// Tutors returns the tutor emails for the class.
func (c *Class) Tutors() []string {
	if c == nil {
		return nil
	}
	return c.TutorEmails
}

// SubjectTeachers returns the teacher emails for a subject, or all subject
// teachers when subject is empty.
func (c *Class) SubjectTeachers(subject string) []string {
	if c == nil {
		return nil
	}
	if subject != "" {
		return c.SubjectTeacherEmails[subject]
	}
	var all []string
	for _, emails := range c.SubjectTeacherEmails {
		all = append(all, emails...)
	}
	return all
}

// Staff is a role holder resolvable by code (e.g. a referent).
type Staff struct {
	Code  string
	Name  string
	Email string
}

// ArtifactStatus enumerates registry record lifecycle states.
type ArtifactStatus string

const (
	ArtifactStatusCreated ArtifactStatus = "CREATED"
)

// ArtifactRecord is the registry entry persisted for a generated artifact.
type ArtifactRecord struct {
	ID              string
	Type            string
	Name            string
	Status          ArtifactStatus
	DestinationPath string
	Link            string
	ClassCode       string
	Requester       string
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// GrantLevel is the access level understood by the permission service.
type GrantLevel string

const (
	GrantReader    GrantLevel = "reader"
	GrantCommenter GrantLevel = "commenter"
	GrantWriter    GrantLevel = "writer"
	GrantOwner     GrantLevel = "owner"
)

// PrincipalType identifies the kind of grantee.
type PrincipalType string

const (
	PrincipalUser  PrincipalType = "user"
	PrincipalGroup PrincipalType = "group"
)

// Grant is the record returned by the permission service for one applied grant.
type Grant struct {
	TargetID  string
	Email     string
	Level     GrantLevel
	Principal PrincipalType
}
