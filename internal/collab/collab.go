// Package collab defines the external collaborator contracts the generation
// pipeline depends on. Implementations are injected at generator
// construction; the pipeline never resolves a collaborator by name at
// runtime. In-memory reference implementations live in collab/memory, a
// SQLite artifact registry in internal/artifacts.
package collab

import "context"

// TemplateRepository resolves template ids to template descriptors.
type TemplateRepository interface {
	Resolve(ctx context.Context, id string) (*Template, error)
}

// ContentStore copies templates into destinations. Copy/move/rename
// mechanics are entirely the store's concern.
type ContentStore interface {
	Copy(ctx context.Context, templateID, newName, destinationID string) (*Artifact, error)
}

// DestinationRegistry looks up destination containers by computed path.
type DestinationRegistry interface {
	LookupPath(ctx context.Context, path string) (*Destination, error)
}

// PlaceholderResolver substitutes dynamic content. The rendering engine
// behind ProcessDocument/ProcessSheet is out of scope here; internal/placeholder
// carries the reference implementation the defaults wire in.
type PlaceholderResolver interface {
	Register(name string, resolve func() string)
	SubstituteInString(pattern string) string
	ProcessDocument(ctx context.Context, artifactID string) (bool, error)
	ProcessSheet(ctx context.Context, artifactID, sheetName string) (bool, error)
}

// PermissionService applies a single access grant. The internal
// authorization model is the service's concern.
type PermissionService interface {
	Grant(ctx context.Context, targetID, email string, level GrantLevel, principal PrincipalType) (*Grant, error)
}

// ClassRegistry resolves class keys into full class entities.
type ClassRegistry interface {
	FindByKey(ctx context.Context, key string) (*Class, error)
}

// StaffRegistry resolves role codes into role holders.
type StaffRegistry interface {
	FindByCode(ctx context.Context, code string) (*Staff, error)
}

// ArtifactRegistry persists records about generated artifacts.
type ArtifactRegistry interface {
	FindByID(ctx context.Context, id string) (*ArtifactRecord, error)
	Insert(ctx context.Context, rec *ArtifactRecord) error
	Update(ctx context.Context, id string, rec *ArtifactRecord) error
}

// Set bundles one of each collaborator for injection into a pipeline run.
type Set struct {
	Templates    TemplateRepository
	Store        ContentStore
	Destinations DestinationRegistry
	Resolver     PlaceholderResolver
	Permissions  PermissionService
	Classes      ClassRegistry
	Staff        StaffRegistry
	Artifacts    ArtifactRegistry
}
