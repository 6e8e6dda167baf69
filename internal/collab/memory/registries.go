package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// ClassRegistry is an in-memory collab.ClassRegistry.
type ClassRegistry struct {
	mu      sync.RWMutex
	classes map[string]collab.Class
}

// NewClassRegistry creates an empty class registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]collab.Class)}
}

// Add registers a class under its code.
func (r *ClassRegistry) Add(c collab.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.Code] = c
}

// FindByKey implements collab.ClassRegistry.
func (r *ClassRegistry) FindByKey(_ context.Context, key string) (*collab.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[key]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("class %s not found", key)).
			WithContext("class", key).Build()
	}
	return &c, nil
}

// StaffRegistry is an in-memory collab.StaffRegistry.
type StaffRegistry struct {
	mu    sync.RWMutex
	staff map[string]collab.Staff
}

// NewStaffRegistry creates an empty staff registry.
func NewStaffRegistry() *StaffRegistry {
	return &StaffRegistry{staff: make(map[string]collab.Staff)}
}

// Add registers a role holder under their code.
func (r *StaffRegistry) Add(s collab.Staff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[s.Code] = s
}

// FindByCode implements collab.StaffRegistry.
func (r *StaffRegistry) FindByCode(_ context.Context, code string) (*collab.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.staff[code]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("staff code %s not found", code)).
			WithContext("code", code).Build()
	}
	return &s, nil
}

// PermissionService is an in-memory collab.PermissionService that records
// every applied grant.
type PermissionService struct {
	mu         sync.Mutex
	grants     []collab.Grant
	failGrants int
}

// NewPermissionService creates an empty permission service.
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// FailNextGrants makes the next n Grant calls fail with a transient error.
func (p *PermissionService) FailNextGrants(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failGrants = n
}

// Grant implements collab.PermissionService.
func (p *PermissionService) Grant(_ context.Context, targetID, email string, level collab.GrantLevel, principal collab.PrincipalType) (*collab.Grant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failGrants > 0 {
		p.failGrants--
		return nil, errors.PermissionError("permission service temporarily unavailable").
			WithContext("target", targetID).Build()
	}
	g := collab.Grant{TargetID: targetID, Email: email, Level: level, Principal: principal}
	p.grants = append(p.grants, g)
	return &g, nil
}

// Grants returns a copy of all applied grants.
func (p *PermissionService) Grants() []collab.Grant {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]collab.Grant, len(p.grants))
	copy(out, p.grants)
	return out
}

// ArtifactRegistry is an in-memory collab.ArtifactRegistry.
type ArtifactRegistry struct {
	mu      sync.RWMutex
	records map[string]collab.ArtifactRecord
}

// NewArtifactRegistry creates an empty artifact registry.
func NewArtifactRegistry() *ArtifactRegistry {
	return &ArtifactRegistry{records: make(map[string]collab.ArtifactRecord)}
}

// FindByID implements collab.ArtifactRegistry. A missing id yields (nil, nil)
// so callers can distinguish absence from lookup failure.
func (r *ArtifactRegistry) FindByID(_ context.Context, id string) (*collab.ArtifactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Insert implements collab.ArtifactRegistry.
func (r *ArtifactRegistry) Insert(_ context.Context, rec *collab.ArtifactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; exists {
		return errors.NewError(errors.CategoryAlreadyExists, fmt.Sprintf("artifact record %s already exists", rec.ID)).
			WithContext("artifact", rec.ID).Build()
	}
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.ModifiedAt = cp.CreatedAt
	r.records[rec.ID] = cp
	return nil
}

// Update implements collab.ArtifactRegistry.
func (r *ArtifactRegistry) Update(_ context.Context, id string, rec *collab.ArtifactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[id]
	if !ok {
		return errors.RegistryError(fmt.Sprintf("artifact record %s not found", id)).
			WithContext("artifact", id).Build()
	}
	cp := *rec
	cp.ID = id
	cp.CreatedAt = existing.CreatedAt
	cp.ModifiedAt = time.Now()
	r.records[id] = cp
	return nil
}

// Len returns the number of stored records.
func (r *ArtifactRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
