// Package memory provides in-memory collaborator implementations used by the
// CLI default wiring and the test suite. Each collaborator guards its own
// state; the pipeline itself stays single-writer per run.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Drive is an in-memory content store that doubles as template repository
// and destination registry: one backing store serves all three contracts,
// mirroring how a real deployment points them at the same document storage.
type Drive struct {
	mu           sync.RWMutex
	templates    map[string]collab.Template
	documents    map[string]string            // template/artifact id -> document body
	sheets       map[string]map[string]string // template/artifact id -> sheet name -> body
	destinations map[string]collab.Destination
	artifacts    map[string]collab.Artifact

	failCopies int // remaining Copy calls to fail with a transient error
}

// NewDrive creates an empty drive.
func NewDrive() *Drive {
	return &Drive{
		templates:    make(map[string]collab.Template),
		documents:    make(map[string]string),
		sheets:       make(map[string]map[string]string),
		destinations: make(map[string]collab.Destination),
		artifacts:    make(map[string]collab.Artifact),
	}
}

// AddTemplate registers a document template with its body.
func (d *Drive) AddTemplate(t collab.Template, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.ContentType == "" {
		t.ContentType = collab.ContentTypeDocument
	}
	d.templates[t.ID] = t
	d.documents[t.ID] = body
}

// AddSheetTemplate registers a spreadsheet template with named sheet bodies.
func (d *Drive) AddSheetTemplate(t collab.Template, sheets map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t.ContentType = collab.ContentTypeSpreadsheet
	d.templates[t.ID] = t
	cp := make(map[string]string, len(sheets))
	maps.Copy(cp, sheets)
	d.sheets[t.ID] = cp
}

// AddDestination registers a destination container under its path.
func (d *Drive) AddDestination(dest collab.Destination) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destinations[dest.Path] = dest
}

// FailNextCopies makes the next n Copy calls fail with a transient storage
// error. Used to exercise the execution guard.
func (d *Drive) FailNextCopies(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failCopies = n
}

// Resolve implements collab.TemplateRepository.
func (d *Drive) Resolve(_ context.Context, id string) (*collab.Template, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.templates[id]
	if !ok {
		return nil, errors.TemplateError(fmt.Sprintf("template %s not found", id)).
			WithContext("template", id).Build()
	}
	return &t, nil
}

// LookupPath implements collab.DestinationRegistry.
func (d *Drive) LookupPath(_ context.Context, path string) (*collab.Destination, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dest, ok := d.destinations[path]
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("destination %s not found", path)).
			WithContext("path", path).Build()
	}
	return &dest, nil
}

// Copy implements collab.ContentStore: it clones the template's content
// under a new artifact id inside the destination.
func (d *Drive) Copy(_ context.Context, templateID, newName, destinationID string) (*collab.Artifact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failCopies > 0 {
		d.failCopies--
		return nil, errors.StorageError("content store temporarily unavailable").
			WithContext("template", templateID).Build()
	}

	t, ok := d.templates[templateID]
	if !ok {
		return nil, errors.TemplateError(fmt.Sprintf("template %s not found", templateID)).
			WithContext("template", templateID).Build()
	}

	id := uuid.NewString()
	artifact := collab.Artifact{
		ID:          id,
		Name:        newName,
		ContentType: t.ContentType,
		Link:        fmt.Sprintf("memory://%s/%s", destinationID, id),
		Parents:     []string{destinationID},
	}
	d.artifacts[id] = artifact

	if body, ok := d.documents[templateID]; ok {
		d.documents[id] = body
	}
	if sheets, ok := d.sheets[templateID]; ok {
		cp := make(map[string]string, len(sheets))
		maps.Copy(cp, sheets)
		d.sheets[id] = cp
	}
	return &artifact, nil
}

// Document returns an artifact's document body.
func (d *Drive) Document(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	body, ok := d.documents[id]
	return body, ok
}

// Sheet returns one sheet body of a spreadsheet artifact.
func (d *Drive) Sheet(id, name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sheets, ok := d.sheets[id]
	if !ok {
		return "", false
	}
	body, ok := sheets[name]
	return body, ok
}

// RewriteDocument implements placeholder.ContentRewriter.
func (d *Drive) RewriteDocument(_ context.Context, artifactID string, rewrite func(string) string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	body, ok := d.documents[artifactID]
	if !ok {
		return false, errors.StorageError(fmt.Sprintf("artifact %s has no document content", artifactID)).
			WithContext("artifact", artifactID).Build()
	}
	out := rewrite(body)
	if out == body {
		return false, nil
	}
	d.documents[artifactID] = out
	return true, nil
}

// RewriteSheet implements placeholder.ContentRewriter; an empty sheet name
// rewrites every sheet.
func (d *Drive) RewriteSheet(_ context.Context, artifactID, sheetName string, rewrite func(string) string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sheets, ok := d.sheets[artifactID]
	if !ok {
		return false, errors.StorageError(fmt.Sprintf("artifact %s has no sheet content", artifactID)).
			WithContext("artifact", artifactID).Build()
	}
	changed := false
	for name, body := range sheets {
		if sheetName != "" && name != sheetName {
			continue
		}
		out := rewrite(body)
		if out != body {
			sheets[name] = out
			changed = true
		}
	}
	return changed, nil
}
