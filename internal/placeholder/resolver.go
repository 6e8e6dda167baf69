// Package placeholder provides the default placeholder resolver wired into
// generation runs. The pipeline depends only on the collab.PlaceholderResolver
// contract; deployments with a real rendering engine substitute their own.
//
// The token syntax is "{name}". Unknown tokens are left intact so partially
// resolvable patterns stay inspectable instead of silently losing content.
package placeholder

import (
	"context"
	"regexp"
	"sync"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_.\-]+)\}`)

// ContentRewriter is the capability the resolver needs from the content
// store to process artifact bodies in place.
type ContentRewriter interface {
	RewriteDocument(ctx context.Context, artifactID string, rewrite func(string) string) (bool, error)
	RewriteSheet(ctx context.Context, artifactID, sheetName string, rewrite func(string) string) (bool, error)
}

// Resolver is the default collab.PlaceholderResolver implementation.
type Resolver struct {
	mu       sync.RWMutex
	names    map[string]func() string
	rewriter ContentRewriter
}

// NewResolver creates a resolver backed by the given content rewriter. The
// rewriter may be nil when only string substitution is needed.
func NewResolver(rewriter ContentRewriter) *Resolver {
	return &Resolver{
		names:    make(map[string]func() string),
		rewriter: rewriter,
	}
}

// Register makes a name resolvable. Later registrations replace earlier ones.
func (r *Resolver) Register(name string, resolve func() string) {
	if name == "" || resolve == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[name] = resolve
}

// RegisterValue registers a fixed value under a name.
func (r *Resolver) RegisterValue(name, value string) {
	r.Register(name, func() string { return value })
}

// SubstituteInString replaces every registered "{name}" token in pattern.
// Unregistered tokens are left as-is.
func (r *Resolver) SubstituteInString(pattern string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tokenPattern.ReplaceAllStringFunc(pattern, func(token string) string {
		name := token[1 : len(token)-1]
		if resolve, ok := r.names[name]; ok {
			return resolve()
		}
		return token
	})
}

// ProcessDocument substitutes placeholders in the full document body.
// It reports whether any content changed.
func (r *Resolver) ProcessDocument(ctx context.Context, artifactID string) (bool, error) {
	if r.rewriter == nil {
		return false, errors.InternalError("placeholder resolver has no content rewriter").Build()
	}
	return r.rewriter.RewriteDocument(ctx, artifactID, r.SubstituteInString)
}

// ProcessSheet substitutes placeholders scoped to a named sheet; an empty
// sheet name means every sheet.
func (r *Resolver) ProcessSheet(ctx context.Context, artifactID, sheetName string) (bool, error) {
	if r.rewriter == nil {
		return false, errors.InternalError("placeholder resolver has no content rewriter").Build()
	}
	return r.rewriter.RewriteSheet(ctx, artifactID, sheetName, r.SubstituteInString)
}
