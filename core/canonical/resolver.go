// Package canonical maps surface-form variants of entity names onto one
// canonical record per real-world entity: curated known-alias lookup first,
// then structural noise-suffix stripping.
package canonical

import (
	"strings"

	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/model"
)

// Resolver resolves surface forms against the curated known-entity table and
// the noise-suffix list of a gazetteer bundle. It holds no mutable state.
type Resolver struct {
	bundle *gazetteer.Bundle
}

// NewResolver creates a resolver over a gazetteer bundle
func NewResolver(bundle *gazetteer.Bundle) *Resolver {
	return &Resolver{bundle: bundle}
}

// Resolve maps a surface form to its curated canonical name.
// If the surface form is not a known alias it is returned unchanged and the
// second return value is false.
func (r *Resolver) Resolve(surface string) (string, bool) {
	if canonical, ok := r.bundle.ResolveAlias(surface); ok {
		return canonical, true
	}
	return surface, false
}

// KnownAttributes returns the curated title and role for a canonical name
func (r *Resolver) KnownAttributes(name string) (title string, role string) {
	if known, ok := r.bundle.KnownEntity(name); ok {
		return known.Title, known.Role
	}
	return "", ""
}

// StripNoise removes a single trailing noise token ("Sent", "Part",
// "Defendant", ...) from a name. The second return value is false when the
// name carries no noise suffix.
func (r *Resolver) StripNoise(name string) (string, bool) {
	for _, suffix := range r.bundle.NoiseSuffixes() {
		trimmed := strings.TrimSuffix(name, " "+suffix)
		if trimmed != name && trimmed != "" {
			return trimmed, true
		}
	}
	return name, false
}

// SelectCanonical picks the surviving record when several entities turn out
// to be the same real-world entity. The tie-break policy is explicit, not an
// accident of iteration order: highest mention count wins, ties broken by
// longer canonical name, then lexicographically smaller name, then lower ID.
func SelectCanonical(entities []*model.Entity) *model.Entity {
	if len(entities) == 0 {
		return nil
	}

	winner := entities[0]
	for _, entity := range entities[1:] {
		if beats(entity, winner) {
			winner = entity
		}
	}
	return winner
}

func beats(a, b *model.Entity) bool {
	if a.MentionCount != b.MentionCount {
		return a.MentionCount > b.MentionCount
	}
	if len(a.Name) != len(b.Name) {
		return len(a.Name) > len(b.Name)
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
