package model

import (
	"strings"
	"time"
)

// EntityClass is the kind of real-world entity a record represents
type EntityClass string

const (
	ClassPerson       EntityClass = "PERSON"
	ClassOrganization EntityClass = "ORGANIZATION"
)

// RiskTier is the derived severity bucket of an entity
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// Entity represents one canonical person or organization after alias consolidation.
// Name is the normalized display form, Aliases holds all known surface-form
// variants. MentionCount is recomputed from the mention links, never incremented
// ad hoc. RiskTier and IntensityScore are derived from the corpus-wide mention
// distribution and recomputed per scoring pass.
type Entity struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Class          EntityClass `json:"entity_class"`
	Aliases        []string    `json:"aliases,omitempty"`
	MentionCount   int         `json:"mention_count"`
	RiskTier       RiskTier    `json:"risk_tier"`
	IntensityScore int         `json:"intensity_score"`
	Title          string      `json:"title,omitempty"`
	RoleLabel      string      `json:"role_label,omitempty"`
	Metadata       Metadata    `json:"metadata,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// HasSurfaceForm reports whether the entity already knows the given surface form,
// comparing case-insensitively against the canonical name and all aliases.
func (e *Entity) HasSurfaceForm(surface string) bool {
	if strings.EqualFold(e.Name, surface) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.EqualFold(alias, surface) {
			return true
		}
	}
	return false
}

// SurfaceForms returns the canonical name followed by all aliases
func (e *Entity) SurfaceForms() []string {
	forms := make([]string, 0, len(e.Aliases)+1)
	forms = append(forms, e.Name)
	forms = append(forms, e.Aliases...)
	return forms
}
