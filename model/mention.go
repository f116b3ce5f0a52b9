package model

import (
	"time"

	"github.com/google/uuid"
)

// Mention links a canonical entity to a document it occurs in.
// There is exactly one mention row per (entity, document) pair; repeated
// occurrences within one document increment Count on the same row.
type Mention struct {
	ID         int64     `json:"id"`
	EntityID   int64     `json:"entity_id"`
	DocumentID int64     `json:"document_id"`
	Count      int       `json:"count"`
	Snippet    string    `json:"snippet,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RawCandidate is a capitalized span found by the extractor.
// It is ephemeral, produced and consumed within a single extraction pass.
type RawCandidate struct {
	Text     string    `json:"text"`
	Document uuid.UUID `json:"document_rid"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}
