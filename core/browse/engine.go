package browse

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/docarchive/entreg/database"
	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
)

// Engine answers read-only queries over the consolidated registry
type Engine struct {
	documents *database.DocumentsDBHandler
	entities  *database.EntitiesDBHandler
	mentions  *database.MentionsDBHandler
}

// Profile bundles an entity with its mention links and the documents they
// point into, for display
type Profile struct {
	Entity    *model.Entity
	Mentions  []*model.Mention
	Documents map[int64]*model.Document
}

// NewEngine creates a new browse engine
func NewEngine(documents *database.DocumentsDBHandler, entities *database.EntitiesDBHandler, mentions *database.MentionsDBHandler) *Engine {
	return &Engine{
		documents: documents,
		entities:  entities,
		mentions:  mentions,
	}
}

// TopEntities returns entities ordered by mention count, highest first
func (e *Engine) TopEntities(limit int) ([]*model.Entity, error) {
	return e.entities.SelectTopEntities(limit)
}

// EntitiesByTier returns entities in a risk tier, highest mention count first
func (e *Engine) EntitiesByTier(tier model.RiskTier, limit int) ([]*model.Entity, error) {
	return e.entities.SelectEntitiesByTier(tier, limit)
}

// SearchEntities searches entities by name or alias pattern, optionally
// restricted to one class
func (e *Engine) SearchEntities(searchTerm string, class *model.EntityClass, limit int) ([]*model.Entity, error) {
	return e.entities.SelectEntitiesBySearch(searchTerm, class, limit)
}

// EntityProfile looks an entity up by canonical name and assembles its
// mention links together with the documents they occur in. The mention
// limit bounds how many links are loaded, highest count first; 0 loads all.
func (e *Engine) EntityProfile(name string, mentionLimit int) (*Profile, error) {
	entity, err := e.entities.SelectEntityByName(name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, model.ErrEntityNotFound)
	}
	if err != nil {
		return nil, helper.NewError("select entity by name", err)
	}

	mentions, err := e.mentions.SelectMentionsByEntity(entity.ID, mentionLimit)
	if err != nil {
		return nil, helper.NewError("select mentions by entity", err)
	}

	profile := &Profile{
		Entity:    entity,
		Mentions:  mentions,
		Documents: make(map[int64]*model.Document),
	}

	for _, mention := range mentions {
		if _, ok := profile.Documents[mention.DocumentID]; ok {
			continue
		}
		doc, err := e.documents.SelectDocumentByID(mention.DocumentID)
		if err != nil {
			continue
		}
		profile.Documents[mention.DocumentID] = doc
	}

	return profile, nil
}

// DocumentMentions returns the mention links of a document together with
// their entities, highest count first
func (e *Engine) DocumentMentions(documentID int64) ([]*model.Mention, []*model.Entity, error) {
	mentions, err := e.mentions.SelectMentionsByDocument(documentID)
	if err != nil {
		return nil, nil, helper.NewError("select mentions by document", err)
	}

	entities := make([]*model.Entity, 0, len(mentions))
	for _, mention := range mentions {
		entity, err := e.entities.SelectEntity(mention.EntityID)
		if err != nil {
			return nil, nil, helper.NewError("select entity", err)
		}
		entities = append(entities, entity)
	}

	return mentions, entities, nil
}
