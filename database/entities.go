package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
	loadSql "github.com/docarchive/entreg/sql"
	"github.com/lib/pq"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(entity *model.Entity) error
	SelectEntity(id int64) (*model.Entity, error)
	SelectEntityByName(name string) (*model.Entity, error)
	SelectEntitiesBySurface(surface string) ([]*model.Entity, error)
	SelectAllEntities() ([]*model.Entity, error)
	SelectEntitiesBySearch(searchTerm string, class *model.EntityClass, limit int) ([]*model.Entity, error)
	SelectEntitiesByTier(tier model.RiskTier, limit int) ([]*model.Entity, error)
	SelectTopEntities(limit int) ([]*model.Entity, error)
	AddEntityAlias(q Querier, id int64, alias string) (*model.Entity, error)
	SetEntityAttributes(q Querier, id int64, title string, roleLabel string) (*model.Entity, error)
	RenameEntity(q Querier, id int64, newName string) (*model.Entity, error)
	UpdateEntityScores(q Querier, id int64, tier model.RiskTier, intensity int) error
	MergeEntities(q Querier, sourceID int64, targetID int64) (*model.Entity, error)
	DeleteEntity(id int64) error
}

// EntitiesDBHandler handles canonical-entity database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := loadSql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables, triggers, and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		log.Panicf("error initializing entities table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

func scanEntity(row interface{ Scan(...interface{}) error }, entity *model.Entity) error {
	return row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.Class,
		pq.Array(&entity.Aliases),
		&entity.MentionCount,
		&entity.RiskTier,
		&entity.IntensityScore,
		&entity.Title,
		&entity.RoleLabel,
		&entity.Metadata,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
}

// InsertEntity inserts a new canonical entity or returns the existing one
// with the same case-insensitive name. The existing record's class is never
// overwritten; title and role only fill unset fields.
func (h *EntitiesDBHandler) InsertEntity(entity *model.Entity) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_entity($1, $2, $3, $4, $5, $6)`,
		entity.Name,
		entity.Class,
		entity.Title,
		entity.RoleLabel,
		pq.Array(entity.Aliases),
		entity.Metadata,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEntity retrieves an entity by ID
func (h *EntitiesDBHandler) SelectEntity(id int64) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity($1)`,
		id,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntityByName retrieves an entity by canonical name (case-insensitive)
func (h *EntitiesDBHandler) SelectEntityByName(name string) (*model.Entity, error) {
	entity := &model.Entity{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_entity_by_name($1)`,
		name,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesBySurface retrieves all entities whose canonical name or any
// alias matches the surface form case-insensitively. More than one result
// signals an ambiguous alias; the caller must flag it instead of merging.
func (h *EntitiesDBHandler) SelectEntitiesBySurface(surface string) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_surface($1)`,
		surface,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectAllEntities retrieves all entities ordered by ID
func (h *EntitiesDBHandler) SelectAllEntities() ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_entities()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectEntitiesBySearch searches entities by name or alias pattern
func (h *EntitiesDBHandler) SelectEntitiesBySearch(searchTerm string, class *model.EntityClass, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_entities($1, $2, $3)`,
		searchTerm,
		class,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectEntitiesByTier retrieves entities in a risk tier, highest mention
// count first
func (h *EntitiesDBHandler) SelectEntitiesByTier(tier model.RiskTier, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_entities_by_tier($1, $2)`,
		tier,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// SelectTopEntities retrieves entities ordered by mention count
func (h *EntitiesDBHandler) SelectTopEntities(limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_top_entities($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// AddEntityAlias appends a surface form to the entity's alias set if not
// already present (case-insensitive)
func (h *EntitiesDBHandler) AddEntityAlias(q Querier, id int64, alias string) (*model.Entity, error) {
	if q == nil {
		q = h.db.Instance
	}

	entity := &model.Entity{}
	row := q.QueryRow(
		`SELECT * FROM add_entity_alias($1, $2)`,
		id,
		alias,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// SetEntityAttributes fills the entity's title and role, only where unset
func (h *EntitiesDBHandler) SetEntityAttributes(q Querier, id int64, title string, roleLabel string) (*model.Entity, error) {
	if q == nil {
		q = h.db.Instance
	}

	entity := &model.Entity{}
	row := q.QueryRow(
		`SELECT * FROM set_entity_attributes($1, $2, $3)`,
		id,
		title,
		roleLabel,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// RenameEntity gives the entity a new canonical display name, keeping the
// old name as an alias
func (h *EntitiesDBHandler) RenameEntity(q Querier, id int64, newName string) (*model.Entity, error) {
	if q == nil {
		q = h.db.Instance
	}

	entity := &model.Entity{}
	row := q.QueryRow(
		`SELECT * FROM rename_entity($1, $2)`,
		id,
		newName,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// UpdateEntityScores sets the derived risk tier and intensity score
func (h *EntitiesDBHandler) UpdateEntityScores(q Querier, id int64, tier model.RiskTier, intensity int) error {
	if q == nil {
		q = h.db.Instance
	}

	_, err := q.Exec(
		`SELECT update_entity_scores($1, $2, $3)`,
		id,
		tier,
		intensity,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// MergeEntities merges the source entity into the target: mentions are
// re-pointed with per-document counts summed, alias sets unioned, unset
// target attributes filled and the source deleted. The merge runs as a
// single statement, so it either applies completely or not at all.
func (h *EntitiesDBHandler) MergeEntities(q Querier, sourceID int64, targetID int64) (*model.Entity, error) {
	if q == nil {
		q = h.db.Instance
	}

	entity := &model.Entity{}
	row := q.QueryRow(
		`SELECT * FROM merge_entities($1, $2)`,
		sourceID,
		targetID,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return entity, nil
}

// DeleteEntity deletes an entity by ID
func (h *EntitiesDBHandler) DeleteEntity(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_entity($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanEntities(rows *sql.Rows) ([]*model.Entity, error) {
	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		err := scanEntity(rows, entity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return entities, nil
}
