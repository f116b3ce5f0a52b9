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
)

// MentionsDBHandlerFunctions defines the interface for Mentions database operations.
type MentionsDBHandlerFunctions interface {
	UpsertMention(q Querier, mention *model.Mention) error
	SelectMention(entityID int64, documentID int64) (*model.Mention, error)
	SelectMentionsByEntity(entityID int64, limit int) ([]*model.Mention, error)
	SelectMentionsByDocument(documentID int64) ([]*model.Mention, error)
	TotalMentionCount() (int64, error)
	MentionCounts(q Querier) (map[int64]int, error)
	RecountAllEntityMentions(q Querier) error
	DeleteMention(id int64) error
}

// MentionsDBHandler handles entity-document mention links
type MentionsDBHandler struct {
	db *helper.Database
}

// NewMentionsDBHandler creates a new mentions database handler.
// It initializes the database connection and loads mention-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The entities and documents tables must exist first because mentions
// reference both.
func NewMentionsDBHandler(db *helper.Database, force bool) (*MentionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	mentionsDbHandler := &MentionsDBHandler{
		db: db,
	}

	err := loadSql.LoadMentionsSql(mentionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load mentions sql", err)
	}

	err = mentionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MentionsDBHandler")

	return mentionsDbHandler, nil
}

// CreateTable creates the 'mentions' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *MentionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables, triggers, and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_mentions();`)
	if err != nil {
		log.Panicf("error initializing mentions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table mentions")

	return nil
}

func scanMention(row interface{ Scan(...interface{}) error }, mention *model.Mention) error {
	return row.Scan(
		&mention.ID,
		&mention.EntityID,
		&mention.DocumentID,
		&mention.Count,
		&mention.Snippet,
		&mention.CreatedAt,
		&mention.UpdatedAt,
	)
}

// UpsertMention creates or updates the single mention link for the mention's
// (entity, document) pair. Count is set absolutely, not incremented, so
// re-ingesting a document does not drift.
func (h *MentionsDBHandler) UpsertMention(q Querier, mention *model.Mention) error {
	if q == nil {
		q = h.db.Instance
	}

	row := q.QueryRow(
		`SELECT * FROM upsert_mention($1, $2, $3, $4)`,
		mention.EntityID,
		mention.DocumentID,
		mention.Count,
		mention.Snippet,
	)

	err := scanMention(row, mention)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectMention retrieves the mention link for an (entity, document) pair
func (h *MentionsDBHandler) SelectMention(entityID int64, documentID int64) (*model.Mention, error) {
	mention := &model.Mention{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_mention($1, $2)`,
		entityID,
		documentID,
	)

	err := scanMention(row, mention)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return mention, nil
}

// SelectMentionsByEntity retrieves the mention links of an entity, highest
// count first. A non-positive limit loads all links.
func (h *MentionsDBHandler) SelectMentionsByEntity(entityID int64, limit int) ([]*model.Mention, error) {
	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_mentions_by_entity($1, $2)`,
		entityID,
		limitArg,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// SelectMentionsByDocument retrieves all mention links of a document
func (h *MentionsDBHandler) SelectMentionsByDocument(documentID int64) ([]*model.Mention, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_mentions_by_document($1)`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// TotalMentionCount returns the sum of all mention counts in the registry.
// Any merge leaves this total unchanged.
func (h *MentionsDBHandler) TotalMentionCount() (int64, error) {
	var total int64
	err := h.db.Instance.QueryRow(`SELECT total_mention_count()`).Scan(&total)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return total, nil
}

// MentionCounts returns the per-entity mention totals recomputed from the
// mention links, including entities without mentions. This is the snapshot
// the risk scorer works from.
func (h *MentionsDBHandler) MentionCounts(q Querier) (map[int64]int, error) {
	if q == nil {
		q = h.db.Instance
	}

	rows, err := q.Query(`SELECT * FROM mention_counts()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var entityID int64
		var count int64
		err := rows.Scan(&entityID, &count)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		counts[entityID] = int(count)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return counts, nil
}

// RecountAllEntityMentions recomputes every entity's stored mention count
// from its mention links
func (h *MentionsDBHandler) RecountAllEntityMentions(q Querier) error {
	if q == nil {
		q = h.db.Instance
	}

	_, err := q.Exec(`SELECT recount_all_entity_mentions()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteMention deletes a mention link by ID
func (h *MentionsDBHandler) DeleteMention(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_mention($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanMentions(rows *sql.Rows) ([]*model.Mention, error) {
	var mentions []*model.Mention
	for rows.Next() {
		mention := &model.Mention{}
		err := scanMention(rows, mention)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		mentions = append(mentions, mention)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}
