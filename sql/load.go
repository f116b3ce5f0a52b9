package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed documents.sql
var documentsSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed mentions.sql
var mentionsSQL string

// Function lists for verification
var DocumentsFunctions = []string{
	"init_documents",
	"insert_document",
	"select_document",
	"select_document_by_id",
	"select_all_documents",
	"search_documents",
	"update_document",
	"delete_document",
}

var EntitiesFunctions = []string{
	"init_entities",
	"insert_entity",
	"select_entity",
	"select_entity_by_name",
	"select_entities_by_surface",
	"select_all_entities",
	"search_entities",
	"select_entities_by_tier",
	"select_top_entities",
	"add_entity_alias",
	"set_entity_attributes",
	"rename_entity",
	"update_entity_scores",
	"merge_entities",
	"delete_entity",
}

var MentionsFunctions = []string{
	"init_mentions",
	"upsert_mention",
	"select_mention",
	"select_mentions_by_entity",
	"select_mentions_by_document",
	"total_mention_count",
	"mention_counts",
	"recount_all_entity_mentions",
	"delete_mention",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadDocumentsSql loads document-related SQL functions
func LoadDocumentsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, DocumentsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing documents functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(documentsSQL)
	if err != nil {
		return fmt.Errorf("error executing documents SQL: %w", err)
	}

	exist, err := checkFunctions(db, DocumentsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL documents functions loaded successfully")
	return nil
}

// LoadEntitiesSql loads entity-related SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EntitiesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing entities functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(entitiesSQL)
	if err != nil {
		return fmt.Errorf("error executing entities SQL: %w", err)
	}

	exist, err := checkFunctions(db, EntitiesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL entities functions loaded successfully")
	return nil
}

// LoadMentionsSql loads mention-related SQL functions
func LoadMentionsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, MentionsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing mentions functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(mentionsSQL)
	if err != nil {
		return fmt.Errorf("error executing mentions SQL: %w", err)
	}

	exist, err := checkFunctions(db, MentionsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL mentions functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadDocumentsSql(db, force); err != nil {
		return err
	}

	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}

	if err := LoadMentionsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
