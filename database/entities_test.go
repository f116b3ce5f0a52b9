package database

import (
	"testing"
	"time"

	"github.com/docarchive/entreg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesNewEntitiesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewEntitiesDBHandler", func(t *testing.T) {
		entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
		assert.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")
		require.NotNil(t, entitiesDbHandler, "Expected NewEntitiesDBHandler to return a non-nil instance")
		require.NotNil(t, entitiesDbHandler.db, "Expected NewEntitiesDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewEntitiesDBHandler with nil database", func(t *testing.T) {
		_, err := NewEntitiesDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating EntitiesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestEntitiesInsert(t *testing.T) {
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")

	t.Run("Insert entity", func(t *testing.T) {
		entity := &model.Entity{
			Name:  "Jeffrey Epstein",
			Class: model.ClassPerson,
		}

		err := entitiesDbHandler.InsertEntity(entity)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEmpty(t, entity.ID, "Expected inserted entity to have an ID")
		assert.Equal(t, model.TierLow, entity.RiskTier, "Expected new entity on the LOW tier")
		assert.Equal(t, 1, entity.IntensityScore, "Expected new entity at the intensity floor")
		assert.WithinDuration(t, entity.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")

		// Cleanup
		entitiesDbHandler.DeleteEntity(entity.ID)
	})

	t.Run("Insert is an upsert by case-insensitive name", func(t *testing.T) {
		entity := &model.Entity{
			Name:  "Ghislaine Maxwell",
			Class: model.ClassPerson,
		}
		err := entitiesDbHandler.InsertEntity(entity)
		require.NoError(t, err)
		firstID := entity.ID

		duplicate := &model.Entity{
			Name:      "ghislaine maxwell",
			Class:     model.ClassPerson,
			Title:     "Ms.",
			RoleLabel: "Socialite",
			Aliases:   []string{"G. Maxwell"},
		}
		err = entitiesDbHandler.InsertEntity(duplicate)
		assert.NoError(t, err, "Expected duplicate insert to return the existing record")
		assert.Equal(t, firstID, duplicate.ID, "Expected the existing record, not a second one")
		assert.Equal(t, "Ghislaine Maxwell", duplicate.Name, "Expected the original casing to be kept")
		assert.Equal(t, "Socialite", duplicate.RoleLabel, "Expected empty role to be filled")
		assert.Contains(t, duplicate.Aliases, "G. Maxwell", "Expected aliases to be unioned")

		// Cleanup
		entitiesDbHandler.DeleteEntity(firstID)
	})

	t.Run("Alias equal to the name is never stored", func(t *testing.T) {
		entity := &model.Entity{
			Name:    "Alan Dershowitz",
			Class:   model.ClassPerson,
			Aliases: []string{"alan dershowitz", "Alan M. Dershowitz"},
		}
		err := entitiesDbHandler.InsertEntity(entity)
		require.NoError(t, err)
		assert.NotContains(t, entity.Aliases, "alan dershowitz")
		assert.Contains(t, entity.Aliases, "Alan M. Dershowitz")

		// Cleanup
		entitiesDbHandler.DeleteEntity(entity.ID)
	})
}

func TestEntitiesSelect(t *testing.T) {
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)

	entity := &model.Entity{
		Name:    "Leslie Wexner",
		Class:   model.ClassPerson,
		Aliases: []string{"Les Wexner"},
	}
	err = entitiesDbHandler.InsertEntity(entity)
	require.NoError(t, err)
	defer entitiesDbHandler.DeleteEntity(entity.ID)

	t.Run("Select by ID", func(t *testing.T) {
		retrieved, err := entitiesDbHandler.SelectEntity(entity.ID)
		assert.NoError(t, err, "Expected SelectEntity to not return an error")
		assert.Equal(t, entity.Name, retrieved.Name)
		assert.Equal(t, model.ClassPerson, retrieved.Class)
	})

	t.Run("Select by name is case-insensitive", func(t *testing.T) {
		retrieved, err := entitiesDbHandler.SelectEntityByName("leslie wexner")
		assert.NoError(t, err)
		assert.Equal(t, entity.ID, retrieved.ID)
	})

	t.Run("Select by surface matches name and aliases", func(t *testing.T) {
		byName, err := entitiesDbHandler.SelectEntitiesBySurface("Leslie Wexner")
		require.NoError(t, err)
		require.Len(t, byName, 1)

		byAlias, err := entitiesDbHandler.SelectEntitiesBySurface("les wexner")
		require.NoError(t, err)
		require.Len(t, byAlias, 1)
		assert.Equal(t, entity.ID, byAlias[0].ID)
	})

	t.Run("Select by unknown surface yields nothing", func(t *testing.T) {
		matches, err := entitiesDbHandler.SelectEntitiesBySurface("Walter Plinge")
		assert.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Select missing entity returns error", func(t *testing.T) {
		_, err := entitiesDbHandler.SelectEntity(999999)
		assert.Error(t, err)
	})
}

func TestEntitiesSearchAndOrder(t *testing.T) {
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)

	names := []struct {
		name  string
		class model.EntityClass
	}{
		{"Donald Trump", model.ClassPerson},
		{"Trump Organization", model.ClassOrganization},
		{"Bear Stearns", model.ClassOrganization},
	}
	ids := make([]int64, 0, len(names))
	for _, n := range names {
		entity := &model.Entity{Name: n.name, Class: n.class}
		err := entitiesDbHandler.InsertEntity(entity)
		require.NoError(t, err)
		ids = append(ids, entity.ID)
	}
	defer func() {
		for _, id := range ids {
			entitiesDbHandler.DeleteEntity(id)
		}
	}()

	t.Run("Search by name substring", func(t *testing.T) {
		results, err := entitiesDbHandler.SelectEntitiesBySearch("trump", nil, 10)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Search restricted to one class", func(t *testing.T) {
		class := model.ClassOrganization
		results, err := entitiesDbHandler.SelectEntitiesBySearch("trump", &class, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Trump Organization", results[0].Name)
	})

	t.Run("Top entities honors the limit", func(t *testing.T) {
		results, err := entitiesDbHandler.SelectTopEntities(2)
		assert.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Entities by tier", func(t *testing.T) {
		results, err := entitiesDbHandler.SelectEntitiesByTier(model.TierLow, 10)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, len(results), 3, "Expected the fresh entities on the LOW tier")
	})
}

func TestEntitiesMutations(t *testing.T) {
	database := initDB(t)

	entitiesDbHandler, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Add alias deduplicates case-insensitively", func(t *testing.T) {
		entity := &model.Entity{Name: "Jean-Luc Brunel", Class: model.ClassPerson}
		require.NoError(t, entitiesDbHandler.InsertEntity(entity))
		defer entitiesDbHandler.DeleteEntity(entity.ID)

		updated, err := entitiesDbHandler.AddEntityAlias(nil, entity.ID, "Jean Luc Brunel")
		require.NoError(t, err)
		assert.Contains(t, updated.Aliases, "Jean Luc Brunel")

		updated, err = entitiesDbHandler.AddEntityAlias(nil, entity.ID, "jean luc brunel")
		require.NoError(t, err)
		assert.Len(t, updated.Aliases, 1, "Expected case variant to be deduplicated")

		updated, err = entitiesDbHandler.AddEntityAlias(nil, entity.ID, "jean-luc brunel")
		require.NoError(t, err)
		assert.Len(t, updated.Aliases, 1, "Expected alias equal to the name to be skipped")
	})

	t.Run("Set attributes fills only empty fields", func(t *testing.T) {
		entity := &model.Entity{Name: "Prince Andrew", Class: model.ClassPerson, Title: "Prince"}
		require.NoError(t, entitiesDbHandler.InsertEntity(entity))
		defer entitiesDbHandler.DeleteEntity(entity.ID)

		updated, err := entitiesDbHandler.SetEntityAttributes(nil, entity.ID, "Duke", "Royal")
		require.NoError(t, err)
		assert.Equal(t, "Prince", updated.Title, "Expected existing title to be kept")
		assert.Equal(t, "Royal", updated.RoleLabel, "Expected empty role to be filled")
	})

	t.Run("Rename keeps the old name as alias", func(t *testing.T) {
		entity := &model.Entity{Name: "Jeff Epstein", Class: model.ClassPerson}
		require.NoError(t, entitiesDbHandler.InsertEntity(entity))
		defer entitiesDbHandler.DeleteEntity(entity.ID)

		renamed, err := entitiesDbHandler.RenameEntity(nil, entity.ID, "Jeffrey Epstein")
		require.NoError(t, err)
		assert.Equal(t, "Jeffrey Epstein", renamed.Name)
		assert.Contains(t, renamed.Aliases, "Jeff Epstein")
	})

	t.Run("Update scores", func(t *testing.T) {
		entity := &model.Entity{Name: "Sarah Kellen", Class: model.ClassPerson}
		require.NoError(t, entitiesDbHandler.InsertEntity(entity))
		defer entitiesDbHandler.DeleteEntity(entity.ID)

		err := entitiesDbHandler.UpdateEntityScores(nil, entity.ID, model.TierHigh, 4)
		require.NoError(t, err)

		updated, err := entitiesDbHandler.SelectEntity(entity.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TierHigh, updated.RiskTier)
		assert.Equal(t, 4, updated.IntensityScore)
	})

	t.Run("Mutating a missing entity returns error", func(t *testing.T) {
		_, err := entitiesDbHandler.AddEntityAlias(nil, 999999, "Nobody")
		assert.Error(t, err)

		_, err = entitiesDbHandler.RenameEntity(nil, 999999, "Nobody")
		assert.Error(t, err)
	})
}

func TestEntitiesMerge(t *testing.T) {
	documentsDbHandler, entitiesDbHandler, mentionsDbHandler := initHandlers(t)

	doc1 := &model.Document{Title: "Deposition A", Source: "test"}
	doc2 := &model.Document{Title: "Deposition B", Source: "test"}
	require.NoError(t, documentsDbHandler.InsertDocument(doc1))
	require.NoError(t, documentsDbHandler.InsertDocument(doc2))
	defer documentsDbHandler.DeleteDocument(doc1.RID)
	defer documentsDbHandler.DeleteDocument(doc2.RID)

	target := &model.Entity{Name: "Jeffrey Epstein", Class: model.ClassPerson}
	source := &model.Entity{Name: "Jeff Epstein", Class: model.ClassPerson, Aliases: []string{"Mr. Epstein"}, RoleLabel: "Financier"}
	require.NoError(t, entitiesDbHandler.InsertEntity(target))
	require.NoError(t, entitiesDbHandler.InsertEntity(source))
	defer entitiesDbHandler.DeleteEntity(target.ID)

	// Target mentions doc1; source mentions doc1 (overlap) and doc2
	require.NoError(t, mentionsDbHandler.UpsertMention(nil, &model.Mention{EntityID: target.ID, DocumentID: doc1.ID, Count: 3, Snippet: "target snippet"}))
	require.NoError(t, mentionsDbHandler.UpsertMention(nil, &model.Mention{EntityID: source.ID, DocumentID: doc1.ID, Count: 2, Snippet: "source snippet"}))
	require.NoError(t, mentionsDbHandler.UpsertMention(nil, &model.Mention{EntityID: source.ID, DocumentID: doc2.ID, Count: 4, Snippet: "only source"}))

	t.Run("Merge re-points mentions and conserves counts", func(t *testing.T) {
		merged, err := entitiesDbHandler.MergeEntities(nil, source.ID, target.ID)
		require.NoError(t, err, "Expected MergeEntities to not return an error")

		assert.Equal(t, target.ID, merged.ID)
		assert.Equal(t, 9, merged.MentionCount, "Expected total mention count to be conserved")
		assert.Contains(t, merged.Aliases, "Jeff Epstein", "Expected source name to become an alias")
		assert.Contains(t, merged.Aliases, "Mr. Epstein", "Expected source aliases to be unioned")
		assert.Equal(t, "Financier", merged.RoleLabel, "Expected unset target attributes to be filled")

		// Overlapping document keeps one link with summed count and the
		// target snippet
		link, err := mentionsDbHandler.SelectMention(target.ID, doc1.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, link.Count)
		assert.Equal(t, "target snippet", link.Snippet)

		// Source-only document is re-pointed
		moved, err := mentionsDbHandler.SelectMention(target.ID, doc2.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, moved.Count)

		// Source record is gone
		_, err = entitiesDbHandler.SelectEntity(source.ID)
		assert.Error(t, err, "Expected source entity to be deleted")
	})

	t.Run("Merging an entity into itself returns error", func(t *testing.T) {
		_, err := entitiesDbHandler.MergeEntities(nil, target.ID, target.ID)
		assert.Error(t, err)
	})

	t.Run("Merging a missing entity returns error", func(t *testing.T) {
		_, err := entitiesDbHandler.MergeEntities(nil, 999999, target.ID)
		assert.Error(t, err)
	})
}
