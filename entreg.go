package entreg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/docarchive/entreg/core/browse"
	"github.com/docarchive/entreg/core/canonical"
	"github.com/docarchive/entreg/core/mention"
	"github.com/docarchive/entreg/core/pipeline"
	"github.com/docarchive/entreg/core/scoring"
	"github.com/docarchive/entreg/database"
	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
	loadSql "github.com/docarchive/entreg/sql"
	"github.com/google/uuid"
)

// maxConsolidationPasses bounds the fixed-point loop; real corpora converge
// in two or three passes
const maxConsolidationPasses = 10

// Registry provides a unified interface to the full extraction, registry
// and scoring stack
type Registry struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Entities  *database.EntitiesDBHandler
	Mentions  *database.MentionsDBHandler
	Pipeline  *pipeline.Pipeline
	Resolver  *canonical.Resolver
	Browse    *browse.Engine
	Bundle    *gazetteer.Bundle
	Scoring   model.ScoringConfig
	// Serializes all registry writes so parallel ingestion cannot create
	// the same entity twice
	writeMu sync.Mutex
	// Logging
	log *slog.Logger
}

// IngestReport summarizes one document's trip through the pipeline
type IngestReport struct {
	DocumentRID uuid.UUID
	Skipped     bool
	Extracted   int
	RejectedBy  map[string]int
	Unclassed   int
	NewEntities int
	Mentions    int
	// Surfaces that matched more than one registered entity; the mention
	// was attached to the deterministic canonical pick
	Ambiguous []string
}

// ConsolidateReport summarizes a whole-corpus consolidation run
type ConsolidateReport struct {
	Passes  int
	Merges  int
	Renames int
	Flagged []canonical.Flag
}

// NewRegistry creates a new Registry instance with all handlers initialized
func NewRegistry(config *helper.DatabaseConfiguration, bundle *gazetteer.Bundle, scoringConfig model.ScoringConfig) (*Registry, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	if err := scoringConfig.Validate(); err != nil {
		return nil, helper.NewError("validate scoring configuration", err)
	}

	// Initialize database
	db := helper.NewDatabase("entreg", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (mentions reference both
	// documents and entities). force=false to not reload if functions
	// already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	mentions, err := database.NewMentionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create mentions handler", err)
	}

	return &Registry{
		DB:        db,
		Documents: documents,
		Entities:  entities,
		Mentions:  mentions,
		Pipeline:  pipeline.NewPipeline(bundle),
		Resolver:  canonical.NewResolver(bundle),
		Browse:    browse.NewEngine(documents, entities, mentions),
		Bundle:    bundle,
		Scoring:   scoringConfig,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (r *Registry) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}

// IngestDocument registers a document, extracts entity candidates from its
// text and records mention links. Undecodable text is skipped with a warning,
// not treated as failure. Extraction runs lock-free; the write phase is
// serialized, so IngestDocument is safe to call from multiple goroutines.
func (r *Registry) IngestDocument(doc *model.Document, text string) (*IngestReport, error) {
	if text == "" {
		return nil, helper.NewError("ingest document", fmt.Errorf("document text is empty"))
	}

	result, err := r.Pipeline.Process(text, doc.RID)
	if errors.Is(err, pipeline.ErrMalformedText) {
		r.log.Warn("Skipping undecodable document", slog.String("title", doc.Title))
		return &IngestReport{Skipped: true}, nil
	}
	if err != nil {
		return nil, helper.NewError("process document text", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.Documents.InsertDocument(doc); err != nil {
		return nil, helper.NewError("insert document", err)
	}

	report := &IngestReport{
		DocumentRID: doc.RID,
		Extracted:   result.Extracted,
		RejectedBy:  result.RejectedBy,
		Unclassed:   result.Unclassed,
	}

	// Resolve each classified candidate to a registered entity, then write
	// one mention link per entity with counts over all its surface forms
	attached := map[int64]*model.Entity{}
	for _, candidate := range result.Candidates {
		entity, created, ambiguous, err := r.resolveCandidate(candidate.Candidate.Text, candidate.Class)
		if err != nil {
			return nil, helper.NewError("resolve candidate", err)
		}
		if created {
			report.NewEntities++
		}
		if ambiguous {
			report.Ambiguous = append(report.Ambiguous, candidate.Candidate.Text)
		}
		attached[entity.ID] = entity
	}

	for _, entity := range attached {
		count := mention.CountOccurrences(text, entity.SurfaceForms())
		if count == 0 {
			continue
		}
		link := &model.Mention{
			EntityID:   entity.ID,
			DocumentID: doc.ID,
			Count:      count,
			Snippet:    mention.Snippet(text, entity.SurfaceForms(), mention.DefaultWindow),
		}
		if err := r.Mentions.UpsertMention(nil, link); err != nil {
			return nil, helper.NewError("upsert mention", err)
		}
		report.Mentions++
	}

	if err := r.Mentions.RecountAllEntityMentions(nil); err != nil {
		return nil, helper.NewError("recount entity mentions", err)
	}

	r.log.Info("Ingested document",
		slog.String("document_id", doc.RID.String()),
		slog.String("title", doc.Title),
		slog.Int("extracted", report.Extracted),
		slog.Int("mentions", report.Mentions),
		slog.Int("new_entities", report.NewEntities))

	return report, nil
}

// resolveCandidate maps a classified surface form to its registered entity,
// creating it when no existing entity carries the surface.
// Must be called with writeMu held.
func (r *Registry) resolveCandidate(surface string, class model.EntityClass) (entity *model.Entity, created bool, ambiguous bool, err error) {
	name := surface
	if canonicalName, known := r.Resolver.Resolve(surface); known {
		name = canonicalName
	}

	matches, err := r.Entities.SelectEntitiesBySurface(name)
	if err != nil {
		return nil, false, false, err
	}

	switch len(matches) {
	case 0:
		entity = &model.Entity{
			Name:  name,
			Class: class,
		}
		entity.Title, entity.RoleLabel = r.Resolver.KnownAttributes(name)
		if known, ok := r.Bundle.KnownEntity(name); ok {
			entity.Aliases = append(entity.Aliases, known.Aliases...)
		}
		if err := r.Entities.InsertEntity(entity); err != nil {
			return nil, false, false, err
		}
		created = true
	case 1:
		entity = matches[0]
	default:
		// Deterministic pick; consolidation flags the collision for review
		entity = canonical.SelectCanonical(matches)
		ambiguous = true
		r.log.Warn("Surface matches multiple entities",
			slog.String("surface", surface),
			slog.String("attached_to", entity.Name))
	}

	// A curated alias seen in the wild is recorded on its canonical entity
	if !entity.HasSurfaceForm(surface) {
		entity, err = r.Entities.AddEntityAlias(nil, entity.ID, surface)
		if err != nil {
			return nil, false, false, err
		}
	}

	return entity, created, ambiguous, nil
}

// IngestBatch ingests many documents with parallel candidate extraction.
// texts[i] is the raw text of docs[i]. Skipped documents are counted, not
// returned as errors; the first hard error aborts the batch.
func (r *Registry) IngestBatch(docs []*model.Document, texts []string, workers int) ([]*IngestReport, error) {
	if len(docs) != len(texts) {
		return nil, helper.NewError("ingest batch", fmt.Errorf("got %d documents but %d texts", len(docs), len(texts)))
	}
	if workers < 1 {
		workers = 1
	}

	reports := make([]*IngestReport, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], errs[i] = r.IngestDocument(docs[i], texts[i])
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return reports, helper.NewError(fmt.Sprintf("ingest document %d", i), err)
		}
	}

	return reports, nil
}

// Consolidate runs alias consolidation over the whole registry until no
// further merges apply. Every pass runs in one transaction; ambiguous
// surfaces are flagged in the report and never merged automatically.
func (r *Registry) Consolidate() (*ConsolidateReport, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	report := &ConsolidateReport{}

	for report.Passes < maxConsolidationPasses {
		entities, err := r.Entities.SelectAllEntities()
		if err != nil {
			return nil, helper.NewError("select all entities", err)
		}

		plan := r.Resolver.PlanConsolidation(entities)
		if plan.Empty() {
			// Flags describe the settled registry, so only the final
			// pass's are reported
			report.Flagged = plan.Flagged
			break
		}
		report.Passes++

		tx, err := r.DB.Instance.Begin()
		if err != nil {
			return nil, helper.NewError("begin transaction", err)
		}

		err = r.applyPlan(tx, plan, report)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, helper.NewError("commit consolidation", err)
		}
	}

	if err := r.Mentions.RecountAllEntityMentions(nil); err != nil {
		return nil, helper.NewError("recount entity mentions", err)
	}

	r.log.Info("Consolidated registry",
		slog.Int("passes", report.Passes),
		slog.Int("merges", report.Merges),
		slog.Int("renames", report.Renames),
		slog.Int("flagged", len(report.Flagged)))

	return report, nil
}

func (r *Registry) applyPlan(tx database.Querier, plan *canonical.Plan, report *ConsolidateReport) error {
	for _, m := range plan.Merges {
		if _, err := r.Entities.MergeEntities(tx, m.SourceID, m.TargetID); err != nil {
			return helper.NewError(fmt.Sprintf("merge entity %d into %d (%s)", m.SourceID, m.TargetID, m.Reason), err)
		}
		report.Merges++
	}

	for _, rn := range plan.Renames {
		if _, err := r.Entities.RenameEntity(tx, rn.EntityID, rn.NewName); err != nil {
			return helper.NewError(fmt.Sprintf("rename entity %d", rn.EntityID), err)
		}
		report.Renames++
	}

	return nil
}

// ScoreRegistry recomputes intensity scores and risk tiers for every entity
// from current mention counts, in one transaction
func (r *Registry) ScoreRegistry() error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.DB.Instance.Begin()
	if err != nil {
		return helper.NewError("begin transaction", err)
	}

	counts, err := r.Mentions.MentionCounts(tx)
	if err != nil {
		tx.Rollback()
		return helper.NewError("collect mention counts", err)
	}

	scores, err := scoring.Score(counts, r.Scoring)
	if err != nil {
		tx.Rollback()
		return helper.NewError("score entities", err)
	}

	for _, s := range scores {
		if err := r.Entities.UpdateEntityScores(tx, s.EntityID, s.RiskTier, s.IntensityScore); err != nil {
			tx.Rollback()
			return helper.NewError(fmt.Sprintf("update scores for entity %d", s.EntityID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit scores", err)
	}

	r.log.Info("Scored registry", slog.Int("entities", len(scores)))

	return nil
}

// TopEntities returns entities ordered by mention count, highest first
func (r *Registry) TopEntities(limit int) ([]*model.Entity, error) {
	return r.Browse.TopEntities(limit)
}

// EntitiesByTier returns entities in a risk tier, highest mention count first
func (r *Registry) EntitiesByTier(tier model.RiskTier, limit int) ([]*model.Entity, error) {
	return r.Browse.EntitiesByTier(tier, limit)
}

// SearchEntities searches entities by name or alias pattern
func (r *Registry) SearchEntities(searchTerm string, class *model.EntityClass, limit int) ([]*model.Entity, error) {
	return r.Browse.SearchEntities(searchTerm, class, limit)
}

// EntityProfile assembles an entity with its mention links and documents
func (r *Registry) EntityProfile(name string, mentionLimit int) (*browse.Profile, error) {
	return r.Browse.EntityProfile(name, mentionLimit)
}
