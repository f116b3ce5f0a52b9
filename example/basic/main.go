package main

import (
	"context"
	"fmt"
	"log"

	"github.com/docarchive/entreg"
	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
)

const depositionExcerpt = `Deposition of Sarah Kellen, taken on behalf of the Plaintiff.

Q. Did you ever arrange travel for Jeffrey Epstein?
A. I scheduled flights for Mr. Epstein and occasionally for Ghislaine Maxwell.

Q. Were representatives of Bear Stearns present at any meeting?
A. I recall a meeting with two men from Bear Stearns in New York.

Q. Did Jeff Epstein introduce you to anyone else?
A. He introduced me to Alan Dershowitz at the Palm Beach house.`

const flightLogExcerpt = `Flight Log, Gulfstream II.

Passengers: Jeffrey Epstein, Ghislaine Maxwell, Bill Clinton.
Departure Teterboro, arrival Palm Beach International.
Additional passenger on return leg: Alan Dershowitz.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	bundle, err := gazetteer.Default()
	if err != nil {
		log.Fatalf("Failed to load gazetteer: %v", err)
	}

	registry, err := entreg.NewRegistry(dbConfig, bundle, model.DefaultScoringConfig())
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}
	defer registry.Close()

	// Ingest two documents
	docs := []*model.Document{
		{Title: "Kellen Deposition", Source: "basic_example"},
		{Title: "Flight Log", Source: "basic_example"},
	}
	texts := []string{depositionExcerpt, flightLogExcerpt}

	reports, err := registry.IngestBatch(docs, texts, 2)
	if err != nil {
		log.Fatalf("Failed to ingest documents: %v", err)
	}
	for i, report := range reports {
		fmt.Printf("Ingested %q: %d candidates, %d mention links, %d new entities\n",
			docs[i].Title, report.Extracted, report.Mentions, report.NewEntities)
	}

	// Collapse aliases ("Jeff Epstein" folds into "Jeffrey Epstein")
	consolidation, err := registry.Consolidate()
	if err != nil {
		log.Fatalf("Failed to consolidate: %v", err)
	}
	fmt.Printf("\nConsolidation: %d merges, %d renames in %d passes\n",
		consolidation.Merges, consolidation.Renames, consolidation.Passes)

	// Derive intensity scores and risk tiers from the mention distribution
	if err := registry.ScoreRegistry(); err != nil {
		log.Fatalf("Failed to score registry: %v", err)
	}

	entities, err := registry.TopEntities(10)
	if err != nil {
		log.Fatalf("Failed to list entities: %v", err)
	}

	fmt.Println("\nTop entities:")
	for _, entity := range entities {
		fmt.Printf("  %2d  %-6s  %-12s  %s\n",
			entity.MentionCount, entity.RiskTier, entity.Class, entity.Name)
	}

	// Pull the full profile of one entity, snippets included
	profile, err := registry.EntityProfile("Jeffrey Epstein", 10)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}
	fmt.Printf("\n%s appears in %d documents:\n", profile.Entity.Name, len(profile.Mentions))
	for _, mention := range profile.Mentions {
		doc := profile.Documents[mention.DocumentID]
		fmt.Printf("  %q (%d): %s\n", doc.Title, mention.Count, mention.Snippet)
	}
}
