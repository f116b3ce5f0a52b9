package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docarchive/entreg"
	"github.com/docarchive/entreg/gazetteer"
	"github.com/docarchive/entreg/helper"
	"github.com/docarchive/entreg/model"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var gazetteerPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "entreg",
		Short: "Entity registry over document archives",
		Long: `Entreg extracts person and organization mentions from plain-text
document archives and maintains a consolidated, risk-scored entity
registry in PostgreSQL.

Database connection is configured through DB_* environment variables
(a .env file in the working directory is picked up automatically).`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&gazetteerPath, "gazetteer", "", "Path to a custom gazetteer YAML bundle")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(consolidateCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(topCmd())
	rootCmd.AddCommand(tierCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openRegistry() (*entreg.Registry, error) {
	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	bundle, err := loadBundle()
	if err != nil {
		return nil, err
	}

	return entreg.NewRegistry(config, bundle, model.DefaultScoringConfig())
}

func loadBundle() (*gazetteer.Bundle, error) {
	if gazetteerPath != "" {
		bundle, err := gazetteer.LoadFile(gazetteerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load gazetteer %s: %w", gazetteerPath, err)
		}
		return bundle, nil
	}
	return gazetteer.Default()
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir-or-file>",
		Short: "Ingest plain-text documents into the registry",
		Long: `Ingest one .txt file or every .txt file below a directory.
Each file becomes one document; its base name becomes the document title.

Example:
  entreg ingest ./archive
  entreg ingest deposition-2016.txt --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")

			paths, err := collectTextFiles(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no .txt files found under %s", args[0])
			}

			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			docs := make([]*model.Document, 0, len(paths))
			texts := make([]string, 0, len(paths))
			for _, path := range paths {
				doc, err := model.NewDocumentFromFile(path, nil)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				texts = append(texts, doc.Content)
				doc.Content = ""
				docs = append(docs, doc)
			}

			reports, err := registry.IngestBatch(docs, texts, workers)
			if err != nil {
				return fmt.Errorf("ingestion failed: %w", err)
			}

			var mentions, newEntities, skipped int
			for _, report := range reports {
				if report == nil {
					continue
				}
				if report.Skipped {
					skipped++
					continue
				}
				mentions += report.Mentions
				newEntities += report.NewEntities
			}

			fmt.Printf("Ingested %s documents (%d skipped)\n", color.GreenString("%d", len(reports)-skipped), skipped)
			fmt.Printf("  new entities:  %d\n", newEntities)
			fmt.Printf("  mention links: %d\n", mentions)
			return nil
		},
	}

	cmd.Flags().Int("workers", 4, "Parallel extraction workers")
	return cmd
}

func consolidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate",
		Short: "Merge duplicate and aliased entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			report, err := registry.Consolidate()
			if err != nil {
				return fmt.Errorf("consolidation failed: %w", err)
			}

			fmt.Printf("Consolidated in %d passes: %d merges, %d renames\n",
				report.Passes, report.Merges, report.Renames)
			for _, flag := range report.Flagged {
				fmt.Printf("  %s %q (entity %d, %s) needs manual review\n",
					color.YellowString("flagged:"), flag.Name, flag.EntityID, flag.Reason)
			}
			return nil
		},
	}
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Recompute intensity scores and risk tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			if err := registry.ScoreRegistry(); err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}

			fmt.Println("Registry scored")
			return nil
		},
	}
}

func topCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List entities by mention count",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			entities, err := registry.TopEntities(limit)
			if err != nil {
				return err
			}

			printEntities(entities)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 25, "Maximum entities to list")
	return cmd
}

func tierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tier <low|medium|high>",
		Short: "List entities in a risk tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			tier := model.RiskTier(strings.ToUpper(args[0]))
			switch tier {
			case model.TierLow, model.TierMedium, model.TierHigh:
			default:
				return fmt.Errorf("unknown tier %q, expected low, medium or high", args[0])
			}

			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			entities, err := registry.EntitiesByTier(tier, limit)
			if err != nil {
				return err
			}

			printEntities(entities)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 25, "Maximum entities to list")
	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search entities by name or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			classFlag, _ := cmd.Flags().GetString("class")

			var class *model.EntityClass
			if classFlag != "" {
				c := model.EntityClass(strings.ToUpper(classFlag))
				switch c {
				case model.ClassPerson, model.ClassOrganization:
					class = &c
				default:
					return fmt.Errorf("unknown class %q, expected person or organization", classFlag)
				}
			}

			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			entities, err := registry.SearchEntities(args[0], class, limit)
			if err != nil {
				return err
			}

			printEntities(entities)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 25, "Maximum entities to list")
	cmd.Flags().StringP("class", "c", "", "Restrict to one class (person or organization)")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show an entity profile with mention snippets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			registry, err := openRegistry()
			if err != nil {
				return err
			}
			defer registry.Close()

			profile, err := registry.EntityProfile(args[0], limit)
			if err != nil {
				return fmt.Errorf("entity %q not found: %w", args[0], err)
			}

			entity := profile.Entity
			fmt.Printf("%s (%s)\n", color.CyanString(entity.Name), entity.Class)
			if entity.Title != "" || entity.RoleLabel != "" {
				fmt.Printf("  %s %s\n", entity.Title, entity.RoleLabel)
			}
			if len(entity.Aliases) > 0 {
				fmt.Printf("  aliases: %s\n", strings.Join(entity.Aliases, ", "))
			}
			fmt.Printf("  mentions: %d across %d documents, tier %s, intensity %d\n",
				entity.MentionCount, len(profile.Mentions), tierString(entity.RiskTier), entity.IntensityScore)

			for _, m := range profile.Mentions {
				title := fmt.Sprintf("document %d", m.DocumentID)
				if doc, ok := profile.Documents[m.DocumentID]; ok {
					title = doc.Title
				}
				fmt.Printf("\n  %s (%d)\n", color.New(color.Bold).Sprint(title), m.Count)
				if m.Snippet != "" {
					fmt.Printf("    %s\n", m.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum mention links to show")
	return cmd
}

func printEntities(entities []*model.Entity) {
	if len(entities) == 0 {
		fmt.Println("No entities found")
		return
	}

	for _, entity := range entities {
		fmt.Printf("%6d  %-6s  %-12s  %s\n",
			entity.MentionCount, tierString(entity.RiskTier), entity.Class, entity.Name)
	}
}

func tierString(tier model.RiskTier) string {
	switch tier {
	case model.TierHigh:
		return color.RedString(string(tier))
	case model.TierMedium:
		return color.YellowString(string(tier))
	default:
		return string(tier)
	}
}

func collectTextFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return paths, nil
}
