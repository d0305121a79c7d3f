package chronicle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchgraph/chronicle/pkg/config"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed <graph-file.yaml>",
	Short: "Load records and relationships from a YAML file into the store",
	Long: `Seed reads a YAML graph file and writes its records and relationships
into the configured store. The file format is:

  records:
    - id: show-1
      title: First Season
      mediaType: series
      premiereDate: 2001-04-03
      episodeCount: 26
  relations:
    - sourceId: show-1
      targetId: show-2
      relationshipType: sequel`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("store-driver", "neo4j", "Relationship store driver (memory, neo4j)")
	seedCmd.Flags().String("store-uri", "", "Store URI (neo4j)")
	seedCmd.Flags().String("store-username", "", "Store username (neo4j)")
	seedCmd.Flags().String("store-password", "", "Store password (neo4j)")
	seedCmd.Flags().String("store-database", "", "Store database name (neo4j)")
}

// graphFile is the YAML seed format.
type graphFile struct {
	Records   []graphRecord   `yaml:"records"`
	Relations []graphRelation `yaml:"relations"`
}

type graphRecord struct {
	ID            string     `yaml:"id"`
	Title         string     `yaml:"title"`
	TitleEnglish  string     `yaml:"titleEnglish"`
	TitleJapanese string     `yaml:"titleJapanese"`
	MediaType     string     `yaml:"mediaType"`
	PremiereDate  *time.Time `yaml:"premiereDate"`
	EpisodeCount  *int       `yaml:"episodeCount"`
	Status        string     `yaml:"status"`
	Source        string     `yaml:"source"`
	Studio        string     `yaml:"studio"`
	Genres        []string   `yaml:"genres"`
}

type graphRelation struct {
	SourceID string `yaml:"sourceId"`
	TargetID string `yaml:"targetId"`
	Type     string `yaml:"relationshipType"`
}

// loadGraphFile parses a YAML seed file.
func loadGraphFile(path string) (*graphFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var g graphFile
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}
	return &g, nil
}

// apply writes the parsed graph into a writable store. Records are
// written before relations so edges never reference identifiers the
// store has not seen.
func (g *graphFile) apply(ctx context.Context, w store.RecordWriter) error {
	now := time.Now().UTC()

	for i, gr := range g.Records {
		mediaType := types.MediaType(gr.MediaType)
		if gr.MediaType == "" {
			mediaType = types.MediaTypeUnknown
		}
		rec := &types.Record{
			ID:            gr.ID,
			Title:         gr.Title,
			TitleEnglish:  gr.TitleEnglish,
			TitleJapanese: gr.TitleJapanese,
			MediaType:     mediaType,
			PremiereDate:  gr.PremiereDate,
			EpisodeCount:  gr.EpisodeCount,
			Status:        gr.Status,
			Source:        gr.Source,
			Studio:        gr.Studio,
			Genres:        gr.Genres,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := w.PutRecord(ctx, rec); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, gr.ID, err)
		}
	}

	for i, rel := range g.Relations {
		edge := types.RelationshipEdge{
			SourceID:  rel.SourceID,
			TargetID:  rel.TargetID,
			Type:      types.RelationType(rel.Type),
			CreatedAt: now,
		}
		if err := w.PutRelationship(ctx, edge); err != nil {
			return fmt.Errorf("relation %d (%s -> %s): %w", i, rel.SourceID, rel.TargetID, err)
		}
	}

	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideStoreFlags(cmd, cfg)

	log, _, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	g, err := loadGraphFile(args[0])
	if err != nil {
		return err
	}

	st, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer closeStore(ctx)

	writer, ok := st.(store.RecordWriter)
	if !ok {
		return fmt.Errorf("store driver %s is read-only", cfg.Store.Driver)
	}

	if err := g.apply(ctx, writer); err != nil {
		return err
	}

	log.Info("graph seeded", "records", len(g.Records), "relations", len(g.Relations), "driver", cfg.Store.Driver)
	return nil
}

// overrideStoreFlags applies shared store flags onto the configuration.
func overrideStoreFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("store-driver") {
		cfg.Store.Driver, _ = cmd.Flags().GetString("store-driver")
	}
	if cmd.Flags().Changed("store-uri") {
		cfg.Store.URI, _ = cmd.Flags().GetString("store-uri")
	}
	if cmd.Flags().Changed("store-username") {
		cfg.Store.Username, _ = cmd.Flags().GetString("store-username")
	}
	if cmd.Flags().Changed("store-password") {
		cfg.Store.Password, _ = cmd.Flags().GetString("store-password")
	}
	if cmd.Flags().Changed("store-database") {
		cfg.Store.Database, _ = cmd.Flags().GetString("store-database")
	}
}
