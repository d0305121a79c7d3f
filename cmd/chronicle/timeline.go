package chronicle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchgraph/chronicle/pkg/config"
	"github.com/watchgraph/chronicle/pkg/store"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <record-id>",
	Short: "Generate a watch-order timeline for a record",
	Long: `Generate a chronologically ordered timeline of everything reachable
from the given record and print it as JSON.

With --graph-file the graph is loaded from a YAML seed file into an
in-memory store; otherwise the configured store is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

var (
	graphFilePath string
	showCycles    bool
)

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringVar(&graphFilePath, "graph-file", "", "YAML graph file to load into an in-memory store")
	timelineCmd.Flags().BoolVar(&showCycles, "cycles", false, "Print detected relationship cycles instead of the timeline")

	timelineCmd.Flags().String("store-driver", "memory", "Relationship store driver (memory, neo4j)")
	timelineCmd.Flags().String("store-uri", "", "Store URI (neo4j)")
	timelineCmd.Flags().String("store-username", "", "Store username (neo4j)")
	timelineCmd.Flags().String("store-password", "", "Store password (neo4j)")
	timelineCmd.Flags().String("store-database", "", "Store database name (neo4j)")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	rootID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideStoreFlags(cmd, cfg)

	log, _, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var st store.RelationshipStore
	if graphFilePath != "" {
		g, err := loadGraphFile(graphFilePath)
		if err != nil {
			return err
		}
		memStore := store.NewMemoryStore()
		if err := g.apply(ctx, memStore); err != nil {
			return err
		}
		st = memStore
	} else {
		built, closeStore, err := buildStore(cfg, log)
		if err != nil {
			return err
		}
		defer closeStore(ctx)
		st = built
	}

	client, err := buildClient(cfg, st, log)
	if err != nil {
		return fmt.Errorf("failed to create chronicle client: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if showCycles {
		result, err := client.PerformGraphTraversal(ctx, rootID)
		if err != nil {
			return err
		}
		return enc.Encode(client.DetectCycles(result))
	}

	timeline, err := client.GenerateTimeline(ctx, rootID)
	if err != nil {
		return err
	}
	return enc.Encode(timeline)
}
