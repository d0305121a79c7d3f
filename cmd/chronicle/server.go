package chronicle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchgraph/chronicle/pkg/cache"
	"github.com/watchgraph/chronicle/pkg/config"
	"github.com/watchgraph/chronicle/pkg/server"
	"github.com/watchgraph/chronicle/pkg/server/handlers"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the chronicle HTTP server",
	Long: `Start the chronicle HTTP server to provide REST API access to timelines.

The server provides endpoints for:
- Generating watch-order timelines for a record
- Listing related records and detected relationship cycles
- Ingesting records and relationships
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	serverCmd.Flags().String("store-driver", "memory", "Relationship store driver (memory, neo4j)")
	serverCmd.Flags().String("store-uri", "", "Store URI (neo4j)")
	serverCmd.Flags().String("store-username", "", "Store username (neo4j)")
	serverCmd.Flags().String("store-password", "", "Store password (neo4j)")
	serverCmd.Flags().String("store-database", "", "Store database name (neo4j)")

	serverCmd.Flags().Bool("cache-enabled", false, "Enable the badger timeline cache")
	serverCmd.Flags().String("cache-path", "", "Badger cache directory")

	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, parquetHandler, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	if parquetHandler != nil {
		defer parquetHandler.Flush()
	}

	st, closeStore, err := buildStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	client, err := buildClient(cfg, st, log)
	if err != nil {
		return fmt.Errorf("failed to create chronicle client: %w", err)
	}

	var timelines handlers.TimelineService
	if cfg.Cache.Enabled {
		timelineCache, err := cache.Open(cache.Config{
			Path:    cfg.Cache.Path,
			TTL:     cfg.Cache.TTL,
			Version: cfg.Cache.Version,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to open timeline cache: %w", err)
		}
		defer timelineCache.Close()
		timelines = cache.NewService(client, timelineCache, log)
	}

	srv := server.New(cfg, client, timelines)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

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

	if cmd.Flags().Changed("cache-enabled") {
		cfg.Cache.Enabled, _ = cmd.Flags().GetBool("cache-enabled")
	}
	if cmd.Flags().Changed("cache-path") {
		cfg.Cache.Path, _ = cmd.Flags().GetString("cache-path")
	}

	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Store.Driver == "neo4j" && cfg.Store.URI == "" {
		return fmt.Errorf("store URI is required for the neo4j driver")
	}
	if cfg.Cache.Enabled && cfg.Cache.Path == "" {
		return fmt.Errorf("cache path is required when the cache is enabled")
	}
	return nil
}
