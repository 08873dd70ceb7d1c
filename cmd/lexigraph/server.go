package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/server"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the retrieval HTTP server",
	Long: `Start the HTTP server exposing the retrieval engine.

Endpoints:
  POST /api/v1/retrieve           run one retrieval request
  POST /api/v1/retrieve/compare   run one query through several modes
  GET  /api/v1/modes              list the retrieval modes
  GET  /api/v1/questions/samples  sample questions for query UIs
  GET  /health                    liveness plus graph store reachability`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "", "server host")
	serverCmd.Flags().Int("port", 0, "server port")
	serverCmd.Flags().String("mode", "", "gin mode (debug, release, test)")

	serverCmd.Flags().String("store", "", "graph store driver (neo4j, memory)")
	serverCmd.Flags().String("db-uri", "", "graph database URI")
	serverCmd.Flags().String("db-username", "", "graph database username")
	serverCmd.Flags().String("db-password", "", "graph database password")
	serverCmd.Flags().String("db-database", "", "graph database name")

	serverCmd.Flags().String("embedding-provider", "", "embedding provider (openai, local)")
	serverCmd.Flags().String("crossencoder-provider", "", "cross-encoder provider (reranker, llm, rustbert)")
	serverCmd.Flags().String("telemetry-parquet-path", "", "directory for warning/error parquet records")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServerFlags(cmd, cfg)

	log, flushTelemetry, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer flushTelemetry()

	engine, err := lexigraph.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}

	srv := server.New(cfg, engine, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		engine.Close(context.Background())
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := engine.Close(ctx); err != nil {
			log.Warn("engine close", "error", err)
		}
		log.Info("server stopped")
		return nil
	}
}

// applyServerFlags overrides configuration with any flags the user set.
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mode") {
		cfg.Server.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("store") {
		cfg.Database.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("db-uri") {
		cfg.Database.URI, _ = flags.GetString("db-uri")
	}
	if flags.Changed("db-username") {
		cfg.Database.Username, _ = flags.GetString("db-username")
	}
	if flags.Changed("db-password") {
		cfg.Database.Password, _ = flags.GetString("db-password")
	}
	if flags.Changed("db-database") {
		cfg.Database.Database, _ = flags.GetString("db-database")
	}
	if flags.Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = flags.GetString("embedding-provider")
	}
	if flags.Changed("crossencoder-provider") {
		cfg.CrossEncoder.Provider, _ = flags.GetString("crossencoder-provider")
	}
	if flags.Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
	}
}
