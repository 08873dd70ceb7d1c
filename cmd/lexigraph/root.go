package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/logger"
	"github.com/lexigraph/lexigraph/pkg/telemetry"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "lexigraph",
		Short: "Lexigraph: hybrid graph-augmented retrieval over legal text",
		Long: `Lexigraph retrieves ranked text passages from a property graph of legal
document chunks, fusing lexical matching, embedding similarity, graph
expansion, and cross-encoder reranking into one stable ranking.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is lexigraph.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig loads a .env if present and points viper at the config file.
func initConfig() {
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
}

// loadConfig reads the full configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildLogger assembles the process logger: colored console output, plus a
// parquet sink for warnings when telemetry is configured. The returned
// flush function drains the sink and is safe to call when telemetry is off.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler = logger.NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	flush := func() {}

	if cfg.Telemetry.ParquetPath != "" {
		ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing telemetry: %w", err)
		}
		handler = ph
		flush = func() {
			if err := ph.Flush(); err != nil {
				fmt.Fprintln(os.Stderr, "telemetry flush:", err)
			}
		}
	}

	return slog.New(handler), flush, nil
}
