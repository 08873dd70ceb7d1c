package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/retrieval"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Run retrieval from the shell",
	Long: `Run one retrieval request, or a batch of sample questions, and print
the results as JSON.

Examples:
  lexigraph retrieve --query "thuế suất VAT" --mode graph-hybrid --top-k 10
  lexigraph retrieve --query "thuế suất VAT" --compare
  lexigraph retrieve --questions questions.yaml --mode hybrid-fusion`,
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().String("query", "", "query text")
	retrieveCmd.Flags().String("questions", "", "YAML file of questions to run as a batch")
	retrieveCmd.Flags().String("mode", "", "retrieval mode")
	retrieveCmd.Flags().Int("top-k", 0, "maximum candidates to return")
	retrieveCmd.Flags().String("namespace", "", "graph namespace to query")
	retrieveCmd.Flags().Bool("rerank", false, "finish with a cross-encoder rerank pass")
	retrieveCmd.Flags().Bool("compare", false, "run every mode and print results side by side")

	retrieveCmd.Flags().String("store", "", "graph store driver (neo4j, memory)")
	retrieveCmd.Flags().String("db-uri", "", "graph database URI")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRetrieveFlags(cmd, cfg)

	query, _ := cmd.Flags().GetString("query")
	questionsPath, _ := cmd.Flags().GetString("questions")
	if query == "" && questionsPath == "" {
		return fmt.Errorf("either --query or --questions is required")
	}

	log, flushTelemetry, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer flushTelemetry()

	engine, err := lexigraph.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	ctx := context.Background()
	defer engine.Close(ctx)

	compare, _ := cmd.Flags().GetBool("compare")
	rerank, _ := cmd.Flags().GetBool("rerank")

	queries := []string{query}
	if questionsPath != "" {
		questions, err := config.LoadSampleQuestions(questionsPath)
		if err != nil {
			return err
		}
		queries = queries[:0]
		for _, q := range questions {
			queries = append(queries, q.Question)
		}
	}

	runID := uuid.NewString()
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	for _, q := range queries {
		if compare {
			results, err := engine.Compare(ctx, q, cfg.Retrieval.Namespace, cfg.Retrieval.DefaultTopK, nil)
			if err != nil {
				return err
			}
			if err := out.Encode(map[string]any{"run_id": runID, "query": q, "results": results}); err != nil {
				return err
			}
			continue
		}

		result, err := engine.Retrieve(ctx, retrieval.Request{
			Query:     q,
			TopK:      cfg.Retrieval.DefaultTopK,
			Namespace: cfg.Retrieval.Namespace,
			Mode:      retrieval.Mode(cfg.Retrieval.DefaultMode),
			Rerank:    rerank,
		})
		if err != nil {
			return err
		}
		if err := out.Encode(map[string]any{"run_id": runID, "query": q, "result": result}); err != nil {
			return err
		}
	}
	return nil
}

// applyRetrieveFlags overrides configuration with any flags the user set.
func applyRetrieveFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("mode") {
		cfg.Retrieval.DefaultMode, _ = flags.GetString("mode")
	}
	if flags.Changed("top-k") {
		cfg.Retrieval.DefaultTopK, _ = flags.GetInt("top-k")
	}
	if flags.Changed("namespace") {
		cfg.Retrieval.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("store") {
		cfg.Database.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("db-uri") {
		cfg.Database.URI, _ = flags.GetString("db-uri")
	}
}
