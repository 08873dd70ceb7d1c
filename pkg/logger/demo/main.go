package main

import (
	"log/slog"

	"github.com/lexigraph/lexigraph/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Lexigraph Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Retrieved candidates from graph - green!")
	log.Info("Graph expanded around seeds - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Retrieval milestones are highlighted in green:")
	log.Info("Retrieved seed chunks", "count", 20, "namespace", "Statute")
	log.Info("Graph expanded from seeds", "neighbors", 12, "duration", "120ms")
	log.Info("Connected to graph store", "uri", "bolt://localhost:7687")
	log.Info("Retrieval complete", "mode", "graph-hybrid", "candidates", 5)

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
