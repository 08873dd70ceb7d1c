// Package retrieval implements the hybrid graph-augmented retrieval pipeline.
//
// Given a query string, the Orchestrator produces a ranked, deduplicated set
// of text passages drawn from a property graph. Four independent signals are
// fused into one stable ranking:
//   - lexical matching: distinct query words contained in node text
//   - embedding similarity: cosine between query and node vectors
//   - graph topology: discounted scores for neighbors of strong seeds
//   - cross-encoder relevance: a pairwise (query, text) model
//
// # Modes
//
// The pipeline stages compose into a closed set of named modes:
//   - lexical-only: word-match seeds
//   - embedding-only: cosine ranking over a full namespace scan
//   - hybrid-fusion: word-match seeds, similarity annotation, weighted fusion
//   - graph-exact: word-match seeds expanded over graph relationships
//   - graph-embed: cosine-ranked seeds expanded over graph relationships
//   - graph-hybrid: word-match seeds, similarity rerank, graph expansion
//
// Any mode may optionally end with a cross-encoder rerank pass.
//
// # Usage
//
//	orch := retrieval.NewOrchestrator(graphStore, embedder, encoder, retrieval.DefaultConfig(), logger)
//
//	result, err := orch.Retrieve(ctx, retrieval.Request{
//	    Query:     "thuế suất VAT",
//	    TopK:      10,
//	    Namespace: "Statute",
//	    Mode:      retrieval.ModeGraphHybrid,
//	})
//
// # Degradation
//
// Every request is a stateless, read-only, one-shot pipeline execution.
// Optional signal sources fail soft: an unavailable embedding provider skips
// the similarity stage, an unavailable cross-encoder falls back to synthetic
// positional scores, and a failed graph expansion keeps the seed set. Each
// degradation appends a human-readable entry to the result's Warnings. Only
// invalid input and an unreachable graph store fail the request.
package retrieval
