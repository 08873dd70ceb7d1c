// Package lexigraph provides a hybrid graph-augmented retrieval engine for Go.
//
// Lexigraph retrieves ranked text passages from a property graph of legal
// document chunks. A composable funnel of lexical matching, embedding
// similarity, cross-encoder reranking, and multi-hop graph expansion fuses
// independently-failing signals into one stable, deduplicated ranking, and
// degrades gracefully when any signal source is unavailable.
//
// # Basic Usage
//
// Assemble an engine from explicit components:
//
//	// Graph store backed by Neo4j
//	graphStore, err := store.NewNeo4jStore("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Embedding provider (any OpenAI-compatible server)
//	embedder := embedding.NewOpenAIEmbedder("your-api-key", embedding.DefaultConfig(embedding.ProviderOpenAI))
//
//	engine, err := lexigraph.New(graphStore, embedder, nil, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close(ctx)
//
//	result, err := engine.Retrieve(ctx, retrieval.Request{
//		Query:     "thuế suất VAT dịch vụ giáo dục",
//		TopK:      10,
//		Namespace: "Statute",
//		Mode:      retrieval.ModeGraphHybrid,
//	})
//
// Or build everything from configuration, with lazily-loaded providers and
// a circuit breaker around the store:
//
//	cfg, err := config.Load()
//	engine, err := lexigraph.Open(cfg, logger)
//
// # Retrieval Modes
//
// Pipeline stages compose into a closed set of modes: lexical-only,
// embedding-only, hybrid-fusion, graph-exact, graph-embed, and
// graph-hybrid. Any mode may end with a cross-encoder rerank pass. See the
// pkg/retrieval package for stage semantics and degradation behavior.
//
// # Concurrency
//
// Engines are safe for concurrent use. Requests share no mutable state;
// model providers load once under single-flight guards and then act as
// stateless scoring functions.
package lexigraph
