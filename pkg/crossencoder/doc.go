/*
Package crossencoder provides cross-encoder functionality for ranking passages
based on their relevance to a query.

# Overview

Cross-encoders are neural models used in information retrieval to compute
relevance scores between a query and candidate passages. Unlike bi-encoders
that encode queries and documents separately, cross-encoders process
query-document pairs together, often resulting in better ranking accuracy at
the cost of increased computational overhead.

# Implementations

This package provides several implementations:

## REST Reranker (RerankerClient)

Calls a Jina-compatible rerank endpoint (Jina AI, vLLM, LocalAI, TEI, and
others expose the same API shape). This is the preferred provider when a
dedicated reranking model is deployed.

	reranker := crossencoder.NewRerankerClient("api-key", crossencoder.Config{
		Model:   "BAAI/bge-reranker-v2-m3",
		BaseURL: "http://localhost:8000",
	})
	results, err := reranker.Rank(ctx, "search query", passages)

## OpenAI Reranker (OpenAIRerankerClient)

Uses a chat completion model to score all passages in one call. The model is
asked for a JSON array of relevance scores in [0, 1]; malformed output is
repaired before decoding.

	reranker := crossencoder.NewOpenAIRerankerClient("api-key", crossencoder.Config{
		Model: "gpt-4o-mini",
	})
	results, err := reranker.Rank(ctx, query, passages)

## RustBert Reranker (RustBertClient)

Runs an extractive question-answering model in-process via go-rust-bert and
uses the answer confidence as the relevance score. No network access needed
once the model is downloaded.

## Embedding Reranker (EmbeddingRerankerClient)

Scores passages by cosine similarity between query and passage embeddings.
Not a true cross-encoder, but a reasonable fallback when only an embedding
provider is available.

## EmbedEverything Reranker (EmbedEverythingClient)

Runs a dedicated cross-encoder model in-process via go-embedeverything.

## Local Reranker (LocalRerankerClient)

Cosine similarity of term frequency vectors. No model, no network; reasonable
results for basic text matching scenarios.

## Mock Reranker (MockRerankerClient)

Deterministic implementation for testing, scoring by word overlap.

# Factory Function

The NewClient function creates clients based on provider type:

	client, err := crossencoder.NewClient(crossencoder.ClientConfig{
		Provider: crossencoder.ProviderReranker,
		Config:   crossencoder.DefaultConfig(crossencoder.ProviderReranker),
		APIKey:   apiKey,
	})

# Usage in Retrieval

Cross-encoders are typically used as rerankers in multi-stage retrieval:

 1. Initial retrieval using fast methods (keyword match, vector similarity)
 2. Reranking top candidates using the cross-encoder for improved relevance

Every Rank result carries the passage's position in the input slice so
callers can map scores back onto richer candidate records.
*/
package crossencoder
