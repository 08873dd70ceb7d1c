package crossencoder

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/lexigraph/lexigraph/pkg/embedding"
)

// EmbeddingRerankerClient implements cross-encoder functionality using
// embeddings. It computes cosine similarity between query and passage
// embeddings to generate relevance scores. While not a true cross-encoder
// (which processes query-document pairs together), it provides reasonable
// reranking using bi-encoder embeddings, and is a natural fit when an
// embedding provider is already configured for retrieval.
type EmbeddingRerankerClient struct {
	embedder embedding.Client
	config   Config
}

// NewEmbeddingRerankerClient creates a new embedding-based reranker client.
// The client does not own the embedder; Close leaves it open for other users.
func NewEmbeddingRerankerClient(embedderClient embedding.Client, config Config) *EmbeddingRerankerClient {
	return &EmbeddingRerankerClient{
		embedder: embedderClient,
		config:   config,
	}
}

// Rank ranks the given passages by cosine similarity to the query embedding.
// Scores are min-max normalized to the 0-1 range.
func (c *EmbeddingRerankerClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}
	if c.embedder == nil {
		return nil, fmt.Errorf("embedding client is nil")
	}

	queryEmbedding, err := c.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}

	passageEmbeddings, err := c.embedder.Embed(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to create passage embeddings: %w", err)
	}
	if len(passageEmbeddings) != len(passages) {
		return nil, fmt.Errorf("expected %d passage embeddings, got %d", len(passages), len(passageEmbeddings))
	}

	results := make([]RankedPassage, len(passages))
	for i, passage := range passages {
		results[i] = RankedPassage{
			Passage: passage,
			Score:   cosineSimilarity(queryEmbedding, passageEmbeddings[i]),
			Index:   i,
		}
	}

	// Normalize to 0-1; with no variance every passage scores 1.0.
	minScore, maxScore := results[0].Score, results[0].Score
	for _, result := range results[1:] {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}
	if maxScore > minScore {
		scoreRange := maxScore - minScore
		for i := range results {
			results[i].Score = (results[i].Score - minScore) / scoreRange
		}
	} else {
		for i := range results {
			results[i].Score = 1.0
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// Close cleans up any resources used by the client.
func (c *EmbeddingRerankerClient) Close() error {
	return nil
}

// cosineSimilarity calculates the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
