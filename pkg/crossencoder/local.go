package crossencoder

import (
	"context"
	"math"
	"sort"
	"strings"
)

// LocalRerankerClient implements cross-encoder functionality using cosine
// similarity of term frequency vectors. It needs no model and no network,
// which makes it a reasonable fallback and a fast default for development.
type LocalRerankerClient struct {
	config Config
}

// NewLocalRerankerClient creates a new local similarity reranker client.
func NewLocalRerankerClient(config Config) *LocalRerankerClient {
	return &LocalRerankerClient{config: config}
}

// Rank ranks the given passages by term-frequency cosine similarity to the query.
func (c *LocalRerankerClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	queryVector := termFrequencies(query)

	ranked := make([]RankedPassage, len(passages))
	for i, passage := range passages {
		ranked[i] = RankedPassage{
			Passage: passage,
			Score:   termCosine(queryVector, termFrequencies(passage)),
			Index:   i,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Close cleans up any resources used by the client.
func (c *LocalRerankerClient) Close() error {
	return nil
}

// termFrequencies builds a term frequency vector from whitespace-separated,
// lowercased tokens.
func termFrequencies(text string) map[string]float64 {
	frequencies := make(map[string]float64)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]{}")
		if token != "" {
			frequencies[token]++
		}
	}
	return frequencies
}

func termCosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for term, weightA := range a {
		normA += weightA * weightA
		if weightB, ok := b[term]; ok {
			dotProduct += weightA * weightB
		}
	}
	for _, weightB := range b {
		normB += weightB * weightB
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
