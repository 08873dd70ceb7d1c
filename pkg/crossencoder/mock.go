package crossencoder

import (
	"context"
	"hash/fnv"
	"sort"
)

// MockRerankerClient provides a deterministic implementation for testing.
// Passages are scored by word overlap with the query, with a small
// content-hash component so equal-overlap passages still order consistently.
type MockRerankerClient struct {
	config Config
}

// NewMockRerankerClient creates a new mock reranker client.
func NewMockRerankerClient(config Config) *MockRerankerClient {
	return &MockRerankerClient{config: config}
}

// Rank ranks the given passages with deterministic heuristic scores.
func (c *MockRerankerClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	queryTerms := termFrequencies(query)

	ranked := make([]RankedPassage, len(passages))
	for i, passage := range passages {
		overlap := 0.0
		if len(queryTerms) > 0 {
			passageTerms := termFrequencies(passage)
			for term := range queryTerms {
				if _, ok := passageTerms[term]; ok {
					overlap++
				}
			}
			overlap /= float64(len(queryTerms))
		}

		h := fnv.New32a()
		h.Write([]byte(passage))
		jitter := float64(h.Sum32()%1000) / 1e6

		ranked[i] = RankedPassage{
			Passage: passage,
			Score:   overlap + jitter,
			Index:   i,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Close cleans up any resources used by the client.
func (c *MockRerankerClient) Close() error {
	return nil
}
