package crossencoder

import (
	"context"
	"fmt"
	"sort"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// EmbedEverythingClient implements the Client interface using a cross-encoder
// model run in-process by go-embedeverything.
type EmbedEverythingClient struct {
	reranker *embedder.Reranker
	config   Config
}

// NewEmbedEverythingClient creates a new EmbedEverything reranker client.
// The model is downloaded and loaded at construction; wrap with NewLazyClient
// to defer that cost.
func NewEmbedEverythingClient(config Config) (*EmbedEverythingClient, error) {
	if config.Model == "" {
		config.Model = "BAAI/bge-reranker-base"
	}

	reranker, err := embedder.NewReranker(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create reranker: %w", err)
	}

	return &EmbedEverythingClient{
		reranker: reranker,
		config:   config,
	}, nil
}

// Rank ranks the given passages based on their relevance to the query.
func (e *EmbedEverythingClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	// go-embedeverything does not support context yet
	results, err := e.reranker.Rerank(query, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to rerank passages: %w", err)
	}

	// The library returns the input texts permuted; recover each one's input
	// position, claiming duplicates in order.
	claimed := make([]bool, len(passages))
	indexOf := func(text string) int {
		for i, passage := range passages {
			if !claimed[i] && passage == text {
				claimed[i] = true
				return i
			}
		}
		return -1
	}

	ranked := make([]RankedPassage, 0, len(results))
	for _, result := range results {
		idx := indexOf(result.Text)
		if idx < 0 {
			return nil, fmt.Errorf("reranker returned unknown passage %q", result.Text)
		}
		ranked = append(ranked, RankedPassage{
			Passage: result.Text,
			Score:   float64(result.Score),
			Index:   idx,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Close cleans up any resources.
func (e *EmbedEverythingClient) Close() error {
	e.reranker.Close()
	return nil
}
