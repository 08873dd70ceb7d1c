package crossencoder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/soundprediction/go-rust-bert/pkg/rustbert"
)

// RustBertClient implements cross-encoder functionality using an in-process
// extractive question-answering model. The confidence of the best answer span
// found in a passage serves as the passage's relevance score; passages the
// model cannot answer from score 0.
type RustBertClient struct {
	config  Config
	mu      sync.Mutex
	qaModel *rustbert.QAModel
}

// NewRustBertClient creates a new RustBert-based reranker client. The model
// is loaded on first use, not at construction.
func NewRustBertClient(config Config) *RustBertClient {
	return &RustBertClient{config: config}
}

func (c *RustBertClient) loadModel() error {
	if c.qaModel != nil {
		return nil
	}

	m, err := rustbert.NewQAModel()
	if err != nil {
		return fmt.Errorf("failed to create QA model: %w", err)
	}
	c.qaModel = m
	return nil
}

// Rank ranks the given passages based on their relevance to the query.
// Predictions run sequentially; the underlying model is not safe for
// concurrent use.
func (c *RustBertClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadModel(); err != nil {
		return nil, err
	}

	ranked := make([]RankedPassage, len(passages))
	for i, passage := range passages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// go-rust-bert does not support context yet
		answers, err := c.qaModel.Predict(query, passage)
		if err != nil {
			return nil, fmt.Errorf("QA prediction failed for passage %d: %w", i, err)
		}

		var score float64
		for _, answer := range answers {
			if answer.Score > score {
				score = answer.Score
			}
		}
		ranked[i] = RankedPassage{
			Passage: passage,
			Score:   score,
			Index:   i,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Close releases the loaded model.
func (c *RustBertClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.qaModel != nil {
		c.qaModel.Close()
		c.qaModel = nil
	}
	return nil
}
