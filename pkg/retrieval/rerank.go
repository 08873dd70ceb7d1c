package retrieval

import (
	"context"

	"github.com/lexigraph/lexigraph/pkg/crossencoder"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// RerankCandidates rescores every candidate with a cross-encoder, orders
// them by the model's relevance, writes the scores into the hybrid slot,
// and keeps the top topN. Reranking narrows the set.
//
// When the encoder is missing or fails, the leading topN candidates come
// back in their incoming order with positional scores 1.0, 0.9, 0.8, ... so
// the result stays fully scored and shaped like a real scoring run. The
// triggering error is returned alongside the fallback so the caller can
// surface a warning; the slice is usable either way.
func RerankCandidates(ctx context.Context, encoder crossencoder.Client, query string, candidates []types.Candidate, topN int) ([]types.Candidate, error) {
	if topN <= 0 {
		topN = DefaultRerankTopN
	}
	if len(candidates) == 0 {
		return []types.Candidate{}, nil
	}
	if encoder == nil {
		return fallbackRerank(candidates, topN), errNoCrossEncoder
	}

	passages := make([]string, len(candidates))
	for i := range candidates {
		passages[i] = candidates[i].Text
	}

	ranked, err := encoder.Rank(ctx, query, passages)
	if err != nil {
		return fallbackRerank(candidates, topN), err
	}

	out := make([]types.Candidate, 0, len(ranked))
	for _, rp := range ranked {
		if rp.Index < 0 || rp.Index >= len(candidates) {
			continue
		}
		c := candidates[rp.Index]
		c.SetHybridScore(rp.Score)
		out = append(out, c)
	}
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// fallbackRerank keeps the incoming order, truncates to topN, and assigns
// strictly decreasing positional scores, 1.0 for the first candidate and 0.1
// less per step.
func fallbackRerank(candidates []types.Candidate, topN int) []types.Candidate {
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		c.SetHybridScore(1.0 - 0.1*float64(i))
		out[i] = c
	}
	return out
}
