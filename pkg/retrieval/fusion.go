package retrieval

import "github.com/lexigraph/lexigraph/pkg/types"

// FuseScores blends the lexical and embedding signals of each candidate
// into one hybrid score:
//
//	hybrid = alpha*lexical_norm + (1-alpha)*embedding_norm
//
// Lexical scores normalize against the set's maximum, so the best word
// match is worth 1 whatever its raw count. Embedding scores map cosine
// range [-1, 1] onto [0, 1]; candidates without one contribute 0, which
// collapses the hybrid score onto pure lexical signal when the embedding
// stage was skipped. Alpha is clamped to [0, 1].
func FuseScores(candidates []types.Candidate, alpha float64) []types.Candidate {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	var maxLex float64
	for i := range candidates {
		if candidates[i].LexicalScore > maxLex {
			maxLex = candidates[i].LexicalScore
		}
	}

	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		var lexNorm float64
		if maxLex > 0 {
			lexNorm = c.LexicalScore / maxLex
		}
		var embNorm float64
		if c.EmbeddingScore != nil {
			embNorm = (*c.EmbeddingScore + 1) / 2
		}
		c.SetHybridScore(alpha*lexNorm + (1-alpha)*embNorm)
		out[i] = c
	}
	return out
}
