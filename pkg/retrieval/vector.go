package retrieval

import (
	"math"
	"sort"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths and zero-norm vectors yield 0 rather than an error;
// a missing embedding simply cannot contribute signal.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// AnnotateSimilarity sets the embedding score of every candidate to its
// cosine similarity against the query vector, preserving order. Candidates
// without a stored embedding score 0.
func AnnotateSimilarity(queryVec []float32, candidates []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		c.SetEmbeddingScore(CosineSimilarity(queryVec, c.Embedding))
		out[i] = c
	}
	return out
}

// RankBySimilarity annotates candidates with cosine similarity, orders them
// by descending score, and keeps the top topK. Candidates without a stored
// embedding cannot be compared and are excluded. Ties break on ascending
// chunk ID.
func RankBySimilarity(queryVec []float32, candidates []types.Candidate, topK int) []types.Candidate {
	if topK <= 0 {
		return nil
	}
	withVec := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) > 0 {
			withVec = append(withVec, c)
		}
	}
	out := AnnotateSimilarity(queryVec, withVec)
	sort.Slice(out, func(i, j int) bool {
		si, sj := *out[i].EmbeddingScore, *out[j].EmbeddingScore
		if si != sj {
			return si > sj
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// candidatesFromRecords lifts raw chunk records into candidates for modes
// that start from a namespace scan instead of word matching.
func candidatesFromRecords(records []types.ChunkRecord) []types.Candidate {
	out := make([]types.Candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, types.Candidate{
			ChunkID:   rec.ID,
			Text:      rec.Text,
			IsSeed:    true,
			Embedding: rec.Embedding,
		})
	}
	return out
}
