package retrieval

import (
	"sort"
	"strings"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// queryWords splits a query into its distinct lowercased words, in first
// occurrence order. Matching is case-insensitive on both sides.
func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// SelectSeeds scores every record by the number of distinct query words its
// text contains and keeps the top limit as seed candidates. A repeated word
// in the query counts once, and so does a word appearing many times in one
// chunk. Records matching no word are dropped rather than ranked at zero.
// Ties break on ascending chunk ID so equal scores order deterministically.
func SelectSeeds(query string, records []types.ChunkRecord, limit int) []types.Candidate {
	words := queryWords(query)
	if len(words) == 0 || limit <= 0 {
		return nil
	}

	seeds := make([]types.Candidate, 0, len(records))
	for _, rec := range records {
		text := strings.ToLower(rec.Text)
		matches := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		seeds = append(seeds, types.Candidate{
			ChunkID:      rec.ID,
			Text:         rec.Text,
			LexicalScore: float64(matches),
			IsSeed:       true,
			Embedding:    rec.Embedding,
		})
	}

	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].LexicalScore != seeds[j].LexicalScore {
			return seeds[i].LexicalScore > seeds[j].LexicalScore
		}
		return seeds[i].ChunkID < seeds[j].ChunkID
	})
	if len(seeds) > limit {
		seeds = seeds[:limit]
	}
	return seeds
}
