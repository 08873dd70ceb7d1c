package retrieval_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexigraph/lexigraph/pkg/retrieval"
	"github.com/lexigraph/lexigraph/pkg/types"
)

func TestSelectSeedsWordMatching(t *testing.T) {
	records := []types.ChunkRecord{
		{ID: "A", Text: "thuế suất VAT"},
		{ID: "B", Text: "quy định khác"},
	}

	seeds := retrieval.SelectSeeds("thuế suất", records, 20)

	require.Len(t, seeds, 1, "B matches no query word and must be dropped")
	assert.Equal(t, "A", seeds[0].ChunkID)
	assert.Equal(t, 2.0, seeds[0].LexicalScore)
	assert.True(t, seeds[0].IsSeed)
}

func TestSelectSeedsCaseInsensitive(t *testing.T) {
	records := []types.ChunkRecord{
		{ID: "A", Text: "THUẾ SUẤT ưu đãi"},
	}

	seeds := retrieval.SelectSeeds("Thuế Suất", records, 20)

	require.Len(t, seeds, 1)
	assert.Equal(t, 2.0, seeds[0].LexicalScore)
}

func TestSelectSeedsCountsDistinctWordsOnce(t *testing.T) {
	records := []types.ChunkRecord{
		{ID: "A", Text: "thuế thuế thuế"},
	}

	// The repeated query word counts once, and so do its repeated
	// occurrences in the text.
	seeds := retrieval.SelectSeeds("thuế thuế", records, 20)

	require.Len(t, seeds, 1)
	assert.Equal(t, 1.0, seeds[0].LexicalScore)
}

func TestSelectSeedsSubstringMatch(t *testing.T) {
	records := []types.ChunkRecord{
		{ID: "A", Text: "các khoản thuế suất"},
	}

	// "thuế" occurs inside "thuế suất"; containment, not tokenization.
	seeds := retrieval.SelectSeeds("thuế", records, 20)
	require.Len(t, seeds, 1)
}

func TestSelectSeedsOrderAndTieBreak(t *testing.T) {
	records := []types.ChunkRecord{
		{ID: "C", Text: "thuế"},
		{ID: "A", Text: "thuế"},
		{ID: "B", Text: "thuế suất"},
	}

	seeds := retrieval.SelectSeeds("thuế suất", records, 20)

	require.Len(t, seeds, 3)
	assert.Equal(t, "B", seeds[0].ChunkID, "highest match count first")
	assert.Equal(t, "A", seeds[1].ChunkID, "equal scores order by ascending ID")
	assert.Equal(t, "C", seeds[2].ChunkID)
}

func TestSelectSeedsTruncatesToLimit(t *testing.T) {
	var records []types.ChunkRecord
	for i := 0; i < 30; i++ {
		records = append(records, types.ChunkRecord{
			ID:   fmt.Sprintf("c%02d", i),
			Text: "điều khoản thuế",
		})
	}

	seeds := retrieval.SelectSeeds("thuế", records, 20)
	assert.Len(t, seeds, 20)
}

func TestSelectSeedsEmptyQuery(t *testing.T) {
	records := []types.ChunkRecord{{ID: "A", Text: "thuế"}}

	assert.Empty(t, retrieval.SelectSeeds("   ", records, 20))
}
