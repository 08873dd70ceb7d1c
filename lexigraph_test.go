package lexigraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/retrieval"
	"github.com/lexigraph/lexigraph/pkg/store"
	"github.com/lexigraph/lexigraph/pkg/types"
)

func corpusStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()

	chunks := []types.ChunkRecord{
		{ID: "vat-1", Text: "Thuế suất thuế GTGT là 10%.", Type: types.ChunkClause, Embedding: []float32{1, 0}},
		{ID: "vat-2", Text: "Thuế suất 5% cho dịch vụ giáo dục.", Type: types.ChunkClause, Embedding: []float32{0.8, 0.6}},
		{ID: "misc-1", Text: "Điều khoản thi hành.", Type: types.ChunkClause, Embedding: []float32{0, 1}},
	}
	for _, c := range chunks {
		require.NoError(t, s.AddChunk("Statute", c))
	}
	require.NoError(t, s.AddEdge("Statute", types.GraphEdge{
		SourceID: "vat-1", TargetID: "misc-1", RelationType: "CITES",
	}))

	return s
}

func TestNewRequiresStore(t *testing.T) {
	_, err := lexigraph.New(nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestEngineRetrieveOverMemoryStore(t *testing.T) {
	engine, err := lexigraph.New(corpusStore(t), nil, nil, nil, nil)
	require.NoError(t, err)
	defer engine.Close(context.Background())

	result, err := engine.Retrieve(context.Background(), retrieval.Request{
		Query:     "thuế suất",
		TopK:      5,
		Namespace: "Statute",
		Mode:      retrieval.ModeGraphExact,
	})

	require.NoError(t, err)
	require.Len(t, result.Candidates, 3)
	assert.Equal(t, "vat-1", result.Candidates[0].ChunkID)
	assert.Equal(t, "vat-2", result.Candidates[1].ChunkID)
	assert.Equal(t, "misc-1", result.Candidates[2].ChunkID)
	assert.Equal(t, "CITES", result.Candidates[2].RelationType)
	require.Len(t, result.GraphContext, 1)
}

func TestEngineCompareRunsEveryMode(t *testing.T) {
	engine, err := lexigraph.New(corpusStore(t), nil, nil, nil, nil)
	require.NoError(t, err)
	defer engine.Close(context.Background())

	results, err := engine.Compare(context.Background(), "thuế suất", "Statute", 5, nil)

	require.NoError(t, err)
	require.Len(t, results, len(retrieval.Modes()))
	for mode, result := range results {
		require.NotNil(t, result, "mode %s", mode)
		assert.Equal(t, string(mode), result.ModeUsed)
		assert.LessOrEqual(t, len(result.Candidates), 5)
	}

	// Modes that need the absent embedding provider degrade with warnings.
	assert.NotEmpty(t, results[retrieval.ModeHybridFusion].Warnings)
	assert.False(t, results[retrieval.ModeEmbeddingOnly].EmbeddingUsed)
}

func TestEnginePingAndHealth(t *testing.T) {
	engine, err := lexigraph.New(corpusStore(t), nil, nil, nil, nil)
	require.NoError(t, err)
	defer engine.Close(context.Background())

	assert.NoError(t, engine.Ping(context.Background()))
	assert.True(t, engine.Healthy())
}

func TestOpenMemoryDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "memory"
	cfg.Retrieval.Namespace = "Statute"

	engine, err := lexigraph.Open(cfg, nil)
	require.NoError(t, err)
	defer engine.Close(context.Background())

	result, err := engine.Retrieve(context.Background(), retrieval.Request{
		Query:     "thuế",
		TopK:      3,
		Namespace: "Statute",
		Mode:      retrieval.ModeLexicalOnly,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "dgraph"

	_, err := lexigraph.Open(cfg, nil)
	require.Error(t, err)
}
