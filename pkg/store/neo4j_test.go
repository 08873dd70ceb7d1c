package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexigraph/lexigraph/pkg/types"
)

func TestValidateNamespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
		wantErr   bool
	}{
		{name: "simple label", namespace: "Statute", wantErr: false},
		{name: "with underscore and digits", namespace: "Statute_2024", wantErr: false},
		{name: "lowercase", namespace: "decree", wantErr: false},
		{name: "empty", namespace: "", wantErr: true},
		{name: "leading digit", namespace: "9Statute", wantErr: true},
		{name: "hyphen", namespace: "Bad-Label", wantErr: true},
		{name: "whitespace", namespace: "Statute Node", wantErr: true},
		{name: "cypher injection", namespace: "Statute) DETACH DELETE (n", wantErr: true},
		{name: "non-ascii", namespace: "Thuế", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNamespace(tt.namespace)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkFromDBNode(t *testing.T) {
	t.Parallel()

	node := dbtype.Node{
		Props: map[string]any{
			"id":         "d1-c1",
			"text":       "Thuế suất thuế GTGT là 10%.",
			"chunk_type": "clause",
			"parent_id":  "d1",
			"embedding":  []any{0.25, float64(0.5)},
		},
	}

	rec := chunkFromDBNode(node)
	assert.Equal(t, "d1-c1", rec.ID)
	assert.Equal(t, "Thuế suất thuế GTGT là 10%.", rec.Text)
	assert.Equal(t, types.ChunkClause, rec.Type)
	assert.Equal(t, "d1", rec.ParentID)
	require.Len(t, rec.Embedding, 2)
	assert.InDelta(t, 0.25, rec.Embedding[0], 1e-6)
}

func TestChunkFromDBNodeMissingProps(t *testing.T) {
	t.Parallel()

	rec := chunkFromDBNode(dbtype.Node{Props: map[string]any{"id": "bare"}})
	assert.Equal(t, "bare", rec.ID)
	assert.Empty(t, rec.Text)
	assert.Nil(t, rec.Embedding)
}

func TestEmbeddingFromProp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prop any
		want []float32
	}{
		{name: "native float list", prop: []any{1.0, -0.5}, want: []float32{1.0, -0.5}},
		{name: "json string", prop: "[0.5,1.0]", want: []float32{0.5, 1.0}},
		{name: "invalid json", prop: "not a vector", want: nil},
		{name: "mixed types", prop: []any{1.0, "oops"}, want: nil},
		{name: "nil", prop: nil, want: nil},
		{name: "wrong kind", prop: 42, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embeddingFromProp(tt.prop))
		})
	}
}

func TestNewNeo4jStoreDefaultsDatabase(t *testing.T) {
	t.Parallel()

	s, err := NewNeo4jStore("bolt://localhost:7687", "neo4j", "password", "")
	require.NoError(t, err)
	defer s.Close(context.Background())

	assert.Equal(t, "neo4j", s.database)
}

func TestNeo4jStoreIntegration(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("Skip integration test - requires NEO4J_URI")
	}

	s, err := NewNeo4jStore(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), "")
	require.NoError(t, err)
	defer s.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		t.Skipf("Neo4j connection failed: %v", err)
	}

	chunks, err := s.ScanByLabel(ctx, "Statute")
	require.NoError(t, err)
	t.Logf("scanned %d chunks", len(chunks))
}
