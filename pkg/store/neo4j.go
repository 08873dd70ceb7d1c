package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// labelPattern restricts namespaces to safe Cypher label names. Labels
// cannot be bound as query parameters, so they are validated before
// interpolation.
var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Neo4jStore implements GraphStore for Neo4j databases.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a new Neo4j store instance.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   driver,
		database: database,
	}, nil
}

// ValidateNamespace reports whether namespace is usable as a node label.
func ValidateNamespace(namespace string) error {
	if !labelPattern.MatchString(namespace) {
		return fmt.Errorf("invalid namespace label %q", namespace)
	}
	return nil
}

// ScanByLabel retrieves every chunk carrying the namespace label and
// non-null text.
func (s *Neo4jStore) ScanByLabel(ctx context.Context, namespace string) ([]types.ChunkRecord, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (n:%s)
			WHERE n.text IS NOT NULL
			RETURN n
		`, namespace)
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s chunks: %w", namespace, err)
	}

	records := result.([]*db.Record)
	chunks := make([]types.ChunkRecord, 0, len(records))

	for _, record := range records {
		nodeValue, found := record.Get("n")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue // Skip invalid type
		}
		chunks = append(chunks, chunkFromDBNode(node))
	}

	return chunks, nil
}

// Neighbors retrieves chunks reachable from the given node IDs within
// maxHops over undirected paths. For each (seed, neighbor) pair only the
// shortest path is reported, tagged with the type of the final edge on
// that path.
func (s *Neo4jStore) Neighbors(ctx context.Context, namespace string, nodeIDs []string, maxHops int) ([]NeighborHit, error) {
	if len(nodeIDs) == 0 {
		return []NeighborHit{}, nil
	}
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if maxHops < 1 {
		maxHops = 1
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Variable-length bounds cannot be parameterized, so the validated
		// label and hop bound are interpolated.
		query := fmt.Sprintf(`
			UNWIND $ids AS seed_id
			MATCH (seed:%s {id: seed_id})
			MATCH path = (seed)-[*1..%d]-(neighbor:%s)
			WHERE neighbor.id <> seed_id AND neighbor.text IS NOT NULL
			WITH seed_id, neighbor, path
			ORDER BY length(path)
			WITH seed_id, neighbor, head(collect(path)) AS shortest
			WITH seed_id, neighbor, shortest, last(relationships(shortest)) AS final_rel
			RETURN seed_id,
			       neighbor,
			       length(shortest) AS hops,
			       type(final_rel) AS relation_type,
			       startNode(final_rel).id AS edge_source,
			       endNode(final_rel).id AS edge_target
		`, namespace, maxHops, namespace)

		res, err := tx.Run(ctx, query, map[string]any{
			"ids": nodeIDs,
		})
		if err != nil {
			return nil, err
		}

		records, err := res.Collect(ctx)
		return records, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s neighbors: %w", namespace, err)
	}

	records := result.([]*db.Record)
	hits := make([]NeighborHit, 0, len(records))

	for _, record := range records {
		seedValue, _ := record.Get("seed_id")
		seedID, ok := seedValue.(string)
		if !ok {
			continue
		}
		neighborValue, found := record.Get("neighbor")
		if !found {
			continue
		}
		node, ok := neighborValue.(dbtype.Node)
		if !ok {
			continue // Skip invalid type
		}
		hopsValue, _ := record.Get("hops")
		hops, ok := hopsValue.(int64)
		if !ok {
			continue
		}

		relValue, _ := record.Get("relation_type")
		relType, _ := relValue.(string)
		sourceValue, _ := record.Get("edge_source")
		sourceID, _ := sourceValue.(string)
		targetValue, _ := record.Get("edge_target")
		targetID, _ := targetValue.(string)

		hits = append(hits, NeighborHit{
			FromID: seedID,
			Edge: types.GraphEdge{
				SourceID:     sourceID,
				TargetID:     targetID,
				RelationType: relType,
			},
			Record: chunkFromDBNode(node),
			Hops:   int(hops),
		})
	}

	return hits, nil
}

// Ping checks if the store can connect to the database.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

// Close closes the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// chunkFromDBNode maps a Neo4j node onto a ChunkRecord.
func chunkFromDBNode(node dbtype.Node) types.ChunkRecord {
	rec := types.ChunkRecord{}

	if v, ok := node.Props["id"].(string); ok {
		rec.ID = v
	}
	if v, ok := node.Props["text"].(string); ok {
		rec.Text = v
	}
	if v, ok := node.Props["chunk_type"].(string); ok {
		rec.Type = types.ChunkType(v)
	}
	if v, ok := node.Props["parent_id"].(string); ok {
		rec.ParentID = v
	}
	rec.Embedding = embeddingFromProp(node.Props["embedding"])

	return rec
}

// embeddingFromProp decodes a stored embedding, which may be a native
// float list or a JSON-encoded string depending on the ingestion path.
func embeddingFromProp(prop any) []float32 {
	switch v := prop.(type) {
	case []any:
		vec := make([]float32, 0, len(v))
		for _, f := range v {
			switch n := f.(type) {
			case float64:
				vec = append(vec, float32(n))
			case float32:
				vec = append(vec, n)
			default:
				return nil
			}
		}
		return vec
	case string:
		var vec []float32
		if err := json.Unmarshal([]byte(v), &vec); err != nil {
			return nil
		}
		return vec
	}
	return nil
}
