package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// MemoryStore is an in-process GraphStore. It backs tests, examples, and
// the memory driver of the CLI.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]map[string]types.ChunkRecord
	edges  map[string][]types.GraphEdge
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string]map[string]types.ChunkRecord),
		edges:  make(map[string][]types.GraphEdge),
	}
}

// AddChunk stores a chunk in the namespace, replacing any previous chunk
// with the same ID. Chunks without text are allowed; they participate in
// traversal but are never returned as hits.
func (s *MemoryStore) AddChunk(namespace string, rec types.ChunkRecord) error {
	if rec.ID == "" {
		return types.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chunks[namespace] == nil {
		s.chunks[namespace] = make(map[string]types.ChunkRecord)
	}
	s.chunks[namespace][rec.ID] = rec
	return nil
}

// AddEdge stores a relationship between two chunks in the namespace.
func (s *MemoryStore) AddEdge(namespace string, edge types.GraphEdge) error {
	if edge.SourceID == "" || edge.TargetID == "" {
		return types.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges[namespace] = append(s.edges[namespace], edge)
	return nil
}

// ScanByLabel returns the namespace's chunks with text, sorted by ID.
func (s *MemoryStore) ScanByLabel(_ context.Context, namespace string) ([]types.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]types.ChunkRecord, 0, len(s.chunks[namespace]))
	for _, rec := range s.chunks[namespace] {
		if rec.Text == "" {
			continue
		}
		chunks = append(chunks, rec)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})

	return chunks, nil
}

// memEdge is one direction of a stored edge in the adjacency index.
type memEdge struct {
	neighbor string
	edge     types.GraphEdge
}

// Neighbors runs a breadth-first expansion from each seed over undirected
// edges, reporting every distinct neighbor at its shortest hop distance.
// Iteration order is deterministic.
func (s *MemoryStore) Neighbors(_ context.Context, namespace string, nodeIDs []string, maxHops int) ([]NeighborHit, error) {
	if len(nodeIDs) == 0 {
		return []NeighborHit{}, nil
	}
	if maxHops < 1 {
		maxHops = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	adj := s.adjacency(namespace)
	chunks := s.chunks[namespace]

	type queueItem struct {
		id   string
		hops int
	}

	var hits []NeighborHit
	for _, seedID := range nodeIDs {
		visited := map[string]bool{seedID: true}
		queue := []queueItem{{id: seedID}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.hops == maxHops {
				continue
			}

			for _, e := range adj[cur.id] {
				if visited[e.neighbor] {
					continue
				}
				visited[e.neighbor] = true
				hops := cur.hops + 1

				if rec, ok := chunks[e.neighbor]; ok && rec.Text != "" {
					hits = append(hits, NeighborHit{
						FromID: seedID,
						Edge:   e.edge,
						Record: rec,
						Hops:   hops,
					})
				}
				queue = append(queue, queueItem{id: e.neighbor, hops: hops})
			}
		}
	}

	if hits == nil {
		hits = []NeighborHit{}
	}
	return hits, nil
}

// adjacency builds the undirected adjacency index. Edges keep their
// stored orientation; each neighbor list is sorted so traversal order is
// stable. Caller must hold the read lock.
func (s *MemoryStore) adjacency(namespace string) map[string][]memEdge {
	adj := make(map[string][]memEdge)
	for _, edge := range s.edges[namespace] {
		adj[edge.SourceID] = append(adj[edge.SourceID], memEdge{neighbor: edge.TargetID, edge: edge})
		adj[edge.TargetID] = append(adj[edge.TargetID], memEdge{neighbor: edge.SourceID, edge: edge})
	}
	for id := range adj {
		list := adj[id]
		sort.Slice(list, func(i, j int) bool {
			if list[i].neighbor != list[j].neighbor {
				return list[i].neighbor < list[j].neighbor
			}
			return list[i].edge.RelationType < list[j].edge.RelationType
		})
	}
	return adj
}

// Ping implements GraphStore.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close implements GraphStore.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}
