package store

import (
	"context"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// GraphStore is the read-side contract every graph backend implements.
type GraphStore interface {
	// ScanByLabel returns every chunk in the namespace that carries text.
	ScanByLabel(ctx context.Context, namespace string) ([]types.ChunkRecord, error)

	// Neighbors returns chunks reachable from the given node IDs within
	// maxHops, one hit per (seed, neighbor) pair over the shortest path
	// between them.
	Neighbors(ctx context.Context, namespace string, nodeIDs []string, maxHops int) ([]NeighborHit, error)

	// Ping checks connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// NeighborHit is one neighbor reached during graph expansion.
type NeighborHit struct {
	// FromID is the seed node the expansion started from.
	FromID string

	// Edge is the final relationship on the shortest path to the neighbor,
	// in its stored orientation.
	Edge types.GraphEdge

	// Record is the neighbor chunk itself.
	Record types.ChunkRecord

	// Hops is the length of the shortest path from the seed.
	Hops int
}
