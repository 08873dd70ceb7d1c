// Package types defines the core data types for the lexigraph retrieval engine.
//
// This package contains the fundamental types shared by every pipeline stage:
//   - ChunkRecord: An indexed text passage materialized as a graph node
//   - GraphEdge: A relationship between two chunk nodes
//   - Candidate: A scored passage inside a single retrieval request
//   - RetrievalResult: The ordered, deduplicated output of one request
//
// # Chunk Types
//
// Chunks correspond to the structural units of legal text:
//   - ChunkDocument, ChunkPart, ChunkChapter, ChunkSection
//   - ChunkClause, ChunkPoint, ChunkSubpoint
//
// # Validation
//
// Types provide Validate() methods returning the package sentinel errors:
//
//	rec := &types.ChunkRecord{ID: "c-1", Text: "..."}
//	if err := rec.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with appropriate struct tags.
// Pipeline-internal fields (carried embeddings, hop counts) are excluded from
// serialization.
package types
