package types

import (
	"errors"
	"unicode/utf8"
)

// Validation errors
var (
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrEmptyNamespace = errors.New("namespace cannot be empty")
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrTopKOutOfRange = errors.New("top_k must be between 1 and 50")
	ErrUnknownMode    = errors.New("unknown retrieval mode")
	ErrEmptyID        = errors.New("id cannot be empty")
)

// Bounds enforced on incoming retrieval requests.
const (
	MinTopK = 1
	MaxTopK = 50
)

// PreviewLength is the maximum number of runes kept in a graph context
// text preview.
const PreviewLength = 100

// ChunkType classifies the structural unit of legal text a chunk was cut from.
type ChunkType string

const (
	// ChunkDocument is a whole document node.
	ChunkDocument ChunkType = "document"
	// ChunkPart is a top-level part of a document.
	ChunkPart ChunkType = "part"
	// ChunkChapter is a chapter within a document.
	ChunkChapter ChunkType = "chapter"
	// ChunkSection is a section within a chapter.
	ChunkSection ChunkType = "section"
	// ChunkClause is a numbered clause.
	ChunkClause ChunkType = "clause"
	// ChunkPoint is a lettered or numbered point under a clause.
	ChunkPoint ChunkType = "point"
	// ChunkSubpoint is a nested point.
	ChunkSubpoint ChunkType = "subpoint"
)

// ChunkRecord is one indexed text passage, materialized as a graph node by the
// document-indexing pipeline. The retrieval engine treats it as read-only.
type ChunkRecord struct {
	ID        string    `json:"id" mapstructure:"id"`
	Text      string    `json:"text" mapstructure:"text"`
	Type      ChunkType `json:"type,omitempty" mapstructure:"type"`
	ParentID  string    `json:"parent_id,omitempty" mapstructure:"parent_id"`
	Embedding []float32 `json:"embedding,omitempty" mapstructure:"embedding"`
}

// HasEmbedding reports whether the record carries a non-empty embedding vector.
func (c *ChunkRecord) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Validate checks if the ChunkRecord has all required fields set.
func (c *ChunkRecord) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// GraphEdge is a relationship between two chunk nodes. Traversal treats edges
// as undirected.
type GraphEdge struct {
	SourceID     string `json:"source_id" mapstructure:"source_id"`
	TargetID     string `json:"target_id" mapstructure:"target_id"`
	RelationType string `json:"relation_type" mapstructure:"relation_type"`
}

// Candidate is one scored passage inside a single retrieval request. At most
// one Candidate per ChunkID survives into a result set; when a seed and a
// non-seed copy of the same id collide, the seed wins.
type Candidate struct {
	ChunkID        string   `json:"id"`
	Text           string   `json:"text"`
	LexicalScore   float64  `json:"lexical_score"`
	EmbeddingScore *float64 `json:"embedding_score,omitempty"`
	HybridScore    *float64 `json:"hybrid_score,omitempty"`
	IsSeed         bool     `json:"is_seed"`
	RelationType   string   `json:"relation_type,omitempty"`
	Hops           int      `json:"-"`

	// Embedding is carried between pipeline stages so the vector ranker does
	// not re-fetch node vectors. Never serialized into responses.
	Embedding []float32 `json:"-"`
}

// SetEmbeddingScore records a cosine similarity on the candidate.
func (c *Candidate) SetEmbeddingScore(sim float64) {
	c.EmbeddingScore = &sim
}

// SetHybridScore records a fused or reranked score on the candidate.
func (c *Candidate) SetHybridScore(score float64) {
	c.HybridScore = &score
}

// FinalScore returns the most refined score the pipeline produced for the
// candidate: hybrid when fusion or reranking ran, then embedding, then
// lexical. Final ordering in every mode reads this cascade.
func (c *Candidate) FinalScore() float64 {
	if c.HybridScore != nil {
		return *c.HybridScore
	}
	if c.EmbeddingScore != nil {
		return *c.EmbeddingScore
	}
	return c.LexicalScore
}

// GraphContextEntry describes one graph-expanded neighbor for diagnostics:
// which node was pulled in, over which relation, and a short text preview.
type GraphContextEntry struct {
	NodeID       string `json:"node_id"`
	RelationType string `json:"relation_type"`
	TextPreview  string `json:"text_preview"`
}

// RetrievalResult is the output of one retrieval request. It is created fresh
// per request and never mutated after return.
type RetrievalResult struct {
	Candidates    []Candidate         `json:"candidates"`
	GraphContext  []GraphContextEntry `json:"graph_context"`
	ModeUsed      string              `json:"mode_used"`
	EmbeddingUsed bool                `json:"embedding_used"`
	Warnings      []string            `json:"warnings"`
}

// Preview truncates text to PreviewLength runes for graph context entries.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength])
}
