package retrieval

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// Mode names one retrieval pipeline composition. The set is closed: every
// mode is an explicit ordered list of stages, not a free-form branch.
type Mode string

const (
	// ModeLexicalOnly ranks by distinct query-word containment alone.
	ModeLexicalOnly Mode = "lexical-only"

	// ModeEmbeddingOnly ranks a full namespace scan by cosine similarity.
	ModeEmbeddingOnly Mode = "embedding-only"

	// ModeHybridFusion scores lexical seeds with embedding similarity and
	// fuses both signals into one weighted hybrid score.
	ModeHybridFusion Mode = "hybrid-fusion"

	// ModeGraphExact expands lexical seeds over graph relationships.
	ModeGraphExact Mode = "graph-exact"

	// ModeGraphEmbed expands cosine-ranked seeds over graph relationships.
	ModeGraphEmbed Mode = "graph-embed"

	// ModeGraphHybrid narrows lexical seeds by embedding similarity, then
	// expands the survivors over graph relationships.
	ModeGraphHybrid Mode = "graph-hybrid"
)

// Modes returns every retrieval mode in presentation order.
func Modes() []Mode {
	return []Mode{
		ModeLexicalOnly,
		ModeEmbeddingOnly,
		ModeHybridFusion,
		ModeGraphExact,
		ModeGraphEmbed,
		ModeGraphHybrid,
	}
}

// Validate reports whether the mode is one of the known pipeline names.
func (m Mode) Validate() error {
	switch m {
	case ModeLexicalOnly, ModeEmbeddingOnly, ModeHybridFusion,
		ModeGraphExact, ModeGraphEmbed, ModeGraphHybrid:
		return nil
	}
	return fmt.Errorf("%w: %q", types.ErrUnknownMode, string(m))
}

// usesEmbedding reports whether the mode runs the similarity stage.
func (m Mode) usesEmbedding() bool {
	switch m {
	case ModeEmbeddingOnly, ModeHybridFusion, ModeGraphEmbed, ModeGraphHybrid:
		return true
	}
	return false
}

// usesGraph reports whether the mode runs neighbor expansion.
func (m Mode) usesGraph() bool {
	switch m {
	case ModeGraphExact, ModeGraphEmbed, ModeGraphHybrid:
		return true
	}
	return false
}

// ModeInfo describes one mode for catalogs (CLI listing, API discovery).
type ModeInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stages      []string `json:"stages"`
}

// ModeCatalog returns a human-readable description of every mode.
func ModeCatalog() []ModeInfo {
	return []ModeInfo{
		{
			Name:        string(ModeLexicalOnly),
			Description: "Word-match baseline: rank chunks by distinct query words contained in their text.",
			Stages:      []string{"lexical"},
		},
		{
			Name:        string(ModeEmbeddingOnly),
			Description: "Semantic baseline: rank every chunk in the namespace by cosine similarity to the query embedding.",
			Stages:      []string{"scan", "vector"},
		},
		{
			Name:        string(ModeHybridFusion),
			Description: "Weighted fusion of normalized lexical and embedding scores over word-match seeds.",
			Stages:      []string{"lexical", "vector", "fusion"},
		},
		{
			Name:        string(ModeGraphExact),
			Description: "Word-match seeds expanded to graph neighbors with discounted scores.",
			Stages:      []string{"lexical", "expand"},
		},
		{
			Name:        string(ModeGraphEmbed),
			Description: "Embedding-ranked seeds expanded to graph neighbors with discounted scores.",
			Stages:      []string{"scan", "vector", "expand"},
		},
		{
			Name:        string(ModeGraphHybrid),
			Description: "Word-match seeds narrowed by embedding similarity, then expanded to graph neighbors.",
			Stages:      []string{"lexical", "vector", "expand"},
		},
	}
}

// Pipeline stage defaults. Bounding is structural: these caps, not
// wall-clock budgets, keep a request's work finite.
const (
	// DefaultSeedCandidates caps the initial word-match candidate set.
	DefaultSeedCandidates = 20

	// DefaultEmbedTopK caps the seeds surviving the similarity rerank
	// inside hybrid funnels.
	DefaultEmbedTopK = 5

	// DefaultNeighborLimit caps graph neighbors kept per seed.
	DefaultNeighborLimit = 10

	// DefaultNeighborDiscount scales a seed's score onto its neighbors.
	DefaultNeighborDiscount = 0.8

	// DefaultHopDepth bounds graph expansion distance.
	DefaultHopDepth = 1

	// DefaultAlpha weights lexical vs embedding signal in fusion.
	DefaultAlpha = 0.5

	// DefaultRerankTopN caps the cross-encoder rerank output.
	DefaultRerankTopN = 5

	// GraphSeedScore is assigned to seeds entering graph expansion, so
	// neighbor scores come out as GraphSeedScore * discount.
	GraphSeedScore = 1.0
)

// Config holds the pipeline knobs. The zero value of any field falls back
// to the package default.
type Config struct {
	SeedCandidates   int            `json:"seed_candidates"`
	EmbedTopK        int            `json:"embed_top_k"`
	NeighborLimit    int            `json:"neighbor_limit"`
	NeighborDiscount float64        `json:"neighbor_discount"`
	HopDepth         int            `json:"hop_depth"`
	DiscountPolicy   DiscountPolicy `json:"discount_policy"`
	Alpha            float64        `json:"alpha"`
	RerankTopN       int            `json:"rerank_top_n"`

	// GraphTimeout bounds each graph store call; expiry surfaces as a
	// graph query failure.
	GraphTimeout time.Duration `json:"graph_timeout"`

	// ProviderTimeout bounds each embedding and cross-encoder call;
	// expiry degrades the stage like any provider failure.
	ProviderTimeout time.Duration `json:"provider_timeout"`
}

// DefaultConfig returns the reference pipeline configuration.
func DefaultConfig() Config {
	return Config{
		SeedCandidates:   DefaultSeedCandidates,
		EmbedTopK:        DefaultEmbedTopK,
		NeighborLimit:    DefaultNeighborLimit,
		NeighborDiscount: DefaultNeighborDiscount,
		HopDepth:         DefaultHopDepth,
		DiscountPolicy:   DiscountCompound,
		Alpha:            DefaultAlpha,
		RerankTopN:       DefaultRerankTopN,
		GraphTimeout:     10 * time.Second,
		ProviderTimeout:  30 * time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SeedCandidates <= 0 {
		c.SeedCandidates = def.SeedCandidates
	}
	if c.EmbedTopK <= 0 {
		c.EmbedTopK = def.EmbedTopK
	}
	if c.NeighborLimit <= 0 {
		c.NeighborLimit = def.NeighborLimit
	}
	if c.NeighborDiscount <= 0 {
		c.NeighborDiscount = def.NeighborDiscount
	}
	if c.HopDepth <= 0 {
		c.HopDepth = def.HopDepth
	}
	if !c.DiscountPolicy.Valid() {
		c.DiscountPolicy = def.DiscountPolicy
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = def.Alpha
	}
	if c.RerankTopN <= 0 {
		c.RerankTopN = def.RerankTopN
	}
	if c.GraphTimeout <= 0 {
		c.GraphTimeout = def.GraphTimeout
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = def.ProviderTimeout
	}
	return c
}

// Request is one retrieval invocation. Namespace scopes the query to a
// graph partition; Mode selects the pipeline composition.
type Request struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
	Namespace string `json:"namespace"`
	Mode      Mode   `json:"mode"`

	// Rerank appends the cross-encoder pass to any mode.
	Rerank bool `json:"rerank,omitempty"`

	// Alpha overrides the configured fusion weight for this request.
	// Values are clamped to [0, 1].
	Alpha *float64 `json:"alpha,omitempty"`

	// HopDepth overrides the configured expansion depth for this
	// request; zero keeps the configured depth.
	HopDepth int `json:"hop_depth,omitempty"`
}

// Validate rejects malformed requests before any pipeline stage runs.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return types.ErrEmptyQuery
	}
	if r.TopK < types.MinTopK || r.TopK > types.MaxTopK {
		return types.ErrTopKOutOfRange
	}
	if r.Namespace == "" {
		return types.ErrEmptyNamespace
	}
	return r.Mode.Validate()
}
