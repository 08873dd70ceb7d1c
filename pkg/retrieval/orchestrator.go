package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lexigraph/lexigraph/pkg/crossencoder"
	"github.com/lexigraph/lexigraph/pkg/embedding"
	"github.com/lexigraph/lexigraph/pkg/store"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// Orchestrator composes the pipeline stages into named retrieval modes and
// enforces the global invariants: no duplicate chunk IDs, result length
// bounded by top_k, and a stable final ordering. It holds no per-request
// state, so one Orchestrator serves any number of concurrent requests.
type Orchestrator struct {
	store    store.GraphStore
	embedder embedding.Client
	encoder  crossencoder.Client
	cfg      Config
	log      *slog.Logger
}

// NewOrchestrator wires an orchestrator over a graph store and optional
// providers. A nil embedder disables the similarity stage (affected modes
// degrade with a warning); a nil encoder makes every rerank request take the
// positional fallback. Zero-valued config fields fall back to defaults.
func NewOrchestrator(graphStore store.GraphStore, embedder embedding.Client, encoder crossencoder.Client, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    graphStore,
		embedder: embedder,
		encoder:  encoder,
		cfg:      cfg.withDefaults(),
		log:      logger,
	}
}

// Config returns the effective pipeline configuration.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// pipelineState carries one request through its stages.
type pipelineState struct {
	req           Request
	candidates    []types.Candidate
	embeddingUsed bool
	warnings      []string
}

func (s *pipelineState) warn(w string) {
	s.warnings = append(s.warnings, w)
}

// Retrieve runs one stateless pipeline execution over a snapshot of the
// graph. Invalid input and a failed namespace scan return an error; when the
// scan failed the result is still non-nil with an empty candidate set, so
// callers can distinguish "nothing matched" from "could not look". Provider
// failures never error, they degrade the affected stage and leave a warning.
func (o *Orchestrator) Retrieve(ctx context.Context, req Request) (*types.RetrievalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := &pipelineState{req: req}

	records, err := o.scan(ctx, req.Namespace)
	if err != nil {
		o.log.Error("namespace scan failed", "namespace", req.Namespace, "error", err)
		return emptyResult(req.Mode), err
	}

	switch req.Mode {
	case ModeLexicalOnly:
		st.candidates = SelectSeeds(req.Query, records, o.cfg.SeedCandidates)

	case ModeEmbeddingOnly:
		st.candidates = candidatesFromRecords(records)
		o.rankStage(ctx, st, req.TopK)

	case ModeHybridFusion:
		st.candidates = SelectSeeds(req.Query, records, o.cfg.SeedCandidates)
		o.annotateStage(ctx, st)
		st.candidates = FuseScores(st.candidates, o.alpha(req))

	case ModeGraphExact:
		st.candidates = SelectSeeds(req.Query, records, o.cfg.SeedCandidates)
		markGraphSeeds(st.candidates)
		o.expandStage(ctx, st)

	case ModeGraphEmbed:
		st.candidates = candidatesFromRecords(records)
		o.rankStage(ctx, st, o.cfg.EmbedTopK)
		markGraphSeeds(st.candidates)
		o.expandStage(ctx, st)

	case ModeGraphHybrid:
		st.candidates = SelectSeeds(req.Query, records, o.cfg.SeedCandidates)
		o.rankStage(ctx, st, o.cfg.EmbedTopK)
		markGraphSeeds(st.candidates)
		o.expandStage(ctx, st)
	}

	// Global invariants: dedup with seed-wins, stable order, top_k cap.
	st.candidates = dedupe(st.candidates)
	sortFinal(st.candidates)

	if req.Rerank {
		o.rerankStage(ctx, st)
	}

	if len(st.candidates) > req.TopK {
		st.candidates = st.candidates[:req.TopK]
	}
	if st.warnings == nil {
		st.warnings = []string{}
	}

	result := &types.RetrievalResult{
		Candidates:    st.candidates,
		GraphContext:  graphContext(st.candidates),
		ModeUsed:      string(req.Mode),
		EmbeddingUsed: st.embeddingUsed,
		Warnings:      st.warnings,
	}
	o.log.Info("retrieval complete",
		"mode", req.Mode,
		"namespace", req.Namespace,
		"candidates", len(result.Candidates),
		"embedding_used", result.EmbeddingUsed,
		"warnings", len(result.Warnings))
	return result, nil
}

// scan reads the namespace under the graph timeout. A failure here aborts
// the request: the graph store is the mandatory data source.
func (o *Orchestrator) scan(ctx context.Context, namespace string) ([]types.ChunkRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.GraphTimeout)
	defer cancel()

	records, err := o.store.ScanByLabel(sctx, namespace)
	if err != nil {
		return nil, &GraphQueryError{Op: "scan", Err: err}
	}
	return records, nil
}

// embedQuery produces the query vector under the provider timeout.
func (o *Orchestrator) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if o.embedder == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	ectx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
	defer cancel()
	return o.embedder.EmbedSingle(ectx, query)
}

// rankStage reranks the current candidates by cosine similarity, keeping
// the top limit. An embedding failure skips the stage: the candidate set
// passes through untouched and the degradation lands in the warnings.
func (o *Orchestrator) rankStage(ctx context.Context, st *pipelineState, limit int) {
	queryVec, err := o.embedQuery(ctx, st.req.Query)
	if err != nil {
		o.log.Warn("embedding stage skipped", "error", err)
		st.warn(warnEmbedding(err))
		return
	}
	st.embeddingUsed = true
	st.candidates = RankBySimilarity(queryVec, st.candidates, limit)
}

// annotateStage scores candidates by similarity without reordering or
// truncating; fusion consumes both signals afterwards.
func (o *Orchestrator) annotateStage(ctx context.Context, st *pipelineState) {
	queryVec, err := o.embedQuery(ctx, st.req.Query)
	if err != nil {
		o.log.Warn("embedding stage skipped", "error", err)
		st.warn(warnEmbedding(err))
		return
	}
	st.embeddingUsed = true
	st.candidates = AnnotateSimilarity(queryVec, st.candidates)
}

// expandStage pulls in graph neighbors of the current seeds. A traversal
// failure degrades to the seed set alone; only the namespace scan is fatal.
func (o *Orchestrator) expandStage(ctx context.Context, st *pipelineState) {
	if len(st.candidates) == 0 {
		return
	}

	ids := make([]string, len(st.candidates))
	for i := range st.candidates {
		ids[i] = st.candidates[i].ChunkID
	}

	hops := o.cfg.HopDepth
	if st.req.HopDepth > 0 {
		hops = st.req.HopDepth
	}

	gctx, cancel := context.WithTimeout(ctx, o.cfg.GraphTimeout)
	defer cancel()

	hits, err := o.store.Neighbors(gctx, st.req.Namespace, ids, hops)
	if err != nil {
		o.log.Warn("graph expansion skipped", "seeds", len(ids), "error", err)
		st.warn(warnExpansion(err))
		return
	}

	neighbors := NeighborCandidates(hits, st.candidates, o.cfg.NeighborLimit, o.cfg.NeighborDiscount, o.cfg.DiscountPolicy)
	st.candidates = append(st.candidates, neighbors...)
}

// rerankStage runs the cross-encoder pass over the candidate set. The
// fallback inside RerankCandidates keeps the result fully scored, so the
// only caller-visible trace of a failure is the warning.
func (o *Orchestrator) rerankStage(ctx context.Context, st *pipelineState) {
	rctx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
	defer cancel()

	reranked, err := RerankCandidates(rctx, o.encoder, st.req.Query, st.candidates, o.cfg.RerankTopN)
	if err != nil {
		o.log.Warn("cross-encoder fallback used", "error", err)
		st.warn(warnCrossEncoder(err))
	}
	st.candidates = reranked
}

// alpha resolves the fusion weight for one request.
func (o *Orchestrator) alpha(req Request) float64 {
	if req.Alpha == nil {
		return o.cfg.Alpha
	}
	a := *req.Alpha
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// markGraphSeeds pins every seed entering graph expansion to score 1.0, so
// neighbor scores come out as the discount against a fixed reference.
func markGraphSeeds(seeds []types.Candidate) {
	for i := range seeds {
		seeds[i].SetHybridScore(GraphSeedScore)
	}
}

// dedupe keeps one candidate per chunk ID. A seed always beats a non-seed
// copy of the same chunk whatever the arrival order; between two copies of
// the same kind the higher score survives.
func dedupe(candidates []types.Candidate) []types.Candidate {
	seen := make(map[string]int, len(candidates))
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		at, dup := seen[c.ChunkID]
		if !dup {
			seen[c.ChunkID] = len(out)
			out = append(out, c)
			continue
		}
		prev := out[at]
		if (c.IsSeed && !prev.IsSeed) ||
			(c.IsSeed == prev.IsSeed && c.FinalScore() > prev.FinalScore()) {
			out[at] = c
		}
	}
	return out
}

// sortFinal orders candidates by (score desc, is_seed desc, chunk_id asc).
// The chunk ID key makes equal-score ties reproducible across runs.
func sortFinal(candidates []types.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].FinalScore(), candidates[j].FinalScore()
		if si != sj {
			return si > sj
		}
		if candidates[i].IsSeed != candidates[j].IsSeed {
			return candidates[i].IsSeed
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
}

// graphContext summarizes the graph-expanded candidates that made the final
// cut: node, connecting relation, and a short text preview. The result is
// never nil so it serializes as a list.
func graphContext(candidates []types.Candidate) []types.GraphContextEntry {
	entries := []types.GraphContextEntry{}
	for i := range candidates {
		c := &candidates[i]
		if c.IsSeed || c.RelationType == "" {
			continue
		}
		entries = append(entries, types.GraphContextEntry{
			NodeID:       c.ChunkID,
			RelationType: c.RelationType,
			TextPreview:  types.Preview(c.Text),
		})
	}
	return entries
}

func emptyResult(mode Mode) *types.RetrievalResult {
	return &types.RetrievalResult{
		Candidates:   []types.Candidate{},
		GraphContext: []types.GraphContextEntry{},
		ModeUsed:     string(mode),
		Warnings:     []string{},
	}
}
