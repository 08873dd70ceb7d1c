package lexigraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lexigraph/lexigraph/pkg/alert"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/crossencoder"
	"github.com/lexigraph/lexigraph/pkg/embedding"
	"github.com/lexigraph/lexigraph/pkg/retrieval"
	"github.com/lexigraph/lexigraph/pkg/store"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// Engine is the retrieval engine's public surface. One Engine serves any
// number of concurrent requests; every retrieval is a stateless, read-only
// pipeline execution over a snapshot of the graph.
type Engine interface {
	// Retrieve runs one retrieval request and returns its ranked,
	// deduplicated candidate set with diagnostics.
	Retrieve(ctx context.Context, req retrieval.Request) (*types.RetrievalResult, error)

	// Compare runs the same query through several modes side by side.
	Compare(ctx context.Context, query, namespace string, topK int, modes []retrieval.Mode) (map[retrieval.Mode]*types.RetrievalResult, error)

	// Ping checks connectivity to the graph store.
	Ping(ctx context.Context) error

	// Healthy reports whether the graph store is currently reachable. It
	// reads the circuit breaker state rather than probing the store.
	Healthy() bool

	// Close releases the store connection and provider handles.
	Close(ctx context.Context) error
}

// Client implements Engine over a graph store and optional model providers.
type Client struct {
	store    store.GraphStore
	embedder embedding.Client
	encoder  crossencoder.Client
	orch     *retrieval.Orchestrator
	config   *config.Config
	logger   *slog.Logger
}

var _ Engine = (*Client)(nil)

// New assembles an engine from explicit components. The embedder and
// encoder may be nil; the affected stages then degrade with warnings as
// they would on a provider failure. A nil config uses built-in defaults.
func New(graphStore store.GraphStore, embedder embedding.Client, encoder crossencoder.Client, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if graphStore == nil {
		return nil, fmt.Errorf("graph store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pipelineCfg := retrieval.DefaultConfig()
	if cfg != nil {
		pipelineCfg = pipelineConfig(cfg.Retrieval)
	}

	return &Client{
		store:    graphStore,
		embedder: embedder,
		encoder:  encoder,
		orch:     retrieval.NewOrchestrator(graphStore, embedder, encoder, pipelineCfg, logger),
		config:   cfg,
		logger:   logger,
	}, nil
}

// Open builds an engine entirely from configuration: graph store per the
// database driver, circuit breaker and alerting around it, and lazily
// constructed model providers so the first request pays the load cost.
func Open(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	graphStore, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening graph store: %w", err)
	}
	if cfg.CircuitBreaker.Enabled {
		graphStore = store.NewBreakerStore(graphStore, cfg.CircuitBreaker, alert.FromConfig(cfg.Alert, logger), logger)
	}

	embedder := openEmbedder(cfg)
	encoder := openEncoder(cfg, embedder)

	return New(graphStore, embedder, encoder, cfg, logger)
}

// openStore picks the graph backend from the database driver name.
func openStore(cfg *config.Config) (store.GraphStore, error) {
	switch cfg.Database.Driver {
	case "", "neo4j":
		return store.NewNeo4jStore(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// openEmbedder wraps the configured embedding provider in a lazy loader.
// Construction failures surface on first use and degrade the similarity
// stage instead of failing startup.
func openEmbedder(cfg *config.Config) embedding.Client {
	ec := cfg.Embedding
	if ec.Provider == "" {
		return nil
	}
	return embedding.NewLazyClient(func() (embedding.Client, error) {
		return embedding.NewClient(embedding.ClientConfig{
			Provider: embedding.Provider(ec.Provider),
			Config: embedding.Config{
				Model:         ec.Model,
				BaseURL:       ec.BaseURL,
				MaxInputChars: ec.MaxInputChars,
			},
			APIKey:   ec.APIKey,
			CacheDir: ec.CacheDir,
		})
	})
}

// openEncoder wraps the configured cross-encoder in a lazy loader.
func openEncoder(cfg *config.Config, embedder embedding.Client) crossencoder.Client {
	cc := cfg.CrossEncoder
	if cc.Provider == "" {
		return nil
	}
	return crossencoder.NewLazyClient(func() (crossencoder.Client, error) {
		return crossencoder.NewClient(crossencoder.ClientConfig{
			Provider: crossencoder.Provider(cc.Provider),
			Config: crossencoder.Config{
				Model:          cc.Model,
				BaseURL:        cc.BaseURL,
				MaxConcurrency: cc.MaxConcurrency,
			},
			APIKey:          cc.APIKey,
			EmbeddingClient: embedder,
		})
	})
}

// pipelineConfig maps the configuration file's retrieval section onto the
// pipeline knobs.
func pipelineConfig(rc config.RetrievalConfig) retrieval.Config {
	return retrieval.Config{
		SeedCandidates:   rc.SeedCandidates,
		EmbedTopK:        rc.EmbedTopK,
		NeighborLimit:    rc.NeighborLimit,
		NeighborDiscount: rc.NeighborDiscount,
		HopDepth:         rc.HopDepth,
		DiscountPolicy:   retrieval.DiscountPolicy(rc.DiscountPolicy),
		Alpha:            rc.Alpha,
		RerankTopN:       rc.RerankTopN,
		GraphTimeout:     rc.GraphTimeout,
		ProviderTimeout:  rc.ProviderTimeout,
	}
}

// Retrieve implements Engine.
func (c *Client) Retrieve(ctx context.Context, req retrieval.Request) (*types.RetrievalResult, error) {
	return c.orch.Retrieve(ctx, req)
}

// Compare runs one query through several modes concurrently and returns the
// per-mode results. An empty mode list means every mode. A failing mode
// fails the comparison; partial results would make mode-by-mode evaluation
// misleading.
func (c *Client) Compare(ctx context.Context, query, namespace string, topK int, modes []retrieval.Mode) (map[retrieval.Mode]*types.RetrievalResult, error) {
	if len(modes) == 0 {
		modes = retrieval.Modes()
	}

	var mu sync.Mutex
	results := make(map[retrieval.Mode]*types.RetrievalResult, len(modes))

	g, gctx := errgroup.WithContext(ctx)
	for _, mode := range modes {
		mode := mode
		g.Go(func() error {
			result, err := c.orch.Retrieve(gctx, retrieval.Request{
				Query:     query,
				TopK:      topK,
				Namespace: namespace,
				Mode:      mode,
			})
			if err != nil {
				return fmt.Errorf("mode %s: %w", mode, err)
			}
			mu.Lock()
			results[mode] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping implements Engine.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Healthy implements Engine. Without a circuit breaker the store is assumed
// reachable; failures then surface per request.
func (c *Client) Healthy() bool {
	if b, ok := c.store.(*store.BreakerStore); ok {
		return b.Healthy()
	}
	return true
}

// Modes returns the closed set of retrieval modes.
func (c *Client) Modes() []retrieval.Mode {
	return retrieval.Modes()
}

// Config returns the configuration the engine was built with, which may be
// nil when the engine was assembled from explicit components.
func (c *Client) Config() *config.Config {
	return c.config
}

// Close implements Engine.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			firstErr = err
		}
	}
	if c.encoder != nil {
		if err := c.encoder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.store.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
