package crossencoder

import (
	"context"
	"fmt"

	"github.com/lexigraph/lexigraph/pkg/embedding"
)

// Provider represents the type of cross-encoder provider
type Provider string

const (
	// ProviderReranker uses Jina-compatible reranking APIs (Jina, vLLM, LocalAI, TEI, etc.)
	ProviderReranker Provider = "reranker"

	// ProviderOpenAI uses an OpenAI chat model for reranking
	ProviderOpenAI Provider = "openai"

	// ProviderLLM is the configuration-facing name for the chat-model
	// reranker; it constructs the same client as ProviderOpenAI
	ProviderLLM Provider = "llm"

	// ProviderRustBert uses an in-process extractive QA model via go-rust-bert
	ProviderRustBert Provider = "rustbert"

	// ProviderEmbedding uses embedding-based similarity for reranking
	ProviderEmbedding Provider = "embedding"

	// ProviderEmbedEverything uses go-embedeverything for local reranking
	ProviderEmbedEverything Provider = "embedeverything"

	// ProviderLocal uses local text similarity algorithms
	ProviderLocal Provider = "local"

	// ProviderMock uses mock implementation for testing
	ProviderMock Provider = "mock"
)

// RankedPassage is a passage with its relevance score. Index is the passage's
// position in the Rank input so callers can realign scores with whatever the
// passages were extracted from.
type RankedPassage struct {
	Passage string  `json:"passage"`
	Score   float64 `json:"score"`
	Index   int     `json:"index"`
}

// Client ranks passages by relevance to a query.
type Client interface {
	// Rank scores every passage against the query and returns them sorted by
	// score descending.
	Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error)

	// Close cleans up any resources used by the client.
	Close() error
}

// Config holds configuration shared by cross-encoder providers.
type Config struct {
	Model          string `json:"model" mapstructure:"model"`
	BaseURL        string `json:"base_url,omitempty" mapstructure:"base_url"`
	BatchSize      int    `json:"batch_size,omitempty" mapstructure:"batch_size"`
	MaxConcurrency int    `json:"max_concurrency,omitempty" mapstructure:"max_concurrency"`
}

// ClientConfig holds configuration for creating cross-encoder clients
type ClientConfig struct {
	Provider        Provider         `json:"provider"`
	Config          Config           `json:"config"`
	APIKey          string           `json:"-"` // Not serialized, passed at runtime
	EmbeddingClient embedding.Client `json:"-"` // Required for embedding provider
}

// NewClient creates a new cross-encoder client based on the provider type
func NewClient(clientConfig ClientConfig) (Client, error) {
	switch clientConfig.Provider {
	case ProviderReranker:
		return NewRerankerClient(clientConfig.APIKey, clientConfig.Config), nil

	case ProviderOpenAI, ProviderLLM:
		if clientConfig.APIKey == "" {
			return nil, fmt.Errorf("API key is required for OpenAI provider")
		}
		return NewOpenAIRerankerClient(clientConfig.APIKey, clientConfig.Config), nil

	case ProviderRustBert:
		return NewRustBertClient(clientConfig.Config), nil

	case ProviderEmbedding:
		if clientConfig.EmbeddingClient == nil {
			return nil, fmt.Errorf("embedding client is required for embedding provider")
		}
		return NewEmbeddingRerankerClient(clientConfig.EmbeddingClient, clientConfig.Config), nil

	case ProviderEmbedEverything:
		return NewEmbedEverythingClient(clientConfig.Config)

	case ProviderLocal:
		return NewLocalRerankerClient(clientConfig.Config), nil

	case ProviderMock:
		return NewMockRerankerClient(clientConfig.Config), nil

	default:
		return nil, fmt.Errorf("unsupported cross-encoder provider: %s", clientConfig.Provider)
	}
}

// DefaultConfig returns a default configuration for the given provider
func DefaultConfig(provider Provider) Config {
	switch provider {
	case ProviderReranker:
		return Config{
			Model:          "BAAI/bge-reranker-v2-m3",
			BatchSize:      100, // Jina-compatible APIs can handle large batches
			MaxConcurrency: 3,   // Conservative for external APIs
		}
	case ProviderOpenAI, ProviderLLM:
		return Config{
			Model:          "gpt-4o-mini",
			BatchSize:      10,
			MaxConcurrency: 5,
		}
	case ProviderRustBert:
		return Config{
			BatchSize:      10,
			MaxConcurrency: 1, // The model is not safe for concurrent prediction
		}
	case ProviderEmbedding:
		return Config{
			BatchSize:      50,
			MaxConcurrency: 10,
		}
	case ProviderEmbedEverything:
		return Config{
			Model:          "BAAI/bge-reranker-base",
			BatchSize:      100,
			MaxConcurrency: 1,
		}
	case ProviderLocal:
		return Config{
			BatchSize: 100, // Local processing can handle larger batches
		}
	case ProviderMock:
		return Config{
			BatchSize: 100,
		}
	default:
		return Config{}
	}
}
