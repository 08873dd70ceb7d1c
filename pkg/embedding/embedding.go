package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexigraph/lexigraph/pkg/types"
)

// Provider represents the type of embedding provider
type Provider string

const (
	// ProviderOpenAI uses the OpenAI embeddings API (or a compatible server)
	ProviderOpenAI Provider = "openai"

	// ProviderLocal uses go-embedeverything for in-process embedding
	ProviderLocal Provider = "local"
)

// DefaultMaxInputChars caps the text length sent to a provider. Longer inputs
// are truncated, never rejected.
const DefaultMaxInputChars = 10000

// Client generates vector embeddings for text.
type Client interface {
	// Embed generates embeddings for the given texts, index-aligned with the input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds settings shared by all embedding providers.
type Config struct {
	Model         string `json:"model" mapstructure:"model"`
	BaseURL       string `json:"base_url,omitempty" mapstructure:"base_url"`
	Dimensions    int    `json:"dimensions,omitempty" mapstructure:"dimensions"`
	BatchSize     int    `json:"batch_size,omitempty" mapstructure:"batch_size"`
	MaxInputChars int    `json:"max_input_chars,omitempty" mapstructure:"max_input_chars"`
}

// ClientConfig holds configuration for creating embedding clients
type ClientConfig struct {
	Provider Provider `json:"provider"`
	Config   Config   `json:"config"`
	APIKey   string   `json:"-"` // Not serialized, passed at runtime
	CacheDir string   `json:"cache_dir,omitempty"`
}

// NewClient creates a new embedding client based on the provider type.
// When CacheDir is set the provider is wrapped with a persistent cache.
func NewClient(clientConfig ClientConfig) (Client, error) {
	if clientConfig.Config.Model == "" {
		clientConfig.Config.Model = DefaultConfig(clientConfig.Provider).Model
	}

	var client Client
	switch clientConfig.Provider {
	case ProviderOpenAI:
		if clientConfig.APIKey == "" {
			return nil, fmt.Errorf("API key is required for OpenAI provider")
		}
		client = NewOpenAIEmbedder(clientConfig.APIKey, clientConfig.Config)

	case ProviderLocal:
		local, err := NewLocalEmbedder(clientConfig.Config)
		if err != nil {
			return nil, err
		}
		client = local

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", clientConfig.Provider)
	}

	if clientConfig.CacheDir != "" {
		cached, err := NewCachedClient(client, clientConfig.CacheDir, clientConfig.Config.Model, nil)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return cached, nil
	}
	return client, nil
}

// DefaultConfig returns a default configuration for the given provider
func DefaultConfig(provider Provider) Config {
	switch provider {
	case ProviderOpenAI:
		return Config{
			Model:         "text-embedding-3-small",
			BatchSize:     100,
			MaxInputChars: DefaultMaxInputChars,
		}
	case ProviderLocal:
		return Config{
			Model:         "all-MiniLM-L6-v2",
			Dimensions:    384,
			BatchSize:     32, // Local models embed in small batches
			MaxInputChars: DefaultMaxInputChars,
		}
	default:
		return Config{}
	}
}

// prepareTexts validates and truncates provider input. Whitespace-only text is
// rejected because providers return garbage vectors for it.
func prepareTexts(texts []string, maxChars int) ([]string, error) {
	prepared := make([]string, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, types.ErrEmptyText
		}
		prepared[i] = truncateText(text, maxChars)
	}
	return prepared, nil
}

func truncateText(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
