package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexigraph/lexigraph/pkg/embedding"
	"github.com/lexigraph/lexigraph/pkg/types"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		config embedding.Config
	}{
		{
			name:   "valid API key",
			apiKey: "test-api-key",
			config: embedding.Config{Model: "text-embedding-ada-002"},
		},
		{
			name:   "custom model",
			apiKey: "test-api-key",
			config: embedding.Config{Model: "text-embedding-3-small"},
		},
		{
			name:   "custom base URL",
			apiKey: "test-api-key",
			config: embedding.Config{Model: "text-embedding-ada-002", BaseURL: "https://api.example.com"},
		},
		{
			name:   "empty model uses default",
			apiKey: "test-api-key",
			config: embedding.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedding.NewOpenAIEmbedder(tt.apiKey, tt.config)
			assert.NotNil(t, client)
			assert.Greater(t, client.Dimensions(), 0)
		})
	}
}

func TestEmbedderInterface(t *testing.T) {
	var _ embedding.Client = (*embedding.OpenAIEmbedder)(nil)
	var _ embedding.Client = (*embedding.LocalEmbedder)(nil)
	var _ embedding.Client = (*embedding.CachedClient)(nil)
	var _ embedding.Client = (*embedding.LazyClient)(nil)
}

func TestEmbedderConfig(t *testing.T) {
	tests := []struct {
		name         string
		config       embedding.Config
		expectedDims int
	}{
		{
			name:         "ada-002",
			config:       embedding.Config{Model: "text-embedding-ada-002"},
			expectedDims: 1536,
		},
		{
			name:         "3-small",
			config:       embedding.Config{Model: "text-embedding-3-small"},
			expectedDims: 1536,
		},
		{
			name:         "3-large",
			config:       embedding.Config{Model: "text-embedding-3-large"},
			expectedDims: 3072,
		},
		{
			name:         "custom dimensions win",
			config:       embedding.Config{Model: "custom-model", Dimensions: 512},
			expectedDims: 512,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedding.NewOpenAIEmbedder("test-key", tt.config)
			assert.Equal(t, tt.expectedDims, client.Dimensions())
		})
	}
}

// embeddingsHandler fakes an OpenAI-compatible /embeddings endpoint. Each
// returned vector encodes the rune length of its input so tests can observe
// what the client actually sent.
func embeddingsHandler(t *testing.T, requests *[][]string, reverse bool) http.HandlerFunc {
	t.Helper()
	var mu sync.Mutex
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		*requests = append(*requests, req.Input)
		mu.Unlock()

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, len(req.Input))
		for i, text := range req.Input {
			data[i] = item{
				Object:    "embedding",
				Index:     i,
				Embedding: []float32{float32(utf8.RuneCountInString(text)), float32(i)},
			}
		}
		if reverse {
			for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
				data[i], data[j] = data[j], data[i]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		}))
	}
}

func TestOpenAIEmbedderCompatibleServer(t *testing.T) {
	var requests [][]string
	srv := httptest.NewServer(embeddingsHandler(t, &requests, false))
	defer srv.Close()

	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:   "text-embedding-3-small",
		BaseURL: srv.URL,
	})
	defer client.Close()

	embeddings, err := client.Embed(context.Background(), []string{"xin chào", "thuế suất VAT"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, float32(utf8.RuneCountInString("xin chào")), embeddings[0][0])
	assert.Equal(t, float32(utf8.RuneCountInString("thuế suất VAT")), embeddings[1][0])
}

func TestOpenAIEmbedderRealignsByIndex(t *testing.T) {
	var requests [][]string
	srv := httptest.NewServer(embeddingsHandler(t, &requests, true))
	defer srv.Close()

	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:   "text-embedding-3-small",
		BaseURL: srv.URL,
	})
	defer client.Close()

	embeddings, err := client.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	// The response arrived reversed; the index field restores input order.
	assert.Equal(t, float32(1), embeddings[0][0])
	assert.Equal(t, float32(2), embeddings[1][0])
	assert.Equal(t, float32(3), embeddings[2][0])
}

func TestOpenAIEmbedderTruncatesLongInput(t *testing.T) {
	var requests [][]string
	srv := httptest.NewServer(embeddingsHandler(t, &requests, false))
	defer srv.Close()

	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:         "text-embedding-3-small",
		BaseURL:       srv.URL,
		MaxInputChars: 50,
	})
	defer client.Close()

	long := strings.Repeat("điều ", 100)
	vec, err := client.EmbedSingle(context.Background(), long)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Len(t, requests[0], 1)
	assert.Equal(t, 50, utf8.RuneCountInString(requests[0][0]))
	assert.True(t, strings.HasPrefix(long, requests[0][0]))
	assert.Equal(t, float32(50), vec[0])
}

func TestOpenAIEmbedderBatches(t *testing.T) {
	var requests [][]string
	srv := httptest.NewServer(embeddingsHandler(t, &requests, false))
	defer srv.Close()

	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:     "text-embedding-3-small",
		BaseURL:   srv.URL,
		BatchSize: 2,
	})
	defer client.Close()

	embeddings, err := client.Embed(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	require.Len(t, embeddings, 5)
	assert.Len(t, requests, 3)
	for i, want := range []float32{1, 2, 3, 4, 5} {
		assert.Equal(t, want, embeddings[i][0])
	}
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	// No server: validation fails before any request is made.
	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:   "text-embedding-3-small",
		BaseURL: "http://127.0.0.1:1",
	})
	defer client.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := client.Embed(context.Background(), []string{"fine", text})
		assert.ErrorIs(t, err, types.ErrEmptyText)

		_, err = client.EmbedSingle(context.Background(), text)
		assert.ErrorIs(t, err, types.ErrEmptyText)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	client := embedding.NewOpenAIEmbedder("test-key", embedding.Config{
		Model:   "text-embedding-3-small",
		BaseURL: "http://127.0.0.1:1",
	})
	defer client.Close()

	embeddings, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestNewClientFactory(t *testing.T) {
	t.Run("unsupported provider", func(t *testing.T) {
		_, err := embedding.NewClient(embedding.ClientConfig{Provider: "quantum"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported embedding provider")
	})

	t.Run("openai requires api key", func(t *testing.T) {
		_, err := embedding.NewClient(embedding.ClientConfig{Provider: embedding.ProviderOpenAI})
		require.Error(t, err)
	})

	t.Run("openai", func(t *testing.T) {
		client, err := embedding.NewClient(embedding.ClientConfig{
			Provider: embedding.ProviderOpenAI,
			APIKey:   "test-key",
		})
		require.NoError(t, err)
		defer client.Close()
		assert.IsType(t, (*embedding.OpenAIEmbedder)(nil), client)
	})

	t.Run("openai with cache dir", func(t *testing.T) {
		client, err := embedding.NewClient(embedding.ClientConfig{
			Provider: embedding.ProviderOpenAI,
			APIKey:   "test-key",
			CacheDir: t.TempDir(),
		})
		require.NoError(t, err)
		defer client.Close()
		assert.IsType(t, (*embedding.CachedClient)(nil), client)
	})
}

func TestDefaultConfig(t *testing.T) {
	openaiCfg := embedding.DefaultConfig(embedding.ProviderOpenAI)
	assert.Equal(t, "text-embedding-3-small", openaiCfg.Model)
	assert.Equal(t, embedding.DefaultMaxInputChars, openaiCfg.MaxInputChars)

	localCfg := embedding.DefaultConfig(embedding.ProviderLocal)
	assert.Equal(t, "all-MiniLM-L6-v2", localCfg.Model)
	assert.Equal(t, 384, localCfg.Dimensions)
}

func TestLocalEmbedder(t *testing.T) {
	t.Skip("Skip integration test - requires local model download")

	client, err := embedding.NewLocalEmbedder(embedding.Config{})
	require.NoError(t, err)
	defer client.Close()

	embeddings, err := client.Embed(context.Background(), []string{"Hello world", "Another text"})
	require.NoError(t, err)
	assert.Len(t, embeddings, 2)
	for _, vec := range embeddings {
		assert.Equal(t, client.Dimensions(), len(vec))
	}
}
