package crossencoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockRerankerClient(t *testing.T) {
	client := NewMockRerankerClient(DefaultConfig(ProviderMock))
	defer client.Close()

	ctx := context.Background()
	query := "thuế suất VAT dịch vụ giáo dục"
	passages := []string{
		"Thuế suất VAT cho dịch vụ giáo dục là 0%",
		"Trời hôm nay nắng đẹp",
		"Mức thuế suất áp dụng cho hàng hóa xuất khẩu",
		"Công thức nấu phở bò truyền thống",
	}

	results, err := client.Rank(ctx, query, passages)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(results) != len(passages) {
		t.Fatalf("Expected %d results, got %d", len(passages), len(results))
	}

	// Verify results are sorted by score (descending)
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("Results not sorted by score: %f < %f", results[i-1].Score, results[i].Score)
		}
	}

	// The first passage shares the most words with the query
	if results[0].Passage != passages[0] {
		t.Errorf("Expected top result %q, got %q", passages[0], results[0].Passage)
	}
}

func TestLocalRerankerClient(t *testing.T) {
	client := NewLocalRerankerClient(DefaultConfig(ProviderLocal))
	defer client.Close()

	ctx := context.Background()
	query := "điều kiện hoàn thuế giá trị gia tăng"
	passages := []string{
		"Điều kiện hoàn thuế giá trị gia tăng cho doanh nghiệp xuất khẩu",
		"Lịch thi đấu bóng đá cuối tuần",
		"Hồ sơ hoàn thuế bao gồm tờ khai và chứng từ nộp thuế",
		"Giá vé xem phim cuối tuần",
	}

	results, err := client.Rank(ctx, query, passages)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(results) != len(passages) {
		t.Fatalf("Expected %d results, got %d", len(passages), len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("Results not sorted by score: %f < %f", results[i-1].Score, results[i].Score)
		}
	}

	if results[0].Passage != passages[0] {
		t.Errorf("Expected top result %q, got %q", passages[0], results[0].Passage)
	}
	if results[len(results)-1].Score != 0 {
		// Unrelated passages share no terms with the query
		t.Logf("bottom score: %f", results[len(results)-1].Score)
	}
}

func TestRankedPassageIndex(t *testing.T) {
	client := NewMockRerankerClient(DefaultConfig(ProviderMock))
	defer client.Close()

	passages := []string{"alpha beta", "gamma delta", "alpha beta gamma"}
	results, err := client.Rank(context.Background(), "alpha gamma", passages)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	seen := make(map[int]bool)
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(passages) {
			t.Fatalf("Index %d out of range", result.Index)
		}
		if seen[result.Index] {
			t.Fatalf("Index %d returned twice", result.Index)
		}
		seen[result.Index] = true

		if passages[result.Index] != result.Passage {
			t.Errorf("Index %d does not match passage %q", result.Index, result.Passage)
		}
	}
}

func TestEmptyPassages(t *testing.T) {
	client := NewMockRerankerClient(DefaultConfig(ProviderMock))
	defer client.Close()

	results, err := client.Rank(context.Background(), "test query", []string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected 0 results for empty passages, got %d", len(results))
	}
}

func TestRerankerClientServer(t *testing.T) {
	tests := []struct {
		name       string
		scoreField string
	}{
		{name: "jina relevance_score field", scoreField: "relevance_score"},
		{name: "tei score field", scoreField: "score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/rerank" {
					t.Errorf("Expected path /rerank, got %s", r.URL.Path)
				}
				var req struct {
					Query     string   `json:"query"`
					Documents []string `json:"documents"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("Failed to decode request: %v", err)
				}

				// Score by passage length so the test controls the order.
				results := make([]map[string]any, len(req.Documents))
				for i, doc := range req.Documents {
					results[i] = map[string]any{
						"index":        i,
						tt.scoreField: float64(len(doc)) / 100,
					}
				}
				json.NewEncoder(w).Encode(map[string]any{"results": results})
			}))
			defer srv.Close()

			client := NewRerankerClient("test-key", Config{BaseURL: srv.URL})
			defer client.Close()

			passages := []string{"short", "the longest passage of them all", "medium one"}
			results, err := client.Rank(context.Background(), "query", passages)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if len(results) != len(passages) {
				t.Fatalf("Expected %d results, got %d", len(passages), len(results))
			}

			if results[0].Passage != passages[1] || results[0].Index != 1 {
				t.Errorf("Expected longest passage first with index 1, got %q (index %d)",
					results[0].Passage, results[0].Index)
			}
			if results[2].Passage != passages[0] || results[2].Index != 0 {
				t.Errorf("Expected shortest passage last with index 0, got %q (index %d)",
					results[2].Passage, results[2].Index)
			}
		})
	}
}

func TestRerankerClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRerankerClient("", Config{BaseURL: srv.URL})
	defer client.Close()

	_, err := client.Rank(context.Background(), "query", []string{"passage"})
	if err == nil {
		t.Fatal("Expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestRerankerClientBadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 7, "relevance_score": 0.9},
			},
		})
	}))
	defer srv.Close()

	client := NewRerankerClient("", Config{BaseURL: srv.URL})
	defer client.Close()

	_, err := client.Rank(context.Background(), "query", []string{"passage"})
	if err == nil {
		t.Fatal("Expected error for out-of-range index")
	}
}

// chatCompletionServer fakes an OpenAI-compatible chat endpoint returning a
// fixed completion.
func chatCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		})
	}))
}

func TestOpenAIRerankerClient(t *testing.T) {
	srv := chatCompletionServer(t, "```json\n[0.2, 0.9, 0.5]\n```")
	defer srv.Close()

	client := NewOpenAIRerankerClient("test-key", Config{BaseURL: srv.URL})
	defer client.Close()

	passages := []string{"first", "second", "third"}
	results, err := client.Rank(context.Background(), "query", passages)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	if results[0].Passage != "second" || results[0].Score != 0.9 || results[0].Index != 1 {
		t.Errorf("Unexpected top result: %+v", results[0])
	}
	if results[2].Passage != "first" || results[2].Index != 0 {
		t.Errorf("Unexpected bottom result: %+v", results[2])
	}
}

func TestOpenAIRerankerRepairsJSON(t *testing.T) {
	// Truncated array: the repair step closes it before decoding.
	srv := chatCompletionServer(t, "[0.7, 0.1")
	defer srv.Close()

	client := NewOpenAIRerankerClient("test-key", Config{BaseURL: srv.URL})
	defer client.Close()

	results, err := client.Rank(context.Background(), "query", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Expected repaired JSON to parse, got: %v", err)
	}
	if results[0].Score != 0.7 || results[0].Index != 0 {
		t.Errorf("Unexpected top result: %+v", results[0])
	}
}

func TestOpenAIRerankerScoreCountMismatch(t *testing.T) {
	srv := chatCompletionServer(t, "[0.5]")
	defer srv.Close()

	client := NewOpenAIRerankerClient("test-key", Config{BaseURL: srv.URL})
	defer client.Close()

	_, err := client.Rank(context.Background(), "query", []string{"a", "b", "c"})
	if err == nil {
		t.Fatal("Expected error when score count does not match passage count")
	}
	if !strings.Contains(err.Error(), "expected 3 scores") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenAIRerankerClampsScores(t *testing.T) {
	srv := chatCompletionServer(t, "[1.7, -0.3]")
	defer srv.Close()

	client := NewOpenAIRerankerClient("test-key", Config{BaseURL: srv.URL})
	defer client.Close()

	results, err := client.Rank(context.Background(), "query", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if results[0].Score != 1.0 {
		t.Errorf("Expected clamped top score 1.0, got %f", results[0].Score)
	}
	if results[1].Score != 0.0 {
		t.Errorf("Expected clamped bottom score 0.0, got %f", results[1].Score)
	}
}

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain array",
			input:    "[0.1, 0.2]",
			expected: "[0.1, 0.2]",
		},
		{
			name:     "json fence",
			input:    "```json\n[0.1, 0.2]\n```",
			expected: "[0.1, 0.2]",
		},
		{
			name:     "bare fence",
			input:    "```\n[0.1]\n```",
			expected: "[0.1]",
		},
		{
			name:     "think tags",
			input:    "<think>passage two wins</think>\n[0.1, 0.9]",
			expected: "[0.1, 0.9]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelOutput(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      ClientConfig
		expectError bool
	}{
		{
			name: "mock provider",
			config: ClientConfig{
				Provider: ProviderMock,
				Config:   DefaultConfig(ProviderMock),
			},
		},
		{
			name: "local provider",
			config: ClientConfig{
				Provider: ProviderLocal,
				Config:   DefaultConfig(ProviderLocal),
			},
		},
		{
			name: "reranker provider",
			config: ClientConfig{
				Provider: ProviderReranker,
				Config:   DefaultConfig(ProviderReranker),
				APIKey:   "test-key",
			},
		},
		{
			name: "rustbert provider loads lazily",
			config: ClientConfig{
				Provider: ProviderRustBert,
				Config:   DefaultConfig(ProviderRustBert),
			},
		},
		{
			name: "llm provider with api key",
			config: ClientConfig{
				Provider: ProviderLLM,
				Config:   DefaultConfig(ProviderLLM),
				APIKey:   "test-key",
			},
		},
		{
			name: "openai provider without api key",
			config: ClientConfig{
				Provider: ProviderOpenAI,
				Config:   DefaultConfig(ProviderOpenAI),
			},
			expectError: true,
		},
		{
			name: "llm provider without api key",
			config: ClientConfig{
				Provider: ProviderLLM,
				Config:   DefaultConfig(ProviderLLM),
			},
			expectError: true,
		},
		{
			name: "embedding provider without client",
			config: ClientConfig{
				Provider: ProviderEmbedding,
				Config:   DefaultConfig(ProviderEmbedding),
			},
			expectError: true,
		},
		{
			name: "unknown provider",
			config: ClientConfig{
				Provider: "unknown",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
				return
			}
			if client == nil {
				t.Errorf("Expected client, got nil")
				return
			}
			client.Close()
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		provider Provider
		expected Config
	}{
		{
			provider: ProviderReranker,
			expected: Config{
				Model:          "BAAI/bge-reranker-v2-m3",
				BatchSize:      100,
				MaxConcurrency: 3,
			},
		},
		{
			provider: ProviderOpenAI,
			expected: Config{
				Model:          "gpt-4o-mini",
				BatchSize:      10,
				MaxConcurrency: 5,
			},
		},
		{
			provider: ProviderLLM,
			expected: Config{
				Model:          "gpt-4o-mini",
				BatchSize:      10,
				MaxConcurrency: 5,
			},
		},
		{
			provider: ProviderLocal,
			expected: Config{
				BatchSize: 100,
			},
		},
		{
			provider: ProviderMock,
			expected: Config{
				BatchSize: 100,
			},
		},
		{
			provider: ProviderEmbedEverything,
			expected: Config{
				Model:          "BAAI/bge-reranker-base",
				BatchSize:      100,
				MaxConcurrency: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			config := DefaultConfig(tt.provider)

			if config.Model != tt.expected.Model {
				t.Errorf("Expected model %s, got %s", tt.expected.Model, config.Model)
			}
			if config.BatchSize != tt.expected.BatchSize {
				t.Errorf("Expected batch size %d, got %d", tt.expected.BatchSize, config.BatchSize)
			}
			if config.MaxConcurrency != tt.expected.MaxConcurrency {
				t.Errorf("Expected max concurrency %d, got %d", tt.expected.MaxConcurrency, config.MaxConcurrency)
			}
		})
	}
}

func TestEmbedEverythingClient(t *testing.T) {
	// This test requires model downloads from Hugging Face and may fail if:
	// 1. No internet connection
	// 2. Model URL is not accessible
	// 3. Model format is not compatible
	// Skip if client creation fails
	client, err := NewEmbedEverythingClient(DefaultConfig(ProviderEmbedEverything))
	if err != nil {
		t.Skipf("Skipping EmbedEverything test: %v", err)
		return
	}
	defer client.Close()

	ctx := context.Background()
	query := "machine learning algorithms"
	passages := []string{
		"Machine learning algorithms are used in data science",
		"Cooking recipes for dinner tonight",
		"Neural networks and deep learning",
	}

	results, err := client.Rank(ctx, query, passages)
	if err != nil {
		t.Fatalf("Expected no error during ranking, got: %v", err)
	}

	if len(results) != len(passages) {
		t.Fatalf("Expected %d results, got %d", len(passages), len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("Results not sorted by score: %f < %f", results[i-1].Score, results[i].Score)
		}
	}
}

// Benchmark tests
func BenchmarkMockReranker(b *testing.B) {
	client := NewMockRerankerClient(DefaultConfig(ProviderMock))
	defer client.Close()

	ctx := context.Background()
	query := "thuế suất giá trị gia tăng"
	passages := []string{
		"Thuế suất VAT cho dịch vụ giáo dục",
		"Mức thuế áp dụng cho hàng xuất khẩu",
		"Quy định về hóa đơn điện tử",
		"Điều kiện khấu trừ thuế đầu vào",
		"Thời hạn nộp tờ khai thuế",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := client.Rank(ctx, query, passages)
		if err != nil {
			b.Fatalf("Benchmark failed: %v", err)
		}
	}
}

func BenchmarkLocalReranker(b *testing.B) {
	client := NewLocalRerankerClient(DefaultConfig(ProviderLocal))
	defer client.Close()

	ctx := context.Background()
	query := "thuế suất giá trị gia tăng"
	passages := []string{
		"Thuế suất VAT cho dịch vụ giáo dục",
		"Mức thuế áp dụng cho hàng xuất khẩu",
		"Quy định về hóa đơn điện tử",
		"Điều kiện khấu trừ thuế đầu vào",
		"Thời hạn nộp tờ khai thuế",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := client.Rank(ctx, query, passages)
		if err != nil {
			b.Fatalf("Benchmark failed: %v", err)
		}
	}
}
