package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const defaultRerankerBaseURL = "https://api.jina.ai/v1"

// RerankerClient implements cross-encoder functionality against a
// Jina-compatible rerank API. Jina AI, vLLM, LocalAI and text-embeddings-
// inference all expose the same endpoint shape, so one client covers hosted
// and self-deployed reranking models.
type RerankerClient struct {
	config     Config
	apiKey     string
	httpClient *http.Client
}

// NewRerankerClient creates a new Jina-compatible reranker client. The API
// key may be empty for self-hosted endpoints that do not authenticate.
func NewRerankerClient(apiKey string, config Config) *RerankerClient {
	if config.Model == "" {
		config.Model = "BAAI/bge-reranker-v2-m3"
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultRerankerBaseURL
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	return &RerankerClient{
		config: config,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index int `json:"index"`
	// Jina and vLLM call the field relevance_score, TEI calls it score.
	RelevanceScore *float64 `json:"relevance_score"`
	Score          *float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// Rank ranks the given passages based on their relevance to the query.
func (c *RerankerClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	ranked := make([]RankedPassage, 0, len(passages))
	for start := 0; start < len(passages); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(passages) {
			end = len(passages)
		}

		batch, err := c.rankBatch(ctx, query, passages[start:end], start)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, batch...)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func (c *RerankerClient) rankBatch(ctx context.Context, query string, passages []string, offset int) ([]RankedPassage, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     c.config.Model,
		Query:     query,
		Documents: passages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rerank API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	ranked := make([]RankedPassage, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(passages) {
			return nil, fmt.Errorf("rerank result index %d out of range", result.Index)
		}

		var score float64
		switch {
		case result.RelevanceScore != nil:
			score = *result.RelevanceScore
		case result.Score != nil:
			score = *result.Score
		default:
			return nil, fmt.Errorf("rerank result for index %d has no score", result.Index)
		}

		ranked = append(ranked, RankedPassage{
			Passage: passages[result.Index],
			Score:   score,
			Index:   offset + result.Index,
		})
	}
	return ranked, nil
}

func (c *RerankerClient) endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if strings.HasSuffix(base, "/rerank") {
		return base
	}
	return base + "/rerank"
}

// Close cleans up any resources used by the client.
func (c *RerankerClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
