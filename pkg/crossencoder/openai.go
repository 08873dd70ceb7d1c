package crossencoder

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
)

const scoringSystemPrompt = `You are a relevance scoring engine. Given a query and a numbered list of passages, score how relevant each passage is to the query on a scale from 0.0 (irrelevant) to 1.0 (highly relevant). Respond with only a JSON array of numbers, one per passage, in the same order as the passages. No explanations.`

// OpenAIRerankerClient implements cross-encoder functionality using an OpenAI
// chat model. Each batch of passages is scored in a single completion that
// returns a JSON array of relevance scores.
type OpenAIRerankerClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIRerankerClient creates a new OpenAI-based reranker client. Setting
// Config.BaseURL points it at any OpenAI-compatible chat endpoint.
func NewOpenAIRerankerClient(apiKey string, config Config) *OpenAIRerankerClient {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIRerankerClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Rank ranks the given passages based on their relevance to the query.
// Batches are scored concurrently, bounded by MaxConcurrency.
func (c *OpenAIRerankerClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	if len(passages) == 0 {
		return []RankedPassage{}, nil
	}

	type span struct{ start, end int }
	var spans []span
	for start := 0; start < len(passages); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(passages) {
			end = len(passages)
		}
		spans = append(spans, span{start, end})
	}

	scores := make([]float64, len(passages))
	errs := make([]error, len(spans))
	semaphore := make(chan struct{}, c.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, sp := range spans {
		wg.Add(1)
		go func(i int, sp span) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			batchScores, err := c.scoreBatch(ctx, query, passages[sp.start:sp.end])
			if err != nil {
				errs[i] = err
				return
			}
			copy(scores[sp.start:sp.end], batchScores)
		}(i, sp)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	ranked := make([]RankedPassage, len(passages))
	for i, passage := range passages {
		ranked[i] = RankedPassage{
			Passage: passage,
			Score:   scores[i],
			Index:   i,
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func (c *OpenAIRerankerClient) scoreBatch(ctx context.Context, query string, passages []string) ([]float64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nPassages:\n", query)
	for i, passage := range passages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, passage)
	}
	fmt.Fprintf(&sb, "\nReturn a JSON array of exactly %d numbers.", len(passages))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scoring request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("scoring response has no choices")
	}

	content := cleanModelOutput(resp.Choices[0].Message.Content)
	repaired, _ := jsonrepair.JSONRepair(content)

	var scores []float64
	if err := json.Unmarshal([]byte(repaired), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse scores %q: %w", content, err)
	}
	if len(scores) != len(passages) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(passages), len(scores))
	}

	for i, score := range scores {
		if score < 0 {
			scores[i] = 0
		} else if score > 1 {
			scores[i] = 1
		}
	}
	return scores, nil
}

// cleanModelOutput strips reasoning tags and markdown fences that chat models
// wrap around JSON payloads.
func cleanModelOutput(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.LastIndex(content, "</think>"); idx >= 0 {
		content = content[idx+len("</think>"):]
	}
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// Close cleans up any resources used by the client.
func (c *OpenAIRerankerClient) Close() error {
	return nil
}
