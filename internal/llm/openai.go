// Package llm provides the optional, non-default consolidation
// summarizer. The core engine's default summarizer is deterministic
// (service.DeterministicSynthesizer); wiring an OpenAIClient here trades
// that determinism for LLM-authored prose, and is opt-in via
// config.SummaryProvider.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cortexmemory/cortex/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

// OpenAIClient is a hand-rolled chat-completion caller, matching the
// teacher's own LLM client shape rather than pulling in a provider SDK.
type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, httpClient: &http.Client{}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Synthesize implements domain.SummarySynthesizer by asking the model
// to summarize the cluster's content in one paragraph.
func (c *OpenAIClient) Synthesize(ctx context.Context, sources []*domain.Memory) (string, error) {
	var b strings.Builder
	b.WriteString("Summarize the following related memories into one concise paragraph:\n")
	for _, m := range sources {
		b.WriteString("- ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: "You write short, factual summaries of a cluster of related notes."},
		{Role: "user", Content: b.String()},
	}, 0.2)
	if err != nil {
		return "", domain.WrapError(domain.ErrStorageFailed, "llm summary synthesis failed", err)
	}
	return content, nil
}

func (c *OpenAIClient) complete(ctx context.Context, messages []chatMessage, temp float32) (string, error) {
	body, err := json.Marshal(chatRequest{Model: chatModel, Messages: messages, Temperature: temp})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat provider returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
