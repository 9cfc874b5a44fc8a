package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	model              = "text-embedding-3-small"
)

// OpenAIClient calls OpenAI's embeddings endpoint directly over
// net/http, matching the teacher's hand-rolled client rather than
// pulling in an SDK. It wraps every call in a rate limiter (outbound
// throttling, the same library the teacher used for inbound HTTP
// limiting) and a circuit breaker so a provider outage surfaces as
// EMBEDDING_FAILED quickly instead of hanging every caller.
type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

func NewOpenAIClient(apiKey string, rps float64, burst int) *OpenAIClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		breaker:    cb,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates one embedding vector. The sector parameter is not
// sent to the provider (the provider has no notion of sectors); the
// memory repository calls Embed once per sector so each gets its own
// vector, matching component B's one-vector-per-sector requirement.
func (c *OpenAIClient) Embed(ctx context.Context, text string, sector domain.Sector) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingFailed, "rate limit wait", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingFailed, "embedding provider call failed", err)
	}
	return result.([]float32), nil
}

func (c *OpenAIClient) call(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEmbeddingURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal embedding response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embedding provider error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding provider returned status %d", resp.StatusCode)
	}
	return parsed.Data[0].Embedding, nil
}
