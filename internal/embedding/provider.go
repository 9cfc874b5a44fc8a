package embedding

import (
	"fmt"

	"github.com/cortexmemory/cortex/internal/domain"
)

// Provider name constants.
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient creates an embedding provider based on the provider name,
// matching the teacher's NewClient factory shape.
func NewClient(provider, apiKey string, rps float64, burst int) (domain.EmbeddingProvider, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
		}
		return NewOpenAIClient(apiKey, rps, burst), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: openai, mock)", provider)
	}
}
