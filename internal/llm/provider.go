package llm

import (
	"fmt"

	"github.com/cortexmemory/cortex/internal/domain"
)

// NewSummarySynthesizer resolves the configured summarizer provider.
// "deterministic" is handled by the caller (service.DeterministicSynthesizer)
// since it needs no API key; this factory only covers providers that do.
func NewSummarySynthesizer(provider, apiKey string) (domain.SummarySynthesizer, error) {
	switch provider {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai summary provider")
		}
		return NewOpenAIClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown summary provider: %s (valid options: deterministic, openai)", provider)
	}
}
