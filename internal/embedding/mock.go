package embedding

import (
	"context"
	"hash/fnv"

	"github.com/cortexmemory/cortex/internal/domain"
)

// MockClient produces small deterministic vectors derived from the
// text's hash, so tests can exercise similarity search without a real
// provider. Matches the teacher's MockClient role exactly.
type MockClient struct{ dims int }

func NewMockClient() *MockClient { return &MockClient{dims: 8} }

func (c *MockClient) Embed(ctx context.Context, text string, sector domain.Sector) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(string(sector) + ":" + text))
	seed := h.Sum64()

	vec := make([]float32, c.dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>40)%1000) / 1000
	}
	return vec, nil
}
