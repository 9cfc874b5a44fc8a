package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting store
// methods run either standalone or inside a caller-managed transaction —
// the same pattern the teacher uses to thread a transaction through a
// multi-step write.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Row and Rows abstract pgx.Row/pgx.Rows just enough for the store
// package to avoid importing pgx directly in its interfaces.
type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Row
	Next() bool
	Close()
	Err() error
}

// MemoryStore is the low-level persistence contract for memory records.
type MemoryStore interface {
	Insert(ctx context.Context, q Querier, m *Memory) error
	Get(ctx context.Context, q Querier, namespace string, id uuid.UUID) (*Memory, error)
	Update(ctx context.Context, q Querier, m *Memory) error
	SoftDelete(ctx context.Context, q Querier, namespace string, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, q Querier, namespace string, id uuid.UUID) error
	ListBySector(ctx context.Context, q Querier, namespace string, sector Sector, includeDeleted bool) ([]*Memory, error)
	ListAll(ctx context.Context, q Querier, namespace string, includeDeleted bool) ([]*Memory, error)
}

// EmbeddingStore holds the per-sector vectors for every memory.
type EmbeddingStore interface {
	Upsert(ctx context.Context, q Querier, namespace string, memoryID uuid.UUID, sector Sector, vector []float32) error
	Get(ctx context.Context, q Querier, namespace string, memoryID uuid.UUID, sector Sector) ([]float32, error)
	DeleteAllForMemory(ctx context.Context, q Querier, namespace string, memoryID uuid.UUID) error
	// TopKBySimilarity returns up to k memory IDs and their cosine
	// similarity to query, restricted to sector and namespace, excluding
	// any match below minSimilarity. Results are ordered by descending
	// similarity, ties broken by ascending memory ID.
	TopKBySimilarity(ctx context.Context, q Querier, namespace string, sector Sector, query []float32, k int, minSimilarity float64) ([]SimilarityMatch, error)
}

type SimilarityMatch struct {
	MemoryID   uuid.UUID
	Similarity float64
}

// LinkStore persists waypoint graph edges.
type LinkStore interface {
	Upsert(ctx context.Context, q Querier, l *Link) error
	ListForMemory(ctx context.Context, q Querier, namespace string, memoryID uuid.UUID) ([]*Link, error)
	DeleteAllForMemory(ctx context.Context, q Querier, namespace string, memoryID uuid.UUID) error
	ListAll(ctx context.Context, q Querier, namespace string) ([]*Link, error)
}

// ReinforcementStore persists the append-only reinforcement event log.
type ReinforcementStore interface {
	Append(ctx context.Context, q Querier, e *ReinforcementEvent) error
	MostRecent(ctx context.Context, q Querier, memoryID uuid.UUID) (*ReinforcementEvent, error)
	ListForMemory(ctx context.Context, q Querier, memoryID uuid.UUID) ([]*ReinforcementEvent, error)
}

// TxRunner abstracts pgxpool.Pool.Begin so services can be tested
// against a fake that doesn't require a live database.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

// EmbeddingProvider generates embedding vectors for text. Implementations
// may wrap rate limiting and circuit breaking around a remote API.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string, sector Sector) ([]float32, error)
}

// SummarySynthesizer produces the textual content of a consolidation
// summary from the content of its source cluster. The default
// implementation is a deterministic template; an LLM-backed
// implementation may also be wired in, at the cost of determinism.
type SummarySynthesizer interface {
	Synthesize(ctx context.Context, sources []*Memory) (string, error)
}
