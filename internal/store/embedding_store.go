package store

import (
	"context"
	"math"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingStore is the pgvector-backed implementation of
// domain.EmbeddingStore (component B), grounded on the teacher's
// FindSimilar/Recall cosine-distance queries (`embedding <=> $N`).
type EmbeddingStore struct{}

func NewEmbeddingStore() *EmbeddingStore { return &EmbeddingStore{} }

func (s *EmbeddingStore) Upsert(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID, sector domain.Sector, vector []float32) error {
	vector = normalize(vector)
	_, err := q.Exec(ctx,
		`INSERT INTO memory_embeddings (namespace, memory_id, sector, vector)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (memory_id, sector) DO UPDATE SET vector = EXCLUDED.vector, namespace = EXCLUDED.namespace`,
		namespace, memoryID, sector, pgvector.NewVector(vector),
	)
	return wrapStorage(err, "upsert embedding")
}

func (s *EmbeddingStore) Get(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID, sector domain.Sector) ([]float32, error) {
	var v pgvector.Vector
	row := q.QueryRow(ctx,
		`SELECT vector FROM memory_embeddings WHERE namespace = $1 AND memory_id = $2 AND sector = $3`,
		namespace, memoryID, sector,
	)
	if err := row.Scan(&v); err != nil {
		return nil, wrapNotFound(err, "get embedding")
	}
	return v.Slice(), nil
}

func (s *EmbeddingStore) DeleteAllForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM memory_embeddings WHERE namespace = $1 AND memory_id = $2`, namespace, memoryID)
	return wrapStorage(err, "delete embeddings")
}

func (s *EmbeddingStore) TopKBySimilarity(ctx context.Context, q domain.Querier, namespace string, sector domain.Sector, query []float32, k int, minSimilarity float64) ([]domain.SimilarityMatch, error) {
	query = normalize(query)
	rows, err := q.Query(ctx,
		`SELECT memory_id, 1 - (vector <=> $1) AS score
		 FROM memory_embeddings
		 WHERE namespace = $2 AND sector = $3 AND 1 - (vector <=> $1) >= $5
		 ORDER BY vector <=> $1, memory_id ASC
		 LIMIT $4`,
		pgvector.NewVector(query), namespace, sector, k, minSimilarity,
	)
	if err != nil {
		return nil, wrapStorage(err, "similarity search")
	}
	defer rows.Close()

	var out []domain.SimilarityMatch
	for rows.Next() {
		var m domain.SimilarityMatch
		if err := rows.Scan(&m.MemoryID, &m.Similarity); err != nil {
			return nil, wrapStorage(err, "scan similarity row")
		}
		if math.IsNaN(m.Similarity) {
			// cosine distance is undefined when either vector is all zeros
			if minSimilarity > 0 {
				continue
			}
			m.Similarity = 0
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// normalize zeroes any vector containing NaN/Inf components. An all-zero
// vector is passed through unchanged; its cosine distance is undefined,
// and TopKBySimilarity reports such a row with similarity 0.
func normalize(v []float32) []float32 {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			out := make([]float32, len(v))
			return out
		}
	}
	return v
}
