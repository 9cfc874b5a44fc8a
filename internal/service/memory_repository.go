package service

import (
	"context"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryRepository is the transactional façade over the memory,
// embedding, and link stores (component C), grounded on the teacher's
// MemoryService.createWithOptions: validate, embed, persist, link
// best-effort. Only the persist step (row plus embeddings) runs inside
// one transaction; embedding happens before it, and link building runs
// afterwards in a transaction of its own.
type MemoryRepository struct {
	tx         domain.TxRunner
	memories   domain.MemoryStore
	embeddings domain.EmbeddingStore
	links      domain.LinkStore
	provider   domain.EmbeddingProvider
	graph      *GraphBuilder
	decay      *DecayEngine
	logger     *zap.Logger
	now        func() time.Time
}

func NewMemoryRepository(
	tx domain.TxRunner,
	memories domain.MemoryStore,
	embeddings domain.EmbeddingStore,
	links domain.LinkStore,
	provider domain.EmbeddingProvider,
	graph *GraphBuilder,
	decay *DecayEngine,
	logger *zap.Logger,
) *MemoryRepository {
	return &MemoryRepository{
		tx: tx, memories: memories, embeddings: embeddings, links: links,
		provider: provider, graph: graph, decay: decay, logger: logger, now: time.Now,
	}
}

// Create validates the input, embeds the content once per sector,
// inserts the row and its embeddings, and best-effort builds waypoint
// links — a link-building failure is logged, not propagated, matching
// the teacher's "non-blocking policy enforcement and graph building".
func (r *MemoryRepository) Create(ctx context.Context, in domain.CreateMemoryInput) (*domain.Memory, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := &domain.Memory{
		ID:        uuid.New(),
		Namespace: in.Namespace,
		Sector:    in.Sector,
		Content:   in.Content,
		Metadata:  in.Metadata,
		Strength:  in.Strength,
		Salience:  in.Salience,
	}
	if m.Strength == 0 {
		m.Strength = 1.0
	}
	if m.Salience == 0 {
		m.Salience = 0.5
	}

	vectors := make(map[domain.Sector][]float32, len(domain.AllSectors))
	for _, sector := range domain.AllSectors {
		v, err := r.provider.Embed(ctx, in.Content, sector)
		if err != nil {
			return nil, err
		}
		vectors[sector] = v
	}

	err := r.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		if err := r.memories.Insert(ctx, q, m); err != nil {
			return err
		}
		for sector, v := range vectors {
			if err := r.embeddings.Upsert(ctx, q, m.Namespace, m.ID, sector, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.graph != nil {
		if err := r.graph.LinkNewMemory(ctx, m); err != nil {
			r.logger.Warn("waypoint link building failed", zap.String("memoryId", m.ID.String()), zap.Error(err))
		}
	}

	return m, nil
}

// Get fetches a memory by id, along with every link incident on it, and
// triggers the access-reinforcement side effect: accessCount increments
// and strength is nudged up (diminished if reinforced within the last
// hour) via the decay engine's AutoReinforceOnAccess.
func (r *MemoryRepository) Get(ctx context.Context, namespace string, id uuid.UUID) (*domain.Memory, []*domain.Link, error) {
	var links []*domain.Link
	err := r.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		var err error
		links, err = r.links.ListForMemory(ctx, q, namespace, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	m, err := r.decay.AutoReinforceOnAccess(ctx, namespace, id)
	if err != nil {
		return nil, nil, err
	}
	return m, links, nil
}

// Update applies the fields set in in (content, metadata, strength,
// salience). When Content changes, every sector embedding is
// regenerated; reinforcement history is left untouched, and Strength
// changes only when in.Strength is set (§9: update preserves
// reinforcement history).
func (r *MemoryRepository) Update(ctx context.Context, namespace string, id uuid.UUID, in domain.UpdateMemoryInput) (*domain.Memory, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var vectors map[domain.Sector][]float32
	if in.Content != nil {
		vectors = make(map[domain.Sector][]float32, len(domain.AllSectors))
		for _, sector := range domain.AllSectors {
			v, err := r.provider.Embed(ctx, *in.Content, sector)
			if err != nil {
				return nil, err
			}
			vectors[sector] = v
		}
	}

	var m *domain.Memory
	err := r.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		existing, err := r.memories.Get(ctx, q, namespace, id)
		if err != nil {
			return err
		}
		if in.Content != nil {
			existing.Content = *in.Content
		}
		if in.Metadata != nil {
			existing.Metadata = in.Metadata
		}
		if in.Strength != nil {
			existing.Strength = *in.Strength
		}
		if in.Salience != nil {
			existing.Salience = *in.Salience
		}
		if err := r.memories.Update(ctx, q, existing); err != nil {
			return err
		}
		for sector, v := range vectors {
			if err := r.embeddings.Upsert(ctx, q, existing.Namespace, existing.ID, sector, v); err != nil {
				return err
			}
		}
		m = existing
		return nil
	})
	return m, err
}

// SoftDelete marks a memory deleted without removing its row, links, or
// embeddings — it remains addressable by Get but excluded from search
// and consolidation sourcing.
func (r *MemoryRepository) SoftDelete(ctx context.Context, namespace string, id uuid.UUID) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		return r.memories.SoftDelete(ctx, q, namespace, id, r.now())
	})
}

// HardDelete removes a memory and cascades to its embeddings and links.
func (r *MemoryRepository) HardDelete(ctx context.Context, namespace string, id uuid.UUID) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		if err := r.links.DeleteAllForMemory(ctx, q, namespace, id); err != nil {
			return err
		}
		if err := r.embeddings.DeleteAllForMemory(ctx, q, namespace, id); err != nil {
			return err
		}
		return r.memories.HardDelete(ctx, q, namespace, id)
	})
}

// BatchDelete hard-deletes every memory in ids, recording each id's
// outcome independently — one id failing (e.g. NOT_FOUND) does not stop
// the rest from being attempted. Closing cancel between items aborts
// the remainder of the batch immediately, with everything processed so
// far left in the result.
func (r *MemoryRepository) BatchDelete(ctx context.Context, namespace string, ids []uuid.UUID, cancel <-chan struct{}) (domain.BatchDeleteResult, error) {
	var result domain.BatchDeleteResult
	for _, id := range ids {
		select {
		case <-cancel:
			return result, domain.NewError(domain.ErrCancelled, "batch delete cancelled")
		default:
		}
		if err := r.HardDelete(ctx, namespace, id); err != nil {
			result.FailureCount++
			result.Failures = append(result.Failures, domain.BatchDeleteFailure{MemoryID: id, Error: err.Error()})
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}
