package service

import (
	"context"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
)

// In-memory fakes implementing the domain store interfaces, in the
// teacher's mockMemoryStore style, shared across this package's tests.

type memMemoryStore struct {
	rows map[uuid.UUID]*domain.Memory
}

func newMemMemoryStore() *memMemoryStore {
	return &memMemoryStore{rows: map[uuid.UUID]*domain.Memory{}}
}

func (s *memMemoryStore) Insert(ctx context.Context, q domain.Querier, m *domain.Memory) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *memMemoryStore) Get(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID) (*domain.Memory, error) {
	m, ok := s.rows[id]
	if !ok || m.Namespace != namespace {
		return nil, domain.NewError(domain.ErrNotFound, "memory not found")
	}
	cp := *m
	return &cp, nil
}

func (s *memMemoryStore) Update(ctx context.Context, q domain.Querier, m *domain.Memory) error {
	if _, ok := s.rows[m.ID]; !ok {
		return domain.NewError(domain.ErrNotFound, "memory not found")
	}
	m.UpdatedAt = time.Now()
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *memMemoryStore) SoftDelete(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID, at time.Time) error {
	m, ok := s.rows[id]
	if !ok {
		return domain.NewError(domain.ErrNotFound, "memory not found")
	}
	m.DeletedAt = &at
	return nil
}

func (s *memMemoryStore) HardDelete(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return domain.NewError(domain.ErrNotFound, "memory not found")
	}
	delete(s.rows, id)
	return nil
}

func (s *memMemoryStore) ListBySector(ctx context.Context, q domain.Querier, namespace string, sector domain.Sector, includeDeleted bool) ([]*domain.Memory, error) {
	var out []*domain.Memory
	for _, m := range s.rows {
		if m.Namespace != namespace || m.Sector != sector {
			continue
		}
		if !includeDeleted && m.IsDeleted() {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memMemoryStore) ListAll(ctx context.Context, q domain.Querier, namespace string, includeDeleted bool) ([]*domain.Memory, error) {
	var out []*domain.Memory
	for _, m := range s.rows {
		if m.Namespace != namespace {
			continue
		}
		if !includeDeleted && m.IsDeleted() {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

type memEmbeddingStore struct {
	vectors map[uuid.UUID]map[domain.Sector][]float32
}

func newMemEmbeddingStore() *memEmbeddingStore {
	return &memEmbeddingStore{vectors: map[uuid.UUID]map[domain.Sector][]float32{}}
}

func (s *memEmbeddingStore) Upsert(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID, sector domain.Sector, vector []float32) error {
	if s.vectors[memoryID] == nil {
		s.vectors[memoryID] = map[domain.Sector][]float32{}
	}
	s.vectors[memoryID][sector] = vector
	return nil
}

func (s *memEmbeddingStore) Get(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID, sector domain.Sector) ([]float32, error) {
	v, ok := s.vectors[memoryID][sector]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "embedding not found")
	}
	return v, nil
}

func (s *memEmbeddingStore) DeleteAllForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) error {
	delete(s.vectors, memoryID)
	return nil
}

func (s *memEmbeddingStore) TopKBySimilarity(ctx context.Context, q domain.Querier, namespace string, sector domain.Sector, query []float32, k int, minSimilarity float64) ([]domain.SimilarityMatch, error) {
	var out []domain.SimilarityMatch
	for id, bySector := range s.vectors {
		v, ok := bySector[sector]
		if !ok {
			continue
		}
		sim := cosineSimilarity(query, v)
		if sim < minSimilarity {
			continue
		}
		out = append(out, domain.SimilarityMatch{MemoryID: id, Similarity: sim})
	}
	// simple selection sort, fine for small test fixtures; ties break by
	// ascending memory ID to match the store-backed implementation.
	for i := 0; i < len(out); i++ {
		best := i
		for j := i + 1; j < len(out); j++ {
			if out[j].Similarity > out[best].Similarity {
				best = j
			} else if out[j].Similarity == out[best].Similarity && out[j].MemoryID.String() < out[best].MemoryID.String() {
				best = j
			}
		}
		out[i], out[best] = out[best], out[i]
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type memLinkStore struct {
	links map[uuid.UUID]*domain.Link
}

func newMemLinkStore() *memLinkStore { return &memLinkStore{links: map[uuid.UUID]*domain.Link{}} }

func (s *memLinkStore) Upsert(ctx context.Context, q domain.Querier, l *domain.Link) error {
	for _, existing := range s.links {
		if existing.SourceID == l.SourceID && existing.TargetID == l.TargetID && existing.LinkType == l.LinkType {
			if l.Weight > existing.Weight {
				existing.Weight = l.Weight
			}
			*l = *existing
			return nil
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	cp := *l
	s.links[l.ID] = &cp
	return nil
}

func (s *memLinkStore) ListForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) ([]*domain.Link, error) {
	var out []*domain.Link
	for _, l := range s.links {
		if l.Namespace == namespace && (l.SourceID == memoryID || l.TargetID == memoryID) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memLinkStore) ListAll(ctx context.Context, q domain.Querier, namespace string) ([]*domain.Link, error) {
	var out []*domain.Link
	for _, l := range s.links {
		if l.Namespace == namespace {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memLinkStore) DeleteAllForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) error {
	for id, l := range s.links {
		if l.SourceID == memoryID || l.TargetID == memoryID {
			delete(s.links, id)
		}
	}
	return nil
}

type memReinforcementStore struct {
	events map[uuid.UUID][]*domain.ReinforcementEvent
}

func newMemReinforcementStore() *memReinforcementStore {
	return &memReinforcementStore{events: map[uuid.UUID][]*domain.ReinforcementEvent{}}
}

func (s *memReinforcementStore) Append(ctx context.Context, q domain.Querier, e *domain.ReinforcementEvent) error {
	e.ID = uuid.New()
	s.events[e.MemoryID] = append(s.events[e.MemoryID], e)
	return nil
}

func (s *memReinforcementStore) MostRecent(ctx context.Context, q domain.Querier, memoryID uuid.UUID) (*domain.ReinforcementEvent, error) {
	list := s.events[memoryID]
	if len(list) == 0 {
		return nil, domain.NewError(domain.ErrNotFound, "no reinforcement events")
	}
	latest := list[0]
	for _, e := range list {
		if e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}
	return latest, nil
}

func (s *memReinforcementStore) ListForMemory(ctx context.Context, q domain.Querier, memoryID uuid.UUID) ([]*domain.ReinforcementEvent, error) {
	return s.events[memoryID], nil
}

// noopTxRunner runs fn directly against a nil Querier; the in-memory
// fakes above ignore their Querier argument entirely, so no real
// transaction machinery is needed in tests.
type noopTxRunner struct{}

func (noopTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, q domain.Querier) error) error {
	return fn(ctx, nil)
}

// fakeEmbeddingProvider returns a deterministic vector per (sector, text)
// pair so similarity comparisons in tests are reproducible.
type fakeEmbeddingProvider struct {
	vectors map[string][]float32
}

func newFakeEmbeddingProvider() *fakeEmbeddingProvider {
	return &fakeEmbeddingProvider{vectors: map[string][]float32{}}
}

func (p *fakeEmbeddingProvider) set(sector domain.Sector, text string, v []float32) {
	p.vectors[string(sector)+":"+text] = v
}

func (p *fakeEmbeddingProvider) Embed(ctx context.Context, text string, sector domain.Sector) ([]float32, error) {
	if v, ok := p.vectors[string(sector)+":"+text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0, 0}, nil
}
