package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"go.uber.org/zap"
)

// SearchEngine implements the composite-score search (component G),
// grounded on the teacher's MemoryService.Recall + RecallScorer shape
// (embed query, over-fetch per sector, score, truncate) but with the
// fixed weighted-sum formula the spec mandates in place of the
// teacher's multiplicative one.
type SearchEngine struct {
	memories   domain.MemoryStore
	embeddings domain.EmbeddingStore
	links      domain.LinkStore
	provider   domain.EmbeddingProvider
	tx         domain.TxRunner
	logger     *zap.Logger
	now        func() time.Time

	recencyHalfLifeDays float64
	minSimilarity       float64
}

func NewSearchEngine(tx domain.TxRunner, memories domain.MemoryStore, embeddings domain.EmbeddingStore, links domain.LinkStore, provider domain.EmbeddingProvider, logger *zap.Logger) *SearchEngine {
	return &SearchEngine{
		tx: tx, memories: memories, embeddings: embeddings, links: links, provider: provider, logger: logger,
		now: time.Now, recencyHalfLifeDays: 7,
	}
}

// Search runs query across the requested sectors (or all sectors when
// unset), scores every candidate with CompositeScore, and returns the
// top Limit hits (after Offset) ordered per domain.TieBreak. When
// QueryText is empty, candidates are enumerated per sector instead of
// ranked by vector distance, and every hit's Similarity is 0.
func (s *SearchEngine) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	sectors := query.Sectors
	if len(sectors) == 0 {
		sectors = domain.AllSectors
	}
	limit := query.Limit
	if limit == 0 {
		limit = 20
	}
	metadataOnly := query.QueryText == ""

	var hits []domain.SearchHit
	err := s.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		for _, sector := range sectors {
			var candidates []*domain.Memory
			simByID := map[string]float64{}
			if metadataOnly {
				ms, err := s.memories.ListBySector(ctx, q, query.Namespace, sector, false)
				if err != nil {
					return err
				}
				candidates = ms
			} else {
				vec, err := s.provider.Embed(ctx, query.QueryText, sector)
				if err != nil {
					return err
				}
				matches, err := s.embeddings.TopKBySimilarity(ctx, q, query.Namespace, sector, vec, limit*3, s.minSimilarity)
				if err != nil {
					return err
				}
				for _, match := range matches {
					m, err := s.memories.Get(ctx, q, query.Namespace, match.MemoryID)
					if err != nil {
						continue
					}
					candidates = append(candidates, m)
					simByID[m.ID.String()] = match.Similarity
				}
			}

			for _, m := range candidates {
				if m.IsDeleted() {
					continue
				}
				if !matchesMetadata(m, query.MetadataEq) {
					continue
				}
				if !matchesQueryFilters(m, query) {
					continue
				}
				if m.Strength < query.MinStrength || m.Salience < query.MinSalience {
					continue
				}
				links, err := s.links.ListForMemory(ctx, q, query.Namespace, m.ID)
				if err != nil {
					links = nil
				}
				hit := domain.SearchHit{
					Memory:     *m,
					Similarity: simByID[m.ID.String()],
					Salience:   m.Salience,
					Recency:    s.recencyScore(m),
					LinkWeight: maxLinkWeight(links),
				}
				hit.Score = domain.CompositeScore(hit.Similarity, hit.Salience, hit.Recency, hit.LinkWeight)
				hits = append(hits, hit)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	hits = dedupeBestPerMemory(hits)
	sort.Slice(hits, func(i, j int) bool { return domain.TieBreak(hits[i], hits[j]) })
	if query.Offset >= len(hits) {
		return nil, nil
	}
	hits = hits[query.Offset:]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *SearchEngine) recencyScore(m *domain.Memory) float64 {
	t := m.CreatedAt
	if m.LastAccessedAt != nil {
		t = *m.LastAccessedAt
	}
	ageDays := s.now().Sub(t).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return domain.Clamp01(halfLifeDecay(ageDays, s.recencyHalfLifeDays))
}

func halfLifeDecay(ageDays, halfLife float64) float64 {
	if halfLife <= 0 {
		return 0
	}
	return math.Pow(2, -ageDays/halfLife)
}

func matchesMetadata(m *domain.Memory, eq map[string]any) bool {
	for k, v := range eq {
		mv, ok := m.Metadata[k]
		if !ok || mv != v {
			return false
		}
	}
	return true
}

// matchesQueryFilters applies the keyword/tag/category/date-range
// predicates of a search query on top of the plain metadata equality
// check: keywords and tags match on array overlap (any shared element,
// case-insensitive), category on exact case-insensitive match, and the
// date range against the memory's CreatedAt.
func matchesQueryFilters(m *domain.Memory, query domain.SearchQuery) bool {
	if len(query.Keywords) > 0 && !overlapsMetadataArray(m, "keywords", query.Keywords) {
		return false
	}
	if len(query.Tags) > 0 && !overlapsMetadataArray(m, "tags", query.Tags) {
		return false
	}
	if query.Category != "" {
		cat, _ := m.Metadata["category"].(string)
		if !strings.EqualFold(cat, query.Category) {
			return false
		}
	}
	if query.CreatedAfter != nil && m.CreatedAt.Before(*query.CreatedAfter) {
		return false
	}
	if query.CreatedBefore != nil && m.CreatedAt.After(*query.CreatedBefore) {
		return false
	}
	return true
}

func overlapsMetadataArray(m *domain.Memory, field string, want []string) bool {
	raw, ok := m.Metadata[field].([]any)
	if !ok {
		return false
	}
	for _, w := range want {
		for _, r := range raw {
			if s, ok := r.(string); ok && strings.EqualFold(s, w) {
				return true
			}
		}
	}
	return false
}

func maxLinkWeight(links []*domain.Link) float64 {
	var max float64
	for _, l := range links {
		if l.Weight > max {
			max = l.Weight
		}
	}
	return max
}

func dedupeBestPerMemory(hits []domain.SearchHit) []domain.SearchHit {
	best := make(map[string]domain.SearchHit, len(hits))
	for _, h := range hits {
		key := h.Memory.ID.String()
		if existing, ok := best[key]; !ok || h.Score > existing.Score {
			best[key] = h
		}
	}
	out := make([]domain.SearchHit, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	return out
}
