package service

import (
	"context"
	"math"
	"strings"

	"github.com/cortexmemory/cortex/internal/domain"
	"go.uber.org/zap"
)

// GraphBuilder creates waypoint links when a memory is created, adapted
// from the teacher's GraphBuilderService.OnMemoryCreated: thematic
// (semantic-similarity) links plus a handful of heuristic scorers for
// the other link types, all best-effort.
type GraphBuilder struct {
	memories   domain.MemoryStore
	embeddings domain.EmbeddingStore
	links      domain.LinkStore
	tx         domain.TxRunner
	logger     *zap.Logger

	semanticThreshold float64
	topK              int
}

func NewGraphBuilder(tx domain.TxRunner, memories domain.MemoryStore, embeddings domain.EmbeddingStore, links domain.LinkStore, logger *zap.Logger) *GraphBuilder {
	return &GraphBuilder{
		tx: tx, memories: memories, embeddings: embeddings, links: links, logger: logger,
		semanticThreshold: 0.75,
		topK:              5,
	}
}

// LinkNewMemory finds candidate neighbors for m and upserts waypoint
// links of whichever types score above their thresholds.
func (g *GraphBuilder) LinkNewMemory(ctx context.Context, m *domain.Memory) error {
	return g.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		vector, err := g.embeddings.Get(ctx, q, m.Namespace, m.ID, domain.SectorSemantic)
		if err != nil {
			return err
		}
		matches, err := g.embeddings.TopKBySimilarity(ctx, q, m.Namespace, domain.SectorSemantic, vector, g.topK+1, g.semanticThreshold)
		if err != nil {
			return err
		}

		for _, match := range matches {
			if match.MemoryID == m.ID {
				continue
			}
			link := &domain.Link{
				Namespace: m.Namespace,
				SourceID:  m.ID,
				TargetID:  match.MemoryID,
				LinkType:  domain.LinkSemantic,
				Weight:    domain.Clamp01(match.Similarity),
			}
			if err := g.links.Upsert(ctx, q, link); err != nil {
				return err
			}

			neighbor, err := g.memories.Get(ctx, q, m.Namespace, match.MemoryID)
			if err != nil {
				continue
			}
			if tw := temporalWeight(m, neighbor); tw > 0 {
				_ = g.links.Upsert(ctx, q, &domain.Link{
					Namespace: m.Namespace, SourceID: m.ID, TargetID: neighbor.ID,
					LinkType: domain.LinkTemporal, Weight: tw,
				})
			}
			if cw := causalWeight(m, neighbor); cw > 0 {
				_ = g.links.Upsert(ctx, q, &domain.Link{
					Namespace: m.Namespace, SourceID: m.ID, TargetID: neighbor.ID,
					LinkType: domain.LinkCausal, Weight: cw,
				})
			}
			if aw := analogicalWeight(m, neighbor); aw > 0 {
				_ = g.links.Upsert(ctx, q, &domain.Link{
					Namespace: m.Namespace, SourceID: m.ID, TargetID: neighbor.ID,
					LinkType: domain.LinkAnalogical, Weight: aw,
				})
			}
		}
		return nil
	})
}

// temporalWeight favors memories created close together in time,
// matching the teacher's inverse-distance scoring idiom elsewhere
// (e.g. RecallScorer's freshness decay).
func temporalWeight(a, b *domain.Memory) float64 {
	deltaDays := math.Abs(a.CreatedAt.Sub(b.CreatedAt).Hours() / 24)
	w := 1.0 / (1.0 + deltaDays)
	if w < 0.3 {
		return 0
	}
	return domain.Clamp01(w)
}

// causalWeight is a rule-based heuristic over metadata: a pair where one
// memory carries a "cause" tag and the other an "effect" tag is treated
// as causally linked, scored by the geometric mean of the two tag
// weights, the same
// combination rule the teacher uses for entity-link strength.
func causalWeight(a, b *domain.Memory) float64 {
	const causeWeight, effectWeight = 0.8, 0.6
	if hasTag(a, "cause") && hasTag(b, "effect") {
		return math.Sqrt(causeWeight * effectWeight)
	}
	if hasTag(b, "cause") && hasTag(a, "effect") {
		return math.Sqrt(causeWeight * effectWeight)
	}
	return 0
}

// analogicalWeight links memories that share a "topic" metadata tag but
// belong to different sectors, the rough shape of an analogy.
func analogicalWeight(a, b *domain.Memory) float64 {
	if a.Sector == b.Sector {
		return 0
	}
	at, aok := a.Metadata["topic"].(string)
	bt, bok := b.Metadata["topic"].(string)
	if !aok || !bok || at == "" {
		return 0
	}
	if strings.EqualFold(at, bt) {
		return 0.5
	}
	return 0
}

func hasTag(m *domain.Memory, tag string) bool {
	tags, ok := m.Metadata["tags"].([]any)
	if !ok {
		return false
	}
	for _, t := range tags {
		if s, ok := t.(string); ok && strings.EqualFold(s, tag) {
			return true
		}
	}
	return false
}
