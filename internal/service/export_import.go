package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"go.uber.org/zap"
)

// ExportImportService implements component H. There is no teacher
// equivalent; it follows the teacher's general JSON-envelope
// conventions (map[string]any metadata, omitempty tags) applied to a
// new versioned-snapshot surface.
type ExportImportService struct {
	memories   domain.MemoryStore
	links      domain.LinkStore
	embeddings domain.EmbeddingStore
	tx         domain.TxRunner
	provider   domain.EmbeddingProvider
	logger     *zap.Logger
	now        func() time.Time
}

func NewExportImportService(tx domain.TxRunner, memories domain.MemoryStore, links domain.LinkStore, embeddings domain.EmbeddingStore, provider domain.EmbeddingProvider, logger *zap.Logger) *ExportImportService {
	return &ExportImportService{
		tx: tx, memories: memories, links: links, embeddings: embeddings, provider: provider, logger: logger, now: time.Now,
	}
}

// Export snapshots every memory in namespace matching filter, along
// with its per-sector embeddings and every link in the namespace.
func (s *ExportImportService) Export(ctx context.Context, namespace string, filter domain.ExportFilter) (domain.ExportEnvelope, error) {
	var env domain.ExportEnvelope
	err := s.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		memories, err := s.memories.ListAll(ctx, q, namespace, true)
		if err != nil {
			return err
		}
		links, err := s.links.ListAll(ctx, q, namespace)
		if err != nil {
			return err
		}

		var out []domain.ExportedMemory
		for _, m := range memories {
			if !matchesExportFilter(m, filter) {
				continue
			}
			vectors := make(map[domain.Sector][]float32, len(domain.AllSectors))
			for _, sector := range domain.AllSectors {
				v, err := s.embeddings.Get(ctx, q, namespace, m.ID, sector)
				if err != nil {
					continue
				}
				vectors[sector] = v
			}
			out = append(out, domain.ExportedMemory{Memory: *m, Embeddings: vectors})
		}

		linkOut := make([]domain.Link, len(links))
		for i, l := range links {
			linkOut[i] = *l
		}
		env = domain.ExportEnvelope{
			Version:    domain.ExportFormatVersion,
			Namespace:  namespace,
			ExportedAt: s.now(),
			Filter:     filter,
			Count:      len(out),
			Memories:   out,
			Links:      linkOut,
		}
		return nil
	})
	return env, err
}

func matchesExportFilter(m *domain.Memory, filter domain.ExportFilter) bool {
	if len(filter.Sectors) > 0 {
		found := false
		for _, s := range filter.Sectors {
			if s == m.Sector {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Tags) > 0 && !overlapsMetadataArray(m, "tags", filter.Tags) {
		return false
	}
	if filter.MinStrength > 0 && m.Strength < filter.MinStrength {
		return false
	}
	if filter.CreatedAfter != nil && m.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.CreatedBefore != nil && m.CreatedAt.After(*filter.CreatedBefore) {
		return false
	}
	return true
}

// Import validates env, then applies it under options.Mode: merge
// upserts memories and links by ID, leaving anything not present in env
// untouched; replace first hard-deletes every existing memory in the
// target namespace, then inserts env's contents fresh. Unless
// options.RegenerateEmbeddings is set, every memory in env must carry a
// complete 5-sector embedding map, and each newly created memory has its
// map restored verbatim so an export/import(merge) round trip is an
// identity on the vectors too.
func (s *ExportImportService) Import(ctx context.Context, namespace string, env domain.ExportEnvelope, options domain.ImportOptions) (domain.ImportResult, error) {
	if !domain.ValidImportMode(string(options.Mode)) {
		return domain.ImportResult{}, domain.ValidationErrorf("mode", "unknown import mode %q", options.Mode)
	}
	if env.Version != domain.ExportFormatVersion {
		return domain.ImportResult{}, domain.ValidationErrorf("version", "unsupported export version %q", env.Version)
	}
	if !options.RegenerateEmbeddings {
		for _, m := range env.Memories {
			if err := validateEmbeddingMap(m.Embeddings); err != nil {
				return domain.ImportResult{}, err
			}
		}
	}

	var result domain.ImportResult
	err := s.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		if options.Mode == domain.ImportReplace {
			existing, err := s.memories.ListAll(ctx, q, namespace, true)
			if err != nil {
				return err
			}
			for _, m := range existing {
				if err := s.links.DeleteAllForMemory(ctx, q, namespace, m.ID); err != nil {
					return err
				}
				if err := s.embeddings.DeleteAllForMemory(ctx, q, namespace, m.ID); err != nil {
					return err
				}
				if err := s.memories.HardDelete(ctx, q, namespace, m.ID); err != nil {
					return err
				}
			}
		}

		for _, em := range env.Memories {
			mm := em.Memory
			mm.Namespace = namespace
			if _, err := s.memories.Get(ctx, q, namespace, mm.ID); err == nil {
				if err := s.memories.Update(ctx, q, &mm); err != nil {
					return err
				}
				result.MemoriesUpdated++
			} else if domain.KindOf(err) == domain.ErrNotFound {
				if err := s.memories.Insert(ctx, q, &mm); err != nil {
					return err
				}
				vectors := em.Embeddings
				if options.RegenerateEmbeddings || len(vectors) == 0 {
					vectors = make(map[domain.Sector][]float32, len(domain.AllSectors))
					for _, sector := range domain.AllSectors {
						v, err := s.provider.Embed(ctx, mm.Content, sector)
						if err != nil {
							return err
						}
						vectors[sector] = v
					}
				}
				for sector, v := range vectors {
					if err := s.embeddings.Upsert(ctx, q, namespace, mm.ID, sector, v); err != nil {
						return err
					}
				}
				result.MemoriesCreated++
			} else {
				return err
			}
		}

		for _, l := range env.Links {
			ll := l
			ll.Namespace = namespace
			if err := ll.Validate(); err != nil {
				result.Skipped++
				continue
			}
			if err := s.links.Upsert(ctx, q, &ll); err != nil {
				return err
			}
			result.LinksCreated++
		}
		return nil
	})
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("import: %w", err)
	}
	return result, nil
}

// validateEmbeddingMap rejects an embedding map that doesn't carry a
// vector for every sector, and any key that isn't a recognized sector.
func validateEmbeddingMap(vectors map[domain.Sector][]float32) error {
	for k := range vectors {
		if !domain.ValidSector(string(k)) {
			return domain.ValidationErrorf("embeddings", "unknown sector key %q", k)
		}
	}
	var missing []string
	for _, sector := range domain.AllSectors {
		if _, ok := vectors[sector]; !ok {
			missing = append(missing, string(sector))
		}
	}
	if len(missing) > 0 {
		return domain.ValidationErrorf("embeddings", "missing embeddings for sectors: %s", strings.Join(missing, ", "))
	}
	return nil
}
