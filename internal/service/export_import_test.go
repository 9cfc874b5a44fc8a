package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cortexmemory/cortex/internal/domain"
	"go.uber.org/zap"
)

// alwaysErrorEmbeddingProvider fails every Embed call, so a test using
// it can prove a code path never re-embeds content.
type alwaysErrorEmbeddingProvider struct{}

func (alwaysErrorEmbeddingProvider) Embed(ctx context.Context, text string, sector domain.Sector) ([]float32, error) {
	return nil, errors.New("embed should not have been called")
}

func TestExportImport_RoundTripMerge(t *testing.T) {
	memories := newMemMemoryStore()
	links := newMemLinkStore()
	embeddings := newMemEmbeddingStore()
	provider := newFakeEmbeddingProvider()
	tx := noopTxRunner{}
	ctx := context.Background()

	svc := NewExportImportService(tx, memories, links, embeddings, provider, zap.NewNop())

	m := &domain.Memory{Namespace: "ns1", Sector: domain.SectorSemantic, Content: "fact", Strength: 1.0, Salience: 0.8}
	if err := memories.Insert(ctx, nil, m); err != nil {
		t.Fatalf("insert: %v", err)
	}
	for _, sector := range domain.AllSectors {
		if err := embeddings.Upsert(ctx, nil, "ns1", m.ID, sector, []float32{1, 0, 0, 0}); err != nil {
			t.Fatalf("upsert embedding: %v", err)
		}
	}

	env, err := svc.Export(ctx, "ns1", domain.ExportFilter{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(env.Memories) != 1 {
		t.Fatalf("exported %d memories, want 1", len(env.Memories))
	}
	if env.Version != domain.ExportFormatVersion {
		t.Fatalf("version = %q, want %q", env.Version, domain.ExportFormatVersion)
	}
	if len(env.Memories[0].Embeddings) != len(domain.AllSectors) {
		t.Fatalf("exported %d embeddings, want %d", len(env.Memories[0].Embeddings), len(domain.AllSectors))
	}

	memories2 := newMemMemoryStore()
	embeddings2 := newMemEmbeddingStore()
	svc2 := NewExportImportService(tx, memories2, newMemLinkStore(), embeddings2, provider, zap.NewNop())

	result, err := svc2.Import(ctx, "ns2", env, domain.ImportOptions{Mode: domain.ImportMerge})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.MemoriesCreated != 1 {
		t.Fatalf("MemoriesCreated = %d, want 1", result.MemoriesCreated)
	}

	imported, err := memories2.Get(ctx, nil, "ns2", m.ID)
	if err != nil {
		t.Fatalf("get imported memory: %v", err)
	}
	if imported.Content != "fact" {
		t.Fatalf("content = %q, want %q", imported.Content, "fact")
	}
	if imported.Salience != 0.8 {
		t.Fatalf("salience = %v, want 0.8 preserved by the round trip", imported.Salience)
	}
}

func TestExportImport_RoundTripMergeIsIdentityOnEmbeddings(t *testing.T) {
	memories := newMemMemoryStore()
	links := newMemLinkStore()
	embeddings := newMemEmbeddingStore()
	provider := newFakeEmbeddingProvider()
	tx := noopTxRunner{}
	ctx := context.Background()

	svc := NewExportImportService(tx, memories, links, embeddings, provider, zap.NewNop())

	m := &domain.Memory{Namespace: "ns1", Sector: domain.SectorEpisodic, Content: "fact", Strength: 1.0}
	_ = memories.Insert(ctx, nil, m)
	wantVectors := map[domain.Sector][]float32{}
	for i, sector := range domain.AllSectors {
		v := []float32{float32(i), 1, 0, 0}
		wantVectors[sector] = v
		_ = embeddings.Upsert(ctx, nil, "ns1", m.ID, sector, v)
	}

	env, err := svc.Export(ctx, "ns1", domain.ExportFilter{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// A provider that errors on Embed proves import never re-embeds
	// when the envelope already carries every sector's vector.
	erroringProvider := alwaysErrorEmbeddingProvider{}
	memories2 := newMemMemoryStore()
	embeddings2 := newMemEmbeddingStore()
	svc2 := NewExportImportService(tx, memories2, newMemLinkStore(), embeddings2, erroringProvider, zap.NewNop())

	if _, err := svc2.Import(ctx, "ns1", env, domain.ImportOptions{Mode: domain.ImportMerge}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	for _, sector := range domain.AllSectors {
		got, err := embeddings2.Get(ctx, nil, "ns1", m.ID, sector)
		if err != nil {
			t.Fatalf("get restored embedding for %v: %v", sector, err)
		}
		want := wantVectors[sector]
		if len(got) != len(want) {
			t.Fatalf("sector %v: got %v, want %v", sector, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("sector %v: got %v, want %v", sector, got, want)
			}
		}
	}
}

func TestExportImport_RejectsUnknownVersion(t *testing.T) {
	svc := NewExportImportService(noopTxRunner{}, newMemMemoryStore(), newMemLinkStore(), newMemEmbeddingStore(), newFakeEmbeddingProvider(), zap.NewNop())
	env := domain.ExportEnvelope{Version: "99.0", Namespace: "ns1"}
	_, err := svc.Import(context.Background(), "ns1", env, domain.ImportOptions{Mode: domain.ImportMerge})
	if domain.KindOf(err) != domain.ErrValidation {
		t.Fatalf("err kind = %v, want VALIDATION_ERROR", domain.KindOf(err))
	}
}

func TestExportImport_ReplaceRemovesExistingMemories(t *testing.T) {
	memories := newMemMemoryStore()
	links := newMemLinkStore()
	embeddings := newMemEmbeddingStore()
	provider := newFakeEmbeddingProvider()
	tx := noopTxRunner{}
	ctx := context.Background()

	svc := NewExportImportService(tx, memories, links, embeddings, provider, zap.NewNop())

	stale := &domain.Memory{Namespace: "ns1", Sector: domain.SectorEpisodic, Content: "stale", Strength: 1.0}
	_ = memories.Insert(ctx, nil, stale)

	env := domain.ExportEnvelope{Version: domain.ExportFormatVersion, Namespace: "ns1"}
	if _, err := svc.Import(ctx, "ns1", env, domain.ImportOptions{Mode: domain.ImportReplace}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	if _, err := memories.Get(ctx, nil, "ns1", stale.ID); domain.KindOf(err) != domain.ErrNotFound {
		t.Fatalf("expected stale memory to be removed by replace import")
	}
}
