package validation

import (
	"testing"

	"github.com/cortexmemory/cortex/internal/domain"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(DefaultRegistryBound)
	schema := Schema{Name: "note", Fields: []FieldSchema{{Name: "title", Kind: KindString, Required: true}}}
	if err := r.Register(schema); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, err := r.Get("note")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "note" {
		t.Fatalf("got = %+v, want name note", got)
	}
}

func TestRegistry_GetUnregisteredReturnsNotFound(t *testing.T) {
	r := NewRegistry(DefaultRegistryBound)
	if _, err := r.Get("missing"); domain.KindOf(err) != domain.ErrNotFound {
		t.Fatalf("err kind = %v, want NOT_FOUND", domain.KindOf(err))
	}
}

func TestRegistry_RejectsUnnamedSchema(t *testing.T) {
	r := NewRegistry(DefaultRegistryBound)
	if err := r.Register(Schema{}); domain.KindOf(err) != domain.ErrValidation {
		t.Fatalf("err kind = %v, want VALIDATION_ERROR", domain.KindOf(err))
	}
}

func TestRegistry_EvictsLeastRecentlyUsedBeyondBound(t *testing.T) {
	r := NewRegistry(2)
	_ = r.Register(Schema{Name: "a"})
	_ = r.Register(Schema{Name: "b"})
	_ = r.Register(Schema{Name: "c"})

	if _, err := r.Get("a"); domain.KindOf(err) != domain.ErrNotFound {
		t.Fatal("expected the least-recently-used schema 'a' to be evicted")
	}
	if _, err := r.Get("b"); err != nil {
		t.Fatalf("expected 'b' to survive eviction: %v", err)
	}
	if _, err := r.Get("c"); err != nil {
		t.Fatalf("expected 'c' to survive eviction: %v", err)
	}
}

func TestRegistry_UnregisterRemovesSchema(t *testing.T) {
	r := NewRegistry(DefaultRegistryBound)
	_ = r.Register(Schema{Name: "note"})
	r.Unregister("note")
	if _, err := r.Get("note"); domain.KindOf(err) != domain.ErrNotFound {
		t.Fatalf("err kind = %v, want NOT_FOUND after Unregister", domain.KindOf(err))
	}
}

func TestRegistry_ValidateAgainstUsesRegisteredSchema(t *testing.T) {
	r := NewRegistry(DefaultRegistryBound)
	_ = r.Register(Schema{Name: "note", Fields: []FieldSchema{{Name: "title", Kind: KindString, Required: true}}})

	errs, err := r.ValidateAgainst("note", map[string]any{})
	if err != nil {
		t.Fatalf("ValidateAgainst: %v", err)
	}
	if len(errs) != 1 || errs[0].Code != FieldRequired {
		t.Fatalf("errs = %+v, want single FIELD_REQUIRED", errs)
	}
}
