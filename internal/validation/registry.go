package validation

import (
	"sync"

	"github.com/cortexmemory/cortex/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegistryBound is the default number of schemas the registry
// keeps resident before evicting the least-recently-used one.
const DefaultRegistryBound = 100

// Registry is a bounded, concurrency-safe store of named schemas,
// backed by an LRU cache (contributed by scrypster-memento's
// dependency graph, promoted here from an indirect to a direct
// dependency) rather than a hand-rolled map+linked-list.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Schema]
}

func NewRegistry(bound int) *Registry {
	if bound <= 0 {
		bound = DefaultRegistryBound
	}
	cache, _ := lru.New[string, Schema](bound)
	return &Registry{cache: cache}
}

func (r *Registry) Register(schema Schema) error {
	if schema.Name == "" {
		return domain.ValidationErrorf("name", "schema name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(schema.Name, schema)
	return nil
}

func (r *Registry) Get(name string) (Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schema, ok := r.cache.Get(name)
	if !ok {
		return Schema{}, domain.NewError(domain.ErrNotFound, "schema not registered: "+name)
	}
	return schema, nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(name)
}

// ValidateAgainst looks up a registered schema by name and validates
// value against it in one call.
func (r *Registry) ValidateAgainst(name string, value map[string]any) (FieldErrors, error) {
	schema, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return Validate(schema, value), nil
}
