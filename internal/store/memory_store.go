package store

import (
	"context"
	"time"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore is the pgx-backed implementation of domain.MemoryStore,
// grounded on the teacher's MemoryStore: QueryRow...Scan for singleton
// reads/writes, positional parameters, namespace scoping in place of
// the teacher's tenant scoping.
type MemoryStore struct{}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Insert(ctx context.Context, q domain.Querier, m *domain.Memory) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	row := q.QueryRow(ctx,
		`INSERT INTO memories (id, namespace, sector, content, metadata, strength, salience, access_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		 RETURNING created_at, updated_at`,
		m.ID, m.Namespace, m.Sector, m.Content, m.Metadata, m.Strength, m.Salience,
	)
	if err := row.Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return wrapStorage(err, "insert memory")
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID) (*domain.Memory, error) {
	m := &domain.Memory{}
	row := q.QueryRow(ctx,
		`SELECT id, namespace, sector, content, metadata, strength, salience, access_count,
		        created_at, updated_at, last_accessed_at, deleted_at
		 FROM memories WHERE id = $1 AND namespace = $2`,
		id, namespace,
	)
	if err := row.Scan(&m.ID, &m.Namespace, &m.Sector, &m.Content, &m.Metadata, &m.Strength, &m.Salience,
		&m.AccessCount, &m.CreatedAt, &m.UpdatedAt, &m.LastAccessedAt, &m.DeletedAt); err != nil {
		return nil, wrapNotFound(err, "get memory")
	}
	return m, nil
}

func (s *MemoryStore) Update(ctx context.Context, q domain.Querier, m *domain.Memory) error {
	_, err := q.Exec(ctx,
		`UPDATE memories SET content = $1, metadata = $2, strength = $3, salience = $4, access_count = $5,
		        last_accessed_at = $6, updated_at = now()
		 WHERE id = $7 AND namespace = $8`,
		m.Content, m.Metadata, m.Strength, m.Salience, m.AccessCount, m.LastAccessedAt, m.ID, m.Namespace,
	)
	return wrapStorage(err, "update memory")
}

func (s *MemoryStore) SoftDelete(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE memories SET deleted_at = $1, updated_at = now() WHERE id = $2 AND namespace = $3`,
		at, id, namespace,
	)
	return wrapStorage(err, "soft delete memory")
}

func (s *MemoryStore) HardDelete(ctx context.Context, q domain.Querier, namespace string, id uuid.UUID) error {
	n, err := q.Exec(ctx, `DELETE FROM memories WHERE id = $1 AND namespace = $2`, id, namespace)
	if err != nil {
		return wrapStorage(err, "hard delete memory")
	}
	if n == 0 {
		return domain.NewError(domain.ErrNotFound, "memory not found")
	}
	return nil
}

func (s *MemoryStore) ListBySector(ctx context.Context, q domain.Querier, namespace string, sector domain.Sector, includeDeleted bool) ([]*domain.Memory, error) {
	sql := `SELECT id, namespace, sector, content, metadata, strength, salience, access_count,
	               created_at, updated_at, last_accessed_at, deleted_at
	        FROM memories WHERE namespace = $1 AND sector = $2`
	if !includeDeleted {
		sql += ` AND deleted_at IS NULL`
	}
	return s.scanMany(ctx, q, sql, namespace, sector)
}

func (s *MemoryStore) ListAll(ctx context.Context, q domain.Querier, namespace string, includeDeleted bool) ([]*domain.Memory, error) {
	sql := `SELECT id, namespace, sector, content, metadata, strength, salience, access_count,
	               created_at, updated_at, last_accessed_at, deleted_at
	        FROM memories WHERE namespace = $1`
	if !includeDeleted {
		sql += ` AND deleted_at IS NULL`
	}
	return s.scanMany(ctx, q, sql, namespace)
}

func (s *MemoryStore) scanMany(ctx context.Context, q domain.Querier, sql string, args ...any) ([]*domain.Memory, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStorage(err, "list memories")
	}
	defer rows.Close()

	var out []*domain.Memory
	for rows.Next() {
		m := &domain.Memory{}
		if err := rows.Scan(&m.ID, &m.Namespace, &m.Sector, &m.Content, &m.Metadata, &m.Strength, &m.Salience,
			&m.AccessCount, &m.CreatedAt, &m.UpdatedAt, &m.LastAccessedAt, &m.DeletedAt); err != nil {
			return nil, wrapStorage(err, "scan memory row")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage(err, "iterate memory rows")
	}
	return out, nil
}
