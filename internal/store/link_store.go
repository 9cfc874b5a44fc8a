package store

import (
	"context"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
)

// LinkStore is the pgx-backed implementation of domain.LinkStore,
// grounded on the teacher's GraphStore.CreateEdge upsert-by-greater-
// weight pattern (ON CONFLICT ... DO UPDATE SET weight = GREATEST(...)).
type LinkStore struct{}

func NewLinkStore() *LinkStore { return &LinkStore{} }

func (s *LinkStore) Upsert(ctx context.Context, q domain.Querier, l *domain.Link) error {
	row := q.QueryRow(ctx,
		`INSERT INTO memory_links (namespace, source_id, target_id, link_type, weight)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (source_id, target_id, link_type)
		 DO UPDATE SET weight = GREATEST(memory_links.weight, EXCLUDED.weight)
		 RETURNING id, created_at`,
		l.Namespace, l.SourceID, l.TargetID, l.LinkType, l.Weight,
	)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return wrapStorage(err, "upsert link")
	}
	return nil
}

func (s *LinkStore) ListForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) ([]*domain.Link, error) {
	rows, err := q.Query(ctx,
		`SELECT id, namespace, source_id, target_id, link_type, weight, created_at
		 FROM memory_links WHERE namespace = $1 AND (source_id = $2 OR target_id = $2)`,
		namespace, memoryID,
	)
	if err != nil {
		return nil, wrapStorage(err, "list links for memory")
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (s *LinkStore) ListAll(ctx context.Context, q domain.Querier, namespace string) ([]*domain.Link, error) {
	rows, err := q.Query(ctx,
		`SELECT id, namespace, source_id, target_id, link_type, weight, created_at
		 FROM memory_links WHERE namespace = $1`,
		namespace,
	)
	if err != nil {
		return nil, wrapStorage(err, "list links")
	}
	defer rows.Close()
	return scanLinks(rows)
}

func (s *LinkStore) DeleteAllForMemory(ctx context.Context, q domain.Querier, namespace string, memoryID uuid.UUID) error {
	_, err := q.Exec(ctx,
		`DELETE FROM memory_links WHERE namespace = $1 AND (source_id = $2 OR target_id = $2)`,
		namespace, memoryID,
	)
	return wrapStorage(err, "delete links for memory")
}

func scanLinks(rows domain.Rows) ([]*domain.Link, error) {
	var out []*domain.Link
	for rows.Next() {
		l := &domain.Link{}
		if err := rows.Scan(&l.ID, &l.Namespace, &l.SourceID, &l.TargetID, &l.LinkType, &l.Weight, &l.CreatedAt); err != nil {
			return nil, wrapStorage(err, "scan link row")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
