package store

import (
	"context"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
)

// ReinforcementStore persists the append-only reinforcement log. New
// relative to the teacher, which only kept a bare counter on the
// memory row; the spec's diminishing-returns rule needs the timestamp
// of the most recent event.
type ReinforcementStore struct{}

func NewReinforcementStore() *ReinforcementStore { return &ReinforcementStore{} }

func (s *ReinforcementStore) Append(ctx context.Context, q domain.Querier, e *domain.ReinforcementEvent) error {
	row := q.QueryRow(ctx,
		`INSERT INTO memory_reinforcement_history (memory_id, type, boost, timestamp)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		e.MemoryID, e.Type, e.Boost, e.Timestamp,
	)
	return wrapStorage(row.Scan(&e.ID), "append reinforcement event")
}

func (s *ReinforcementStore) MostRecent(ctx context.Context, q domain.Querier, memoryID uuid.UUID) (*domain.ReinforcementEvent, error) {
	e := &domain.ReinforcementEvent{}
	row := q.QueryRow(ctx,
		`SELECT id, memory_id, type, boost, timestamp FROM memory_reinforcement_history
		 WHERE memory_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		memoryID,
	)
	if err := row.Scan(&e.ID, &e.MemoryID, &e.Type, &e.Boost, &e.Timestamp); err != nil {
		return nil, wrapNotFound(err, "most recent reinforcement event")
	}
	return e, nil
}

func (s *ReinforcementStore) ListForMemory(ctx context.Context, q domain.Querier, memoryID uuid.UUID) ([]*domain.ReinforcementEvent, error) {
	rows, err := q.Query(ctx,
		`SELECT id, memory_id, type, boost, timestamp FROM memory_reinforcement_history
		 WHERE memory_id = $1 ORDER BY timestamp DESC`,
		memoryID,
	)
	if err != nil {
		return nil, wrapStorage(err, "list reinforcement events")
	}
	defer rows.Close()

	var out []*domain.ReinforcementEvent
	for rows.Next() {
		e := &domain.ReinforcementEvent{}
		if err := rows.Scan(&e.ID, &e.MemoryID, &e.Type, &e.Boost, &e.Timestamp); err != nil {
			return nil, wrapStorage(err, "scan reinforcement row")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
