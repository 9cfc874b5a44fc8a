package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cortexmemory/cortex/internal/config"
	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// millisPerDay converts the decay formula's millisecond timestamps into
// the fractional-day unit the exponential uses.
const millisPerDay = 86_400_000.0

// DecayEngine applies the exponential-with-floor decay formula and
// handles reinforcement events, grounded on the teacher's DecayService:
// same Start/Stop ticker-driven background worker shape, same
// "skip if memory is fresh" guard, replaced with the spec's formula.
type DecayEngine struct {
	memories        domain.MemoryStore
	reinforcements  domain.ReinforcementStore
	tx              domain.TxRunner
	cfg             *config.SectorConfigStore
	logger          *zap.Logger
	now             func() time.Time
	batchSize       int
	interval        time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

func NewDecayEngine(tx domain.TxRunner, memories domain.MemoryStore, reinforcements domain.ReinforcementStore, cfg *config.SectorConfigStore, logger *zap.Logger) *DecayEngine {
	return &DecayEngine{
		tx: tx, memories: memories, reinforcements: reinforcements, cfg: cfg, logger: logger,
		now: time.Now, batchSize: 1000, interval: time.Hour,
	}
}

// ApplyDecay computes the decayed strength for a single memory as of
// asOf, without persisting it. t0 is the memory's LastAccessedAt if
// set, else its CreatedAt — the same clock SearchEngine's recency score
// measures age against.
func ApplyDecay(cfg config.SectorConfig, m *domain.Memory, asOf time.Time) float64 {
	t0 := m.CreatedAt
	if m.LastAccessedAt != nil {
		t0 = *m.LastAccessedAt
	}
	ageDays := math.Max(0, asOf.Sub(t0).Seconds()*1000/millisPerDay)
	lambda := cfg.BaseLambda * cfg.SectorMultipliers[m.Sector]
	raw := m.Strength * math.Exp(-lambda*ageDays)
	return math.Max(raw, cfg.MinimumStrength)
}

// diminishedBoost halves boost if the most recent reinforcement event
// for id happened within DiminishingReturnsWindow.
func (e *DecayEngine) diminishedBoost(ctx context.Context, q domain.Querier, id uuid.UUID, boost float64, now time.Time) float64 {
	if last, err := e.reinforcements.MostRecent(ctx, q, id); err == nil {
		if now.Sub(last.Timestamp) < domain.DiminishingReturnsWindow {
			return boost * domain.DiminishingReturnsFactor
		}
	}
	return boost
}

// applyReinforcement clamps m's strength up by boost, records the
// event, and persists m. bumpAccessCount controls whether accessCount
// is incremented (only the access-triggered path does).
func (e *DecayEngine) applyReinforcement(ctx context.Context, q domain.Querier, m *domain.Memory, kind domain.ReinforcementType, boost float64, now time.Time, bumpAccessCount bool) error {
	m.Strength = domain.Clamp01(m.Strength + boost)
	m.LastAccessedAt = &now
	if bumpAccessCount {
		m.AccessCount++
	}
	if err := e.memories.Update(ctx, q, m); err != nil {
		return err
	}
	return e.reinforcements.Append(ctx, q, &domain.ReinforcementEvent{
		ID: uuid.New(), MemoryID: m.ID, Type: kind, Boost: boost, Timestamp: now,
	})
}

// ReinforceMemory applies an explicit, caller-chosen boost to a memory.
// It fails with NOT_FOUND if the memory doesn't exist.
func (e *DecayEngine) ReinforceMemory(ctx context.Context, namespace string, id uuid.UUID, boost float64) (*domain.Memory, error) {
	var m *domain.Memory
	err := e.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		var err error
		m, err = e.memories.Get(ctx, q, namespace, id)
		if err != nil {
			return err
		}
		return e.applyReinforcement(ctx, q, m, domain.ReinforcementExplicit, boost, e.now(), false)
	})
	return m, err
}

// AutoReinforceOnAccess applies the default access boost, halved if the
// memory was reinforced within the last hour, and bumps accessCount —
// the side effect a read triggers automatically.
func (e *DecayEngine) AutoReinforceOnAccess(ctx context.Context, namespace string, id uuid.UUID) (*domain.Memory, error) {
	var m *domain.Memory
	err := e.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		var err error
		m, err = e.memories.Get(ctx, q, namespace, id)
		if err != nil {
			return err
		}
		now := e.now()
		b := e.diminishedBoost(ctx, q, id, domain.ReinforcementBoost[domain.ReinforcementAccess], now)
		return e.applyReinforcement(ctx, q, m, domain.ReinforcementAccess, b, now, true)
	})
	return m, err
}

// ReinforceMemoryByType dispatches to the reinforcement operation named
// by kind: access behaves like AutoReinforceOnAccess; explicit requires
// an explicit boost (BOOST_REQUIRED if nil) and behaves like
// ReinforceMemory; importance computes boost = importance*0.5, reading
// Metadata["importance"] and defaulting to 0.5 when absent or
// unrecognized. The boost argument is ignored for access and importance.
func (e *DecayEngine) ReinforceMemoryByType(ctx context.Context, namespace string, id uuid.UUID, kind domain.ReinforcementType, boost *float64) (*domain.Memory, error) {
	switch kind {
	case domain.ReinforcementAccess:
		return e.AutoReinforceOnAccess(ctx, namespace, id)
	case domain.ReinforcementExplicit:
		if boost == nil {
			return nil, domain.NewError(domain.ErrBoostRequired, "explicit reinforcement requires a boost")
		}
		return e.ReinforceMemory(ctx, namespace, id, *boost)
	case domain.ReinforcementImportance:
		var m *domain.Memory
		err := e.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
			var err error
			m, err = e.memories.Get(ctx, q, namespace, id)
			if err != nil {
				return err
			}
			b := importanceOf(m) * 0.5
			return e.applyReinforcement(ctx, q, m, domain.ReinforcementImportance, b, e.now(), false)
		})
		return m, err
	default:
		return nil, domain.NewError(domain.ErrInvalidReinforcement, "unknown reinforcement type")
	}
}

// importanceOf reads m.Metadata["importance"] as a float, defaulting to
// 0.5 when absent or not a recognized numeric type.
func importanceOf(m *domain.Memory) float64 {
	switch v := m.Metadata["importance"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0.5
	}
}

// BatchDecayResult summarizes one maintenance pass. Processed counts
// memories whose strength changed; Archived counts those among them whose
// new strength is at or below the configured floor. The pass itself
// deletes and archives nothing.
type BatchDecayResult struct {
	Processed int
	Archived  int
}

// RunMaintenance walks every active memory in namespace inside one
// transaction, recomputing and persisting decayed strength; e.batchSize
// only sets how often progress is logged. The first failed update aborts
// the whole pass. Memories whose strength lands at the configured floor
// are left in place (the floor is a permanent resting strength, not an
// archive trigger); the pass prunes nothing.
func (e *DecayEngine) RunMaintenance(ctx context.Context, namespace string) (BatchDecayResult, error) {
	var result BatchDecayResult
	cfg := e.cfg.Get()

	err := e.tx.WithTx(ctx, func(ctx context.Context, q domain.Querier) error {
		all, err := e.memories.ListAll(ctx, q, namespace, false)
		if err != nil {
			return err
		}
		asOf := e.now()
		for i, m := range all {
			if i > 0 && i%e.batchSize == 0 {
				e.logger.Info("decay maintenance batch", zap.Int("processed", i))
			}
			newStrength := ApplyDecay(cfg, m, asOf)
			if newStrength == m.Strength {
				continue
			}
			m.Strength = newStrength
			if err := e.memories.Update(ctx, q, m); err != nil {
				return err
			}
			result.Processed++
			if newStrength <= cfg.MinimumStrength {
				result.Archived++
			}
		}
		return nil
	})
	return result, err
}

// Start runs RunMaintenance on a ticker until Stop is called, matching
// the teacher's background-worker pattern (ticker + waitgroup + stop
// channel) used by DecayService and ConsolidationService alike.
func (e *DecayEngine) Start(ctx context.Context, namespace string) {
	e.stopCh = make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := e.RunMaintenance(ctx, namespace); err != nil {
					e.logger.Error("decay maintenance failed", zap.Error(err))
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

func (e *DecayEngine) Stop() {
	if e.stopCh != nil {
		close(e.stopCh)
	}
	e.wg.Wait()
}
