package service

import (
	"context"
	"testing"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RefusesConcurrentRuns(t *testing.T) {
	memories := newMemMemoryStore()
	embeddings := newMemEmbeddingStore()
	tx := noopTxRunner{}
	engine := NewConsolidationEngine(tx, memories, embeddings, DeterministicSynthesizer{}, zap.NewNop())
	scheduler := NewConsolidationScheduler(engine, tx, memories, 1000, zap.NewNop())

	scheduler.mu.Lock()
	scheduler.status = domain.SchedulerRunning
	scheduler.mu.Unlock()

	_, err := scheduler.TriggerNow(context.Background(), domain.ConsolidationScope{Namespace: "ns1"})
	require.Error(t, err)
	require.Equal(t, domain.ErrJobInProgress, domain.KindOf(err))
}

func TestScheduler_RefusesOverLoadThreshold(t *testing.T) {
	memories := newMemMemoryStore()
	embeddings := newMemEmbeddingStore()
	tx := noopTxRunner{}
	engine := NewConsolidationEngine(tx, memories, embeddings, DeterministicSynthesizer{}, zap.NewNop())
	scheduler := NewConsolidationScheduler(engine, tx, memories, 2, zap.NewNop())

	seedEpisodicCluster(t, memories, embeddings, "ns1", 5, []float32{1, 0, 0, 0})

	_, err := scheduler.TriggerNow(context.Background(), domain.ConsolidationScope{Namespace: "ns1"})
	require.Error(t, err)
	require.Equal(t, domain.ErrLoadThresholdExceeded, domain.KindOf(err))
}

func TestScheduler_SetScheduleValidatesFieldCount(t *testing.T) {
	scheduler := NewConsolidationScheduler(nil, noopTxRunner{}, newMemMemoryStore(), 100, zap.NewNop())

	if err := scheduler.SetSchedule("0 3 * * *"); err != nil {
		t.Fatalf("valid cron rejected: %v", err)
	}
	err := scheduler.SetSchedule("not a cron")
	if domain.KindOf(err) != domain.ErrInvalidCronExpression {
		t.Fatalf("err kind = %v, want INVALID_CRON_EXPRESSION", domain.KindOf(err))
	}
}

func TestScheduler_StatusReturnsToIdleAfterRun(t *testing.T) {
	memories := newMemMemoryStore()
	embeddings := newMemEmbeddingStore()
	tx := noopTxRunner{}
	engine := NewConsolidationEngine(tx, memories, embeddings, DeterministicSynthesizer{}, zap.NewNop())
	scheduler := NewConsolidationScheduler(engine, tx, memories, 1000, zap.NewNop())

	_, err := scheduler.TriggerNow(context.Background(), domain.ConsolidationScope{Namespace: "ns1"})
	require.NoError(t, err)
	require.Equal(t, domain.SchedulerIdle, scheduler.GetStatus().Status)
}
