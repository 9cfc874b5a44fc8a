package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsolidationSummary is a semantic-sector memory synthesized from a
// cluster of episodic memories. ParentIDs records the source cluster so
// the relationship can be traversed or exported.
type ConsolidationSummary struct {
	MemoryID  uuid.UUID   `json:"memoryId"`
	ParentIDs []uuid.UUID `json:"parentIds"`
	ClusterSize int       `json:"clusterSize"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ConsolidationScope restricts a consolidation run to a namespace and,
// optionally, the sector whose memories are clustered (episodic when
// left empty).
type ConsolidationScope struct {
	Namespace string
	Sector    Sector
}

// ConsolidationResult aggregates the outcome of one Consolidate call.
type ConsolidationResult struct {
	ClustersFound   int
	SummariesCreated []ConsolidationSummary
	SourcesWeakened int
}

// SchedulerStatus is the singleton consolidation scheduler's state.
type SchedulerStatus string

const (
	SchedulerIdle    SchedulerStatus = "idle"
	SchedulerRunning SchedulerStatus = "running"
)

// SchedulerState is the snapshot returned by GetStatus.
type SchedulerState struct {
	Status      SchedulerStatus `json:"status"`
	LastRunAt   *time.Time      `json:"lastRunAt,omitempty"`
	LastResult  *ConsolidationResult `json:"lastResult,omitempty"`
	CronExpr    string          `json:"cronExpr"`
}
