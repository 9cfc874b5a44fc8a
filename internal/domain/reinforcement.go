package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReinforcementType identifies what triggered a reinforcement event.
type ReinforcementType string

const (
	ReinforcementAccess     ReinforcementType = "access"
	ReinforcementExplicit   ReinforcementType = "explicit"
	ReinforcementImportance ReinforcementType = "importance"
)

func ValidReinforcementType(t string) bool {
	switch ReinforcementType(t) {
	case ReinforcementAccess, ReinforcementExplicit, ReinforcementImportance:
		return true
	}
	return false
}

// ReinforcementBoost maps a reinforcement type to a base strength
// boost. The decay engine reads only the access entry, as the default
// boost of an access-triggered reinforcement before the
// diminishing-returns discount; explicit reinforcements use the
// caller's boost and importance reinforcements compute theirs from the
// memory's importance.
var ReinforcementBoost = map[ReinforcementType]float64{
	ReinforcementAccess:     0.05,
	ReinforcementExplicit:   0.2,
	ReinforcementImportance: 0.35,
}

// DiminishingReturnsWindow is the lookback window within which an
// access-triggered reinforcement earns only half its usual boost,
// measured from the memory's most recent reinforcement event of any type.
const DiminishingReturnsWindow = time.Hour

// DiminishingReturnsFactor is applied to the access boost when the most recent
// prior reinforcement event occurred within DiminishingReturnsWindow.
const DiminishingReturnsFactor = 0.5

// ReinforcementEvent is an append-only log entry recording one
// reinforcement applied to a memory.
type ReinforcementEvent struct {
	ID        uuid.UUID          `json:"id"`
	MemoryID  uuid.UUID          `json:"memoryId"`
	Type      ReinforcementType  `json:"type"`
	Boost     float64            `json:"boost"`
	Timestamp time.Time          `json:"timestamp"`
}
