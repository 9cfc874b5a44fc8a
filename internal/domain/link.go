package domain

import (
	"time"

	"github.com/google/uuid"
)

// LinkType identifies why a waypoint edge exists between two memories.
type LinkType string

const (
	LinkSemantic  LinkType = "semantic"
	LinkCausal    LinkType = "causal"
	LinkTemporal  LinkType = "temporal"
	LinkAnalogical LinkType = "analogical"
)

func ValidLinkType(t string) bool {
	switch LinkType(t) {
	case LinkSemantic, LinkCausal, LinkTemporal, LinkAnalogical:
		return true
	}
	return false
}

// Link is a directed, typed, weighted edge in the waypoint graph. At most
// one Link exists per (SourceID, TargetID, LinkType) triple; the graph
// builder upserts by taking the greater weight on conflict.
type Link struct {
	ID        uuid.UUID `json:"id"`
	Namespace string    `json:"namespace"`
	SourceID  uuid.UUID `json:"sourceId"`
	TargetID  uuid.UUID `json:"targetId"`
	LinkType  LinkType  `json:"linkType"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l Link) Validate() error {
	if !ValidLinkType(string(l.LinkType)) {
		return ValidationErrorf("linkType", "unknown link type %q", l.LinkType)
	}
	if l.Weight <= 0 || l.Weight > 1 {
		return ValidationErrorf("weight", "weight must be in (0,1]")
	}
	if l.SourceID == l.TargetID {
		return ValidationErrorf("targetId", "a memory cannot link to itself")
	}
	return nil
}
