package domain

import (
	"time"

	"github.com/google/uuid"
)

// Memory is one stored record. It belongs to a namespace, carries one
// primary Sector, arbitrary Metadata, a Strength that decays over time
// via the decay engine, and a Salience that does not: salience is a
// caller-assigned importance weight, set at create/update time and left
// untouched by decay or reinforcement.
type Memory struct {
	ID          uuid.UUID      `json:"id"`
	Namespace   string         `json:"namespace"`
	Sector      Sector         `json:"sector"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Strength    float64        `json:"strength"`
	Salience    float64        `json:"salience"`
	AccessCount int64          `json:"accessCount"`

	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`

	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the memory has been soft-deleted.
func (m *Memory) IsDeleted() bool { return m.DeletedAt != nil }

// CreateMemoryInput is the payload accepted by the memory repository's
// Create operation.
type CreateMemoryInput struct {
	Namespace string
	Sector    Sector
	Content   string
	Metadata  map[string]any
	Strength  float64
	Salience  float64
}

// UpdateMemoryInput carries the mutable fields of an update call. A nil
// field is left unchanged.
type UpdateMemoryInput struct {
	Content  *string
	Metadata map[string]any
	Strength *float64
	Salience *float64
}

func (in CreateMemoryInput) Validate() error {
	if in.Namespace == "" {
		return ValidationErrorf("namespace", "namespace is required")
	}
	if !ValidSector(string(in.Sector)) {
		return ValidationErrorf("sector", "unknown sector %q", in.Sector)
	}
	if in.Content == "" {
		return ValidationErrorf("content", "content is required")
	}
	if in.Strength < 0 || in.Strength > 1 {
		return ValidationErrorf("strength", "strength must be in [0,1]")
	}
	if in.Salience < 0 || in.Salience > 1 {
		return ValidationErrorf("salience", "salience must be in [0,1]")
	}
	return nil
}

// BatchDeleteFailure records why one id in a batch delete did not
// succeed.
type BatchDeleteFailure struct {
	MemoryID uuid.UUID `json:"memoryId"`
	Error    string    `json:"error"`
}

// BatchDeleteResult reports the independent per-id outcome of a batch
// delete: ids that failed don't prevent the rest from being processed.
type BatchDeleteResult struct {
	SuccessCount int                  `json:"successCount"`
	FailureCount int                  `json:"failureCount"`
	Failures     []BatchDeleteFailure `json:"failures"`
}

// Validate rejects an UpdateMemoryInput carrying out-of-range Strength
// or Salience values. Unset fields are left unchecked.
func (in UpdateMemoryInput) Validate() error {
	if in.Strength != nil && (*in.Strength < 0 || *in.Strength > 1) {
		return ValidationErrorf("strength", "strength must be in [0,1]")
	}
	if in.Salience != nil && (*in.Salience < 0 || *in.Salience > 1) {
		return ValidationErrorf("salience", "salience must be in [0,1]")
	}
	return nil
}
