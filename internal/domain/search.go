package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchQuery is the input to the search engine (component G). QueryText
// is optional: when empty, Search runs in metadata-only mode (every
// hit's Similarity is 0, and candidates are enumerated by sector rather
// than ranked by vector distance).
type SearchQuery struct {
	Namespace  string
	QueryText  string
	Sectors    []Sector // empty means all sectors
	MetadataEq map[string]any

	Keywords       []string // matches if any overlaps Metadata["keywords"], case-insensitive
	Tags           []string // matches if any overlaps Metadata["tags"], case-insensitive
	Category       string   // matches Metadata["category"] exactly, case-insensitive
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time

	MinStrength float64
	MinSalience float64

	Limit  int
	Offset int
}

// MaxSearchLimit is the hard cap on Limit; requests above it are a
// ValidationError rather than silently truncated.
const MaxSearchLimit = 1000

// SearchHit is one scored result from the search engine. Score is the
// composite of similarity, salience, recency, and linkWeight, each
// clamped to [0,1] before weighting.
type SearchHit struct {
	Memory     Memory
	Similarity float64
	Salience   float64
	Recency    float64
	LinkWeight float64
	Score      float64
}

// SearchWeights are the fixed composite-score coefficients.
const (
	WeightSimilarity = 0.6
	WeightSalience   = 0.2
	WeightRecency    = 0.1
	WeightLinkWeight = 0.1
)

func (q SearchQuery) Validate() error {
	if q.Namespace == "" {
		return ValidationErrorf("namespace", "namespace is required")
	}
	if q.Limit < 0 {
		return ValidationErrorf("limit", "limit must be non-negative")
	}
	if q.Limit > MaxSearchLimit {
		return ValidationErrorf("limit", "limit must not exceed %d", MaxSearchLimit)
	}
	if q.Offset < 0 {
		return ValidationErrorf("offset", "offset must be non-negative")
	}
	if q.MinStrength < 0 || q.MinStrength > 1 {
		return ValidationErrorf("minStrength", "minStrength must be in [0,1]")
	}
	if q.MinSalience < 0 || q.MinSalience > 1 {
		return ValidationErrorf("minSalience", "minSalience must be in [0,1]")
	}
	for _, s := range q.Sectors {
		if !ValidSector(string(s)) {
			return ValidationErrorf("sectors", "unknown sector %q", s)
		}
	}
	return nil
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// CompositeScore implements the fixed weighted-sum formula, clamping
// each component before weighting so a misbehaving scorer can't push
// the total out of [0,1].
func CompositeScore(similarity, salience, recency, linkWeight float64) float64 {
	return WeightSimilarity*Clamp01(similarity) +
		WeightSalience*Clamp01(salience) +
		WeightRecency*Clamp01(recency) +
		WeightLinkWeight*Clamp01(linkWeight)
}

// TieBreak reports whether a should sort before b: higher score first,
// then more-recently-accessed first, then lower id first.
func TieBreak(a, b SearchHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	at, bt := a.Memory.LastAccessedAt, b.Memory.LastAccessedAt
	switch {
	case at != nil && bt != nil && !at.Equal(*bt):
		return at.After(*bt)
	case at != nil && bt == nil:
		return true
	case at == nil && bt != nil:
		return false
	}
	return lessUUID(a.Memory.ID, b.Memory.ID)
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
