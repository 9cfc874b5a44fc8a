package config

import (
	"sync/atomic"

	"github.com/cortexmemory/cortex/internal/domain"
)

// SectorConfig holds the tunable decay parameters shared by every
// memory. It is immutable once built; updates swap in a new value
// rather than mutating fields in place, so concurrent decay runs never
// observe a half-written config.
type SectorConfig struct {
	BaseLambda        float64
	MinimumStrength   float64
	SectorMultipliers map[domain.Sector]float64
}

// DefaultSectorConfig matches the multipliers used throughout the
// decay-formula examples: episodic memories fade fastest, semantic
// memories are the most durable, with procedural, reflective, and
// emotional sitting between in that retention order.
func DefaultSectorConfig() SectorConfig {
	return SectorConfig{
		BaseLambda:      0.02,
		MinimumStrength: 0.05,
		SectorMultipliers: map[domain.Sector]float64{
			domain.SectorSemantic:   0.3,
			domain.SectorProcedural: 0.4,
			domain.SectorReflective: 0.6,
			domain.SectorEmotional:  0.9,
			domain.SectorEpisodic:   1.5,
		},
	}
}

// SectorConfigPatch carries a partial update to SectorConfig. Nil/empty
// fields leave the corresponding current value unchanged.
type SectorConfigPatch struct {
	BaseLambda        *float64
	MinimumStrength   *float64
	SectorMultipliers map[domain.Sector]float64
}

func (c SectorConfig) Validate() error {
	if c.BaseLambda <= 0 {
		return domain.ValidationErrorf("baseLambda", "baseLambda must be positive")
	}
	if c.MinimumStrength < 0 || c.MinimumStrength > 1 {
		return domain.ValidationErrorf("minimumStrength", "minimumStrength must be in [0,1]")
	}
	for _, s := range domain.AllSectors {
		m, ok := c.SectorMultipliers[s]
		if !ok {
			return domain.ValidationErrorf("sectorMultipliers", "missing multiplier for sector %q", s)
		}
		if m <= 0 {
			return domain.ValidationErrorf("sectorMultipliers", "multiplier for sector %q must be positive", s)
		}
	}
	return nil
}

// Apply returns a new SectorConfig with patch applied on top of c.
func (c SectorConfig) Apply(patch SectorConfigPatch) SectorConfig {
	next := c
	next.SectorMultipliers = make(map[domain.Sector]float64, len(c.SectorMultipliers))
	for k, v := range c.SectorMultipliers {
		next.SectorMultipliers[k] = v
	}
	if patch.BaseLambda != nil {
		next.BaseLambda = *patch.BaseLambda
	}
	if patch.MinimumStrength != nil {
		next.MinimumStrength = *patch.MinimumStrength
	}
	for k, v := range patch.SectorMultipliers {
		next.SectorMultipliers[k] = v
	}
	return next
}

// SectorConfigStore is a copy-on-write holder for the live SectorConfig.
// Reads never block writers and vice versa, matching the way the rest
// of this package keeps configuration as plain values rather than
// mutex-guarded structs.
type SectorConfigStore struct {
	current atomic.Pointer[SectorConfig]
}

func NewSectorConfigStore(initial SectorConfig) *SectorConfigStore {
	s := &SectorConfigStore{}
	cfg := initial
	s.current.Store(&cfg)
	return s
}

func (s *SectorConfigStore) Get() SectorConfig {
	return *s.current.Load()
}

// Update validates patch applied to the current config and, if valid,
// atomically swaps it in. Returns the resulting config.
func (s *SectorConfigStore) Update(patch SectorConfigPatch) (SectorConfig, error) {
	next := s.Get().Apply(patch)
	if err := next.Validate(); err != nil {
		return SectorConfig{}, err
	}
	s.current.Store(&next)
	return next, nil
}
