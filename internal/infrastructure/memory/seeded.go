package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
	"service-discounts/internal/interfaces"
)

// SeededVolumes serves the volumes carried by a snapshot ahead of the store underneath.
// A key present in the seed reads the seed value; other keys and every write go to the store.
type SeededVolumes struct {
	base interfaces.VolumeStore
	seed map[domain.VolumeKey]decimal.Decimal
}

func NewSeededVolumes(base interfaces.VolumeStore, seed []domain.VolumeEntry) *SeededVolumes {
	s := &SeededVolumes{base: base, seed: make(map[domain.VolumeKey]decimal.Decimal, len(seed))}
	for _, e := range seed {
		s.seed[e.VolumeKey] = s.seed[e.VolumeKey].Add(e.Volume)
	}
	return s
}

func (s *SeededVolumes) ReadVolume(ctx context.Context, key domain.VolumeKey) (decimal.Decimal, bool, error) {
	if v, ok := s.seed[key]; ok {
		return v, true, nil
	}
	return s.base.ReadVolume(ctx, key)
}

func (s *SeededVolumes) AddVolume(ctx context.Context, key domain.VolumeKey, delta decimal.Decimal) error {
	return s.base.AddVolume(ctx, key, delta)
}

func (s *SeededVolumes) AddVolumes(ctx context.Context, entries []domain.VolumeEntry) error {
	return s.base.AddVolumes(ctx, entries)
}
