package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

// VolumeStore keeps accumulated volumes in a map. AddVolume and AddVolumes are atomic.
type VolumeStore struct {
	mu      sync.RWMutex
	volumes map[domain.VolumeKey]decimal.Decimal
}

func NewVolumeStore(seed ...domain.VolumeEntry) *VolumeStore {
	s := &VolumeStore{volumes: map[domain.VolumeKey]decimal.Decimal{}}
	for _, e := range seed {
		s.volumes[e.VolumeKey] = s.volumes[e.VolumeKey].Add(e.Volume)
	}
	return s
}

func (s *VolumeStore) ReadVolume(_ context.Context, key domain.VolumeKey) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.volumes[key]
	return v, ok, nil
}

func (s *VolumeStore) AddVolume(_ context.Context, key domain.VolumeKey, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes[key] = s.volumes[key].Add(delta)
	return nil
}

func (s *VolumeStore) AddVolumes(_ context.Context, entries []domain.VolumeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.volumes[e.VolumeKey] = s.volumes[e.VolumeKey].Add(e.Volume)
	}
	return nil
}

// Entries returns every stored volume.
func (s *VolumeStore) Entries() []domain.VolumeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VolumeEntry, 0, len(s.volumes))
	for k, v := range s.volumes {
		out = append(out, domain.VolumeEntry{VolumeKey: k, Volume: v})
	}
	return out
}
