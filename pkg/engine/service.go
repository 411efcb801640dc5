package engine

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
	"service-discounts/internal/infrastructure/diff"
	"service-discounts/internal/infrastructure/jsonlogic"
	"service-discounts/internal/infrastructure/memory"
	"service-discounts/internal/infrastructure/notify"
	"service-discounts/internal/interfaces"
	"service-discounts/internal/usecase"
)

// Service runs calculations against CRM snapshots. Volumes live in the configured store.
// Volumes carried by a snapshot are read ahead of the store for the keys they name.
type Service struct {
	settings Settings
	volumes  VolumeStore
	notifier Notifier
	guards   *jsonlogic.GuardExecutor
}

// Option configures a Service.
type Option func(*Service)

// WithVolumeStore keeps accumulated volumes in store across calls.
func WithVolumeStore(store VolumeStore) Option {
	return func(s *Service) { s.volumes = store }
}

// WithNotifier sends the end-of-run acknowledgement to n instead of the log.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(settings Settings, opts ...Option) *Service {
	s := &Service{
		settings: settings,
		notifier: notify.LogNotifier{},
		guards:   jsonlogic.NewGuardExecutor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the discount configuration the service runs with.
func (s *Service) Settings() Settings {
	return s.settings
}

func (s *Service) collaborators(snap *Snapshot) interfaces.Collaborators {
	src := memory.NewSource(snap)
	var seed []domain.VolumeEntry
	if snap != nil {
		seed = snap.Volumes
	}
	var volumes interfaces.VolumeStore = s.volumes
	switch {
	case volumes == nil:
		volumes = memory.NewVolumeStore(seed...)
	case len(seed) > 0:
		volumes = memory.NewSeededVolumes(volumes, seed)
	}
	return interfaces.Collaborators{
		Orders:    src,
		Catalog:   src,
		Companies: src,
		Programs:  src,
		Lists:     src,
		Rows:      src,
		Volumes:   volumes,
		Sink:      memory.NewResultSink(),
		Notifier:  s.notifier,
		Guards:    s.guards,
		Differ:    &diff.Differ{},
	}
}

// Calculate prices an order of the snapshot.
func (s *Service) Calculate(ctx context.Context, snap *Snapshot, req Request) (*CalculationResult, error) {
	deps := s.collaborators(snap)
	return usecase.NewCalculationService(s.settings, deps).Calculate(ctx, req)
}

// RecordVolume adds the order's group totals to the accumulated volumes.
func (s *Service) RecordVolume(ctx context.Context, snap *Snapshot, req Request) ([]VolumeEntry, error) {
	deps := s.collaborators(snap)
	return usecase.NewVolumeService(s.settings, deps).RecordVolume(ctx, req)
}

// ReadVolume returns a stored volume. It needs a volume store.
func (s *Service) ReadVolume(ctx context.Context, companyID int64, group GroupID) (decimal.Decimal, error) {
	deps := s.collaborators(nil)
	return usecase.NewVolumeService(s.settings, deps).ReadVolume(ctx, companyID, group)
}

// ImportVolumes adds CSV volume rows to the store.
func (s *Service) ImportVolumes(ctx context.Context, r io.Reader) (int, error) {
	deps := s.collaborators(nil)
	return usecase.NewVolumeService(s.settings, deps).ImportVolumes(ctx, r)
}
