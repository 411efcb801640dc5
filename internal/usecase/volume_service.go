package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"service-discounts/internal/domain"
	"service-discounts/internal/domain/engine"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/interfaces"
	"service-discounts/internal/logging"
)

// VolumeService maintains the accumulated volumes the accumulative program reads.
type VolumeService struct {
	settings domain.Settings
	orders   interfaces.OrderSource
	catalog  interfaces.CatalogSource
	volumes  interfaces.VolumeStore
	notifier interfaces.Notifier
}

func NewVolumeService(settings domain.Settings, deps interfaces.Collaborators) interfaces.VolumeFacade {
	return &VolumeService{
		settings: settings,
		orders:   deps.Orders,
		catalog:  deps.Catalog,
		volumes:  deps.Volumes,
		notifier: deps.Notifier,
	}
}

// RecordVolume adds the group totals of an order to the company's accumulated volumes.
func (s *VolumeService) RecordVolume(ctx context.Context, req interfaces.CalculationRequest) ([]domain.VolumeEntry, error) {
	entries, fail, err := s.record(ctx, req)
	if err != nil {
		logging.Error("volume recording failed", zap.Int64("order_id", req.OrderID), zap.Error(err))
		s.notify(ctx, failureMessage(fail.status, err, fail.args...), map[string]any{
			"order_id": req.OrderID,
			"type":     string(apperrors.TypeOf(err)),
			"error":    err.Error(),
		})
		return nil, err
	}
	s.notify(ctx, Message(StatusVolumeRecorded), map[string]any{"order_id": req.OrderID, "volumes": entries})
	return entries, nil
}

func (s *VolumeService) record(ctx context.Context, req interfaces.CalculationRequest) ([]domain.VolumeEntry, failure, error) {
	if req.OrderID <= 0 || req.CompanyID <= 0 {
		return nil, failure{status: StatusInputError},
			apperrors.Input(fmt.Sprintf("invalid order id %d or company id %d", req.OrderID, req.CompanyID))
	}
	lines, lf, err := fetchLines(ctx, s.orders, s.catalog, s.settings.GroupField, req.OrderID)
	if err != nil {
		return nil, failure{status: lf.status, args: productArgs(lf)}, err
	}

	// Groups collapse onto one key when volumes are kept per company.
	var entries []domain.VolumeEntry
	index := map[domain.VolumeKey]int{}
	totals := engine.Aggregate(lines)
	for _, group := range totals.IDs() {
		key := s.settings.VolumeKeyFor(req.CompanyID, group)
		if i, ok := index[key]; ok {
			entries[i].Volume = entries[i].Volume.Add(totals[group])
			continue
		}
		index[key] = len(entries)
		entries = append(entries, domain.VolumeEntry{VolumeKey: key, Volume: totals[group]})
	}

	if err := s.volumes.AddVolumes(ctx, entries); err != nil {
		return nil, failure{status: StatusMainError}, apperrors.Lookup("accumulated volume", err).
			WithContext("company_id", req.CompanyID)
	}
	for _, e := range entries {
		logging.Info("volume added",
			zap.Int64("company_id", e.CompanyID),
			zap.Int64("group_id", int64(e.GroupID)),
			zap.String("volume", e.Volume.String()))
	}
	return entries, failure{}, nil
}

// ReadVolume returns the stored volume of a company in group.
func (s *VolumeService) ReadVolume(ctx context.Context, companyID int64, group domain.GroupID) (decimal.Decimal, error) {
	key := s.settings.VolumeKeyFor(companyID, group)
	v, ok, err := s.volumes.ReadVolume(ctx, key)
	if err != nil {
		err = apperrors.Lookup("accumulated volume", err)
		s.notify(ctx, failureMessage(StatusMainError, err), map[string]any{"company_id": companyID, "error": err.Error()})
		return decimal.Zero, err
	}
	if !ok {
		logging.Info("no accumulated volume", zap.Int64("company_id", companyID), zap.Int64("group_id", int64(group)))
		s.notify(ctx, Message(StatusVolumeNotFound), map[string]any{"company_id": companyID, "group_id": int64(group)})
		return decimal.Zero, apperrors.NotFound("accumulated volume",
			fmt.Sprintf("company %d group %d", companyID, group)).WithContext("key", key)
	}
	logging.Info("accumulated volume read",
		zap.Int64("company_id", companyID), zap.Int64("group_id", int64(group)), zap.String("volume", v.String()))
	s.notify(ctx, Message(StatusVolumeReadOK), map[string]any{
		"company_id": companyID,
		"group_id":   int64(group),
		"volume":     v.StringFixed(domain.MoneyPlaces),
	})
	return v, nil
}

// ImportVolumes loads CSV rows with the columns company_id, portal_id, volume and an optional
// nomenclature_group_id. Each row is added to the stored volume, creating it when absent.
// Rows are checked before any is stored and are stored together, so a bad file changes nothing.
func (s *VolumeService) ImportVolumes(ctx context.Context, r io.Reader) (int, error) {
	entries, err := s.readVolumes(r)
	if err == nil {
		if err = s.volumes.AddVolumes(ctx, entries); err != nil {
			err = apperrors.Lookup("accumulated volume", err)
		}
	}
	if err != nil {
		logging.Error("volume import failed", zap.Error(err))
		s.notify(ctx, failureMessage(StatusMainError, err), map[string]any{
			"type":  string(apperrors.TypeOf(err)),
			"error": err.Error(),
		})
		return 0, err
	}
	logging.Info("volumes imported", zap.Int("rows", len(entries)))
	s.notify(ctx, Message(StatusVolumesImported, len(entries)), map[string]any{"rows": len(entries)})
	return len(entries), nil
}

func (s *VolumeService) readVolumes(r io.Reader) ([]domain.VolumeEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.Input("empty volume file")
		}
		return nil, apperrors.Wrap(apperrors.TypeInput, "cannot read volume header", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"company_id", "portal_id", "volume"} {
		if _, ok := cols[name]; !ok {
			return nil, apperrors.Input("volume file lacks column " + name)
		}
	}

	var entries []domain.VolumeEntry
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "volume file line %d", line)
		}
		entry, err := s.parseVolumeRow(row, cols)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "volume file line %d", line)
		}
		entries = append(entries, entry)
	}
}

func (s *VolumeService) parseVolumeRow(row []string, cols map[string]int) (domain.VolumeEntry, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	companyID, err := strconv.ParseInt(field("company_id"), 10, 64)
	if err != nil {
		return domain.VolumeEntry{}, fmt.Errorf("company_id: %w", err)
	}
	portalID, err := strconv.ParseInt(field("portal_id"), 10, 64)
	if err != nil {
		return domain.VolumeEntry{}, fmt.Errorf("portal_id: %w", err)
	}
	volume, err := decimal.NewFromString(field("volume"))
	if err != nil {
		return domain.VolumeEntry{}, fmt.Errorf("volume: %w", err)
	}
	key := domain.VolumeKey{PortalID: portalID, CompanyID: companyID}
	if g := field("nomenclature_group_id"); g != "" && s.settings.VolumeKey == domain.VolumePerCompanyGroup {
		group, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return domain.VolumeEntry{}, fmt.Errorf("nomenclature_group_id: %w", err)
		}
		key.GroupID = domain.GroupID(group)
	}
	return domain.VolumeEntry{VolumeKey: key, Volume: volume.RoundBank(domain.MoneyPlaces)}, nil
}

func (s *VolumeService) notify(ctx context.Context, status string, result map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, status, result)
}
