// Package postgres stores accumulated volumes in PostgreSQL through the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"service-discounts/internal/domain"
	"service-discounts/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS accumulated_volumes (
	portal_id             BIGINT        NOT NULL,
	company_id            BIGINT        NOT NULL,
	nomenclature_group_id BIGINT        NOT NULL DEFAULT 0,
	volume                NUMERIC(16,2) NOT NULL DEFAULT 0,
	updated_at            TIMESTAMPTZ   NOT NULL DEFAULT now(),
	PRIMARY KEY (portal_id, company_id, nomenclature_group_id)
)`

const selectVolume = `
SELECT volume FROM accumulated_volumes
WHERE portal_id = $1 AND company_id = $2 AND nomenclature_group_id = $3`

// upsertVolume creates the row or adds to it in one statement, so concurrent runs cannot lose an increment.
const upsertVolume = `
INSERT INTO accumulated_volumes (portal_id, company_id, nomenclature_group_id, volume, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (portal_id, company_id, nomenclature_group_id)
DO UPDATE SET volume = accumulated_volumes.volume + EXCLUDED.volume, updated_at = now()`

// Open connects to PostgreSQL and checks the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("database url not set")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logging.Info("database connection established")
	return db, nil
}

// VolumeStore keeps one row per volume key.
type VolumeStore struct {
	db *sql.DB
}

func NewVolumeStore(db *sql.DB) *VolumeStore {
	return &VolumeStore{db: db}
}

// EnsureSchema creates the volume table when it does not exist.
func (s *VolumeStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create accumulated_volumes: %w", err)
	}
	return nil
}

func (s *VolumeStore) ReadVolume(ctx context.Context, key domain.VolumeKey) (decimal.Decimal, bool, error) {
	var v decimal.Decimal
	err := s.db.QueryRowContext(ctx, selectVolume, key.PortalID, key.CompanyID, int64(key.GroupID)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read volume: %w", err)
	}
	return v, true, nil
}

func (s *VolumeStore) AddVolume(ctx context.Context, key domain.VolumeKey, delta decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, upsertVolume,
		key.PortalID, key.CompanyID, int64(key.GroupID), delta.RoundBank(domain.MoneyPlaces))
	if err != nil {
		return fmt.Errorf("failed to add volume: %w", err)
	}
	logging.Debug("volume upserted",
		zap.Int64("company_id", key.CompanyID), zap.Int64("group_id", int64(key.GroupID)), zap.String("delta", delta.String()))
	return nil
}

// AddVolumes upserts every entry in one transaction.
func (s *VolumeStore) AddVolumes(ctx context.Context, entries []domain.VolumeEntry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertVolume)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx,
			e.PortalID, e.CompanyID, int64(e.GroupID), e.Volume.RoundBank(domain.MoneyPlaces)); err != nil {
			return fmt.Errorf("failed to add volume of company %d group %d: %w", e.CompanyID, e.GroupID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit volumes: %w", err)
	}
	logging.Debug("volumes upserted", zap.Int("entries", len(entries)))
	return nil
}
