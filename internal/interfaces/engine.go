package interfaces

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

// CalculationRequest identifies the order to price and its buyer.
type CalculationRequest struct {
	OrderID   int64 `json:"order_id"`
	CompanyID int64 `json:"company_id"`
}

// CalculationFacade is the entry point of a discount calculation run.
type CalculationFacade interface {
	Calculate(ctx context.Context, req CalculationRequest) (*domain.CalculationResult, error)
}

// VolumeFacade records and reads accumulated volumes.
type VolumeFacade interface {
	RecordVolume(ctx context.Context, req CalculationRequest) ([]domain.VolumeEntry, error)
	ReadVolume(ctx context.Context, companyID int64, group domain.GroupID) (decimal.Decimal, error)
	ImportVolumes(ctx context.Context, r io.Reader) (int, error)
}
