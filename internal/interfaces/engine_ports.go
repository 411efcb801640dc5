package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
	"service-discounts/internal/domain/engine"
)

// OrderSource fetches the product rows of an order. An order without catalog products is NOT_FOUND.
type OrderSource interface {
	FetchOrderLines(ctx context.Context, orderID int64) ([]domain.LineItem, error)
}

// CatalogSource fetches the catalog properties of a product.
type CatalogSource interface {
	FetchCatalogProperties(ctx context.Context, productID domain.ProductID) (domain.Properties, error)
}

// CompanySource fetches the buyer of an order.
type CompanySource interface {
	FetchCompany(ctx context.Context, companyID int64) (domain.Company, error)
}

// ProgramSource, ReferenceListSource and ProductRowSource are the engine's own read ports.
type (
	ProgramSource       = engine.ProgramRecords
	ReferenceListSource = engine.ReferenceLists
	ProductRowSource    = engine.ProductRows
)

// VolumeStore persists accumulated volumes. AddVolume creates the row when absent, else adds delta to it.
// AddVolumes does the same for every entry and either applies all of them or none.
type VolumeStore interface {
	engine.VolumeReader
	AddVolume(ctx context.Context, key domain.VolumeKey, delta decimal.Decimal) error
	AddVolumes(ctx context.Context, entries []domain.VolumeEntry) error
}

// ResultSink writes priced lines back to the order.
type ResultSink interface {
	PushResults(ctx context.Context, orderID int64, lines []domain.LineItem) error
}

// Notifier acknowledges the invoking system once per run. It is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, status string, result map[string]any)
}

// Differ returns the JSON merge patch turning before into after. An unchanged value yields "{}".
type Differ interface {
	Diff(before, after any) ([]byte, error)
}

// Collaborators bundles every external dependency of a run.
type Collaborators struct {
	Orders    OrderSource
	Catalog   CatalogSource
	Companies CompanySource
	Programs  ProgramSource
	Lists     ReferenceListSource
	Rows      ProductRowSource
	Volumes   VolumeStore
	Sink      ResultSink
	Notifier  Notifier
	Guards    engine.GuardExecutor
	Differ    Differ
}
