package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
)

// Evaluator computes candidate discounts for one program. The set of implementations is closed:
// PartnerEvaluator, InvoiceEvaluator, AccumulativeEvaluator and ProductEvaluator.
type Evaluator interface {
	Program() domain.ProgramType
	ProgramID() int64
	RequiredFields() []string
	Evaluate(ctx context.Context, scope Scope, records []domain.ProgramRecord) (Candidates, error)
	evaluator()
}

// ActivityScoped is implemented by evaluators that only see groups flagged active for them.
type ActivityScoped interface {
	Activity() domain.ActivitySettings
}

// ProgramRecords fetches the rule definitions of a program.
type ProgramRecords interface {
	FetchProgramRecords(ctx context.Context, programID int64) ([]domain.ProgramRecord, error)
}

// ReferenceLists fetches one element of a reference list; found is false when it does not exist.
type ReferenceLists interface {
	FetchReferenceListElement(ctx context.Context, listID, elementID int64) (elem domain.Properties, found bool, err error)
}

// ProductRows fetches the products attached to a per-product discount record.
type ProductRows interface {
	FetchProductRows(ctx context.Context, recordID int64) ([]domain.ProductRow, error)
}

// VolumeReader reads an accumulated volume; found is false when none is stored.
type VolumeReader interface {
	ReadVolume(ctx context.Context, key domain.VolumeKey) (volume decimal.Decimal, found bool, err error)
}

// GuardExecutor evaluates a guard condition against a priced line.
type GuardExecutor interface {
	Check(ctx context.Context, guard domain.GuardConfig, data map[string]any) (bool, error)
}
