package domain

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// GroupID identifies a nomenclature group. Zero means the product is unclassified.
type GroupID int64

// ProductID identifies a catalog product.
type ProductID int64

// Unclassified is the group id of a line whose product has no nomenclature group.
const Unclassified GroupID = 0

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// --- Order ---

// LineItem is one product row of an order. DiscountRate and Price are written by the price applicator.
type LineItem struct {
	ID           int64           `json:"id" yaml:"id"`
	ProductID    ProductID       `json:"product_id" yaml:"product_id"`
	ProductName  string          `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	GroupID      GroupID         `json:"nomenclature_group_id" yaml:"nomenclature_group_id"`
	UnitPrice    decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Quantity     decimal.Decimal `json:"quantity" yaml:"quantity"`
	DiscountRate int             `json:"discount_rate" yaml:"discount_rate"`
	Price        decimal.Decimal `json:"price" yaml:"price"`
}

// Classified reports whether the line belongs to a nomenclature group.
func (l LineItem) Classified() bool {
	return l.GroupID != Unclassified
}

// Amount is round(round(price,2) * round(qty,2), 2).
func (l LineItem) Amount() decimal.Decimal {
	price := l.UnitPrice.RoundBank(MoneyPlaces)
	qty := l.Quantity.RoundBank(MoneyPlaces)
	return price.Mul(qty).RoundBank(MoneyPlaces)
}

// Company is the buyer of an order as known to the CRM.
type Company struct {
	ID   int64  `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
	INN  string `json:"inn,omitempty" yaml:"inn,omitempty"`
}

// Properties is a field-code keyed record fetched from the catalog or a reference list.
type Properties map[string]any

// ProductRow is a product attached to a per-product discount record.
type ProductRow struct {
	ProductID ProductID `json:"product_id" yaml:"product_id"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
}

// --- Aggregates ---

// GroupTotals maps a nomenclature group to the summed amount of its lines.
type GroupTotals map[GroupID]decimal.Decimal

// Has reports whether id has a total.
func (g GroupTotals) Has(id GroupID) bool {
	_, ok := g[id]
	return ok
}

// Sum adds every group total.
func (g GroupTotals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, id := range g.IDs() {
		total = total.Add(g[id])
	}
	return total
}

// IDs returns the group ids in ascending order.
func (g GroupTotals) IDs() []GroupID {
	ids := make([]GroupID, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DiscountMap maps a nomenclature group to a discount percent.
type DiscountMap map[GroupID]int

// Clone returns a copy of the map.
func (d DiscountMap) Clone() DiscountMap {
	out := make(DiscountMap, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ProductDiscountMap maps a product to a discount percent.
type ProductDiscountMap map[ProductID]int

// VolumeKey addresses one accumulated volume row. GroupID is zero when volumes are kept per company.
type VolumeKey struct {
	PortalID  int64   `json:"portal_id"`
	CompanyID int64   `json:"company_id"`
	GroupID   GroupID `json:"nomenclature_group_id,omitempty"`
}

// VolumeEntry is an amount stored, or added, under a volume key.
type VolumeEntry struct {
	VolumeKey
	Volume decimal.Decimal `json:"volume"`
}

// --- Programs ---

// ProgramType enumerates the discount programs in evaluation order.
type ProgramType string

const (
	ProgramPartner      ProgramType = "partner"
	ProgramInvoice      ProgramType = "invoice"
	ProgramAccumulative ProgramType = "accumulative"
	ProgramProduct      ProgramType = "product"
)

// Programs lists every program type in the order a run evaluates them.
var Programs = []ProgramType{ProgramPartner, ProgramInvoice, ProgramAccumulative, ProgramProduct}

// --- Results ---

// ExecutionStep records one decision taken during a run.
type ExecutionStep struct {
	Phase   string `json:"phase"`
	RuleID  string `json:"ruleId"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// GuardViolation is a guard that blocked a priced line.
type GuardViolation struct {
	RuleID  string `json:"ruleId"`
	Reason  string `json:"reason"`
	Context string `json:"context"`
}

// CalculationResult is what a successful run delivers.
type CalculationResult struct {
	RunID            string             `json:"runId"`
	OrderID          int64              `json:"orderId"`
	CompanyID        int64              `json:"companyId"`
	Lines            []LineItem         `json:"lines"`
	Totals           GroupTotals        `json:"totals"`
	Discounts        DiscountMap        `json:"discounts"`
	ProductDiscounts ProductDiscountMap `json:"productDiscounts,omitempty"`
	ExecutionLog     []ExecutionStep    `json:"executionLog"`
	Changed          bool               `json:"changed"`
	// Delta is the merge patch from the order's input lines to the priced lines.
	Delta json.RawMessage `json:"delta,omitempty"`
}
