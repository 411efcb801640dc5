package domain

import (
	"sort"

	apperrors "service-discounts/internal/errors"
)

// VolumeGranularity selects how accumulated volumes are keyed.
type VolumeGranularity string

const (
	// VolumePerCompany keeps one volume per (portal, company).
	VolumePerCompany VolumeGranularity = "company"
	// VolumePerCompanyGroup keeps one volume per (portal, company, nomenclature group).
	VolumePerCompanyGroup VolumeGranularity = "company_group"
)

// OverridePolicy selects how a per-product discount replaces a group discount.
type OverridePolicy string

const (
	// OverrideGreater replaces the group discount only when the product discount is strictly larger.
	OverrideGreater OverridePolicy = "greater"
	// OverrideAlways replaces the group discount unconditionally.
	OverrideAlways OverridePolicy = "always"
)

// ActivitySettings names the reference-list field flagging a group as taking part in a program.
type ActivitySettings struct {
	Field     string `yaml:"field" json:"field"`
	ActiveYes string `yaml:"active_yes" json:"active_yes"`
}

// PartnerSettings configures the partner program.
type PartnerSettings struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	ProgramID        int64  `yaml:"program_id" json:"program_id"`
	DiscountField    string `yaml:"discount_field" json:"discount_field"`
	CompanyTypeField string `yaml:"company_type_field" json:"company_type_field"`
	GroupField       string `yaml:"group_field" json:"group_field"`
}

// InvoiceSettings configures the invoice-threshold program.
type InvoiceSettings struct {
	Enabled        bool             `yaml:"enabled" json:"enabled"`
	ProgramID      int64            `yaml:"program_id" json:"program_id"`
	DiscountField  string           `yaml:"discount_field" json:"discount_field"`
	ThresholdField string           `yaml:"threshold_field" json:"threshold_field"`
	Activity       ActivitySettings `yaml:"activity" json:"activity"`
}

// AccumulativeSettings configures the accumulative program.
type AccumulativeSettings struct {
	Enabled             bool             `yaml:"enabled" json:"enabled"`
	ProgramID           int64            `yaml:"program_id" json:"program_id"`
	GroupField          string           `yaml:"group_field" json:"group_field"`
	FirstLimitField     string           `yaml:"first_limit_field" json:"first_limit_field"`
	FirstDiscountField  string           `yaml:"first_discount_field" json:"first_discount_field"`
	SecondLimitField    string           `yaml:"second_limit_field" json:"second_limit_field"`
	SecondDiscountField string           `yaml:"second_discount_field" json:"second_discount_field"`
	ThirdLimitField     string           `yaml:"third_limit_field" json:"third_limit_field"`
	ThirdDiscountField  string           `yaml:"third_discount_field" json:"third_discount_field"`
	Activity            ActivitySettings `yaml:"activity" json:"activity"`
}

// ProductSettings configures the per-product program.
type ProductSettings struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	ProgramID     int64  `yaml:"program_id" json:"program_id"`
	DiscountField string `yaml:"discount_field" json:"discount_field"`
	CompanyField  string `yaml:"company_field" json:"company_field"`
	IDField       string `yaml:"id_field" json:"id_field"`
}

// GuardConfig is a JsonLogic condition that blocks a priced line when it evaluates to true.
type GuardConfig struct {
	ID           string         `yaml:"id" json:"id"`
	Logic        map[string]any `yaml:"logic" json:"logic"`
	ErrorMessage string         `yaml:"error_message" json:"error_message"`
}

// Settings is the discount configuration of one portal.
type Settings struct {
	PortalID        int64             `yaml:"portal_id" json:"portal_id"`
	GroupField      string            `yaml:"group_field" json:"group_field"`
	ReferenceListID int64             `yaml:"reference_list_id" json:"reference_list_id"`
	VolumeKey       VolumeGranularity `yaml:"volume_key" json:"volume_key"`
	ProductOverride OverridePolicy    `yaml:"product_override" json:"product_override"`

	Partner      PartnerSettings      `yaml:"partner" json:"partner"`
	Invoice      InvoiceSettings      `yaml:"invoice" json:"invoice"`
	Accumulative AccumulativeSettings `yaml:"accumulative" json:"accumulative"`
	Product      ProductSettings      `yaml:"product" json:"product"`

	Guards []GuardConfig `yaml:"guards" json:"guards,omitempty"`
}

// DefaultSettings enables every program with the field codes used by the CRM's defaults.
func DefaultSettings() Settings {
	return Settings{
		PortalID:        1,
		GroupField:      "PROPERTY_NOMENCLATURE_GROUP",
		VolumeKey:       VolumePerCompanyGroup,
		ProductOverride: OverrideGreater,
		Partner: PartnerSettings{
			Enabled:          true,
			DiscountField:    "discount",
			CompanyTypeField: "company_type",
			GroupField:       "nomenclature_group",
		},
		Invoice: InvoiceSettings{
			Enabled:        true,
			DiscountField:  "discount",
			ThresholdField: "opportunity",
			Activity:       ActivitySettings{Field: "PROPERTY_INVOICE_ACTIVE", ActiveYes: "Y"},
		},
		Accumulative: AccumulativeSettings{
			Enabled:             true,
			GroupField:          "nomenclature_group",
			FirstLimitField:     "first_limit",
			FirstDiscountField:  "first_discount",
			SecondLimitField:    "second_limit",
			SecondDiscountField: "second_discount",
			ThirdLimitField:     "third_limit",
			ThirdDiscountField:  "third_discount",
			Activity:            ActivitySettings{Field: "PROPERTY_ACCUMULATIVE_ACTIVE", ActiveYes: "Y"},
		},
		Product: ProductSettings{
			Enabled:       true,
			DiscountField: "discount",
			CompanyField:  "companyId",
			IDField:       "id",
		},
	}
}

// VolumeKeyFor builds the storage key for a company's volume in group.
func (s Settings) VolumeKeyFor(companyID int64, group GroupID) VolumeKey {
	key := VolumeKey{PortalID: s.PortalID, CompanyID: companyID}
	if s.VolumeKey != VolumePerCompany {
		key.GroupID = group
	}
	return key
}

// Validate checks that every enabled program names the fields it reads.
func (s Settings) Validate() error {
	required := map[string]string{"group_field": s.GroupField}
	if s.Partner.Enabled {
		required["partner.discount_field"] = s.Partner.DiscountField
		required["partner.company_type_field"] = s.Partner.CompanyTypeField
		required["partner.group_field"] = s.Partner.GroupField
	}
	if s.Invoice.Enabled {
		required["invoice.discount_field"] = s.Invoice.DiscountField
		required["invoice.threshold_field"] = s.Invoice.ThresholdField
		required["invoice.activity.field"] = s.Invoice.Activity.Field
	}
	if s.Accumulative.Enabled {
		for name, v := range map[string]string{
			"group_field":           s.Accumulative.GroupField,
			"first_limit_field":     s.Accumulative.FirstLimitField,
			"first_discount_field":  s.Accumulative.FirstDiscountField,
			"second_limit_field":    s.Accumulative.SecondLimitField,
			"second_discount_field": s.Accumulative.SecondDiscountField,
			"third_limit_field":     s.Accumulative.ThirdLimitField,
			"third_discount_field":  s.Accumulative.ThirdDiscountField,
			"activity.field":        s.Accumulative.Activity.Field,
		} {
			required["accumulative."+name] = v
		}
	}
	if s.Product.Enabled {
		required["product.discount_field"] = s.Product.DiscountField
		required["product.company_field"] = s.Product.CompanyField
		required["product.id_field"] = s.Product.IDField
	}
	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if required[name] == "" {
			return apperrors.ConfigurationMissing(name)
		}
	}
	switch s.VolumeKey {
	case VolumePerCompany, VolumePerCompanyGroup:
	default:
		return apperrors.Newf(apperrors.TypeConfigurationMissing, "unknown volume_key %q", s.VolumeKey)
	}
	switch s.ProductOverride {
	case OverrideGreater, OverrideAlways:
	default:
		return apperrors.Newf(apperrors.TypeConfigurationMissing, "unknown product_override %q", s.ProductOverride)
	}
	return nil
}
