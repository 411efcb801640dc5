package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/interfaces"
)

func TestCalculationService_FullFlow(t *testing.T) {
	f := newFixture(t)
	req := interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID}

	res, err := f.calculator().Calculate(context.Background(), req)
	require.NoError(t, err)

	t.Run("groups keep the best discount of all programs", func(t *testing.T) {
		// partner 5% and invoice 8% on A, accumulative 15% on B for a 6000 volume
		assert.Equal(t, domain.DiscountMap{groupA: 8, groupB: 15}, res.Discounts)
		assert.Equal(t, domain.ProductDiscountMap{501: 5, 502: 20}, res.ProductDiscounts)
		assert.True(t, dec("1200").Equal(res.Totals[groupA]))
		assert.True(t, dec("300").Equal(res.Totals[groupB]))
	})

	t.Run("lines are priced", func(t *testing.T) {
		want := []struct {
			rate  int
			price string
		}{
			{8, "920.00"},  // group A; the 5% offer is not larger
			{20, "160.00"}, // the 20% offer beats group A
			{15, "127.50"}, // group B
			{0, "50.00"},   // unclassified
		}
		require.Len(t, res.Lines, len(want))
		for i, w := range want {
			assert.Equal(t, w.rate, res.Lines[i].DiscountRate, "line %d", i+1)
			assert.Equal(t, w.price, res.Lines[i].Price.StringFixed(2), "line %d", i+1)
		}
		assert.Equal(t, groupA, res.Lines[0].GroupID)
		assert.Equal(t, domain.Unclassified, res.Lines[3].GroupID)
	})

	t.Run("results are pushed and the caller notified once", func(t *testing.T) {
		pushed, ok := f.sink.Pushed(orderID)
		require.True(t, ok)
		assert.Equal(t, res.Lines, pushed)

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, Message(StatusCalculationOK), sent[0].Status)
		assert.Equal(t, res.RunID, sent[0].Result["run_id"])
	})

	t.Run("the delta flags changed lines", func(t *testing.T) {
		assert.True(t, res.Changed)
		assert.Contains(t, string(res.Delta), "discount_rate")
		assert.NotEmpty(t, res.RunID)
		assert.NotEmpty(t, res.ExecutionLog)
	})
}

func TestCalculationService_ProductOverridePolicy(t *testing.T) {
	f := newFixture(t)
	f.settings.ProductOverride = domain.OverrideAlways

	res, err := f.calculator().Calculate(context.Background(), interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Lines[0].DiscountRate)
	assert.Equal(t, "950.00", res.Lines[0].Price.StringFixed(2))
	assert.Equal(t, 20, res.Lines[1].DiscountRate)
}

func TestCalculationService_DisabledPrograms(t *testing.T) {
	f := newFixture(t)
	f.settings.Accumulative.Enabled = false
	f.settings.Product.Enabled = false
	delete(f.snap.Programs, 33)
	delete(f.snap.Programs, 34)

	res, err := f.calculator().Calculate(context.Background(), interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID})
	require.NoError(t, err)

	assert.Equal(t, domain.DiscountMap{groupA: 8}, res.Discounts)
	assert.Nil(t, res.ProductDiscounts)
	assert.Equal(t, "150.00", res.Lines[2].Price.StringFixed(2), "group B has no discount")
}

func TestCalculationService_PerCompanyVolumes(t *testing.T) {
	f := newFixture(t)
	f.settings.VolumeKey = domain.VolumePerCompany

	res, err := f.calculator().Calculate(context.Background(), interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID})
	require.NoError(t, err)
	_, ok := res.Discounts[groupB]
	assert.False(t, ok, "no volume is stored under the company-wide key")

	require.NoError(t, f.volumes.AddVolume(context.Background(), domain.VolumeKey{PortalID: 1, CompanyID: companyID}, dec("1500")))
	res, err = f.calculator().Calculate(context.Background(), interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Discounts[groupB])
}

func TestCalculationService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		req     interfaces.CalculationRequest
		errType apperrors.Type
		status  string
	}{
		{
			name:    "invalid request",
			req:     interfaces.CalculationRequest{OrderID: 0, CompanyID: companyID},
			errType: apperrors.TypeInput,
			status:  Message(StatusInputError),
		},
		{
			name:    "order without products",
			req:     interfaces.CalculationRequest{OrderID: 999, CompanyID: companyID},
			errType: apperrors.TypeNotFound,
			status:  Message(StatusNoProducts),
		},
		{
			name:    "product missing from the catalog",
			setup:   func(f *fixture) { delete(f.snap.Catalog, 503) },
			errType: apperrors.TypeDataInconsistency,
			status:  Message(StatusNoProductProps, domain.ProductID(503)),
		},
		{
			name: "non numeric nomenclature group",
			setup: func(f *fixture) {
				f.snap.Catalog[503] = domain.Properties{f.settings.GroupField: "abc"}
			},
			errType: apperrors.TypeDataInconsistency,
			status:  Message(StatusNoProductProps, domain.ProductID(503)),
		},
		{
			name:    "unknown company",
			req:     interfaces.CalculationRequest{OrderID: orderID, CompanyID: 8},
			errType: apperrors.TypeLookupFailure,
			status:  Message(StatusNoCompany),
		},
		{
			name:    "unreachable invoice program",
			setup:   func(f *fixture) { delete(f.snap.Programs, 32) },
			errType: apperrors.TypeLookupFailure,
			status:  Message(StatusNoInvoiceRecords),
		},
		{
			name: "non numeric discount",
			setup: func(f *fixture) {
				f.snap.Programs[32] = []domain.ProgramRecord{{"opportunity": "1000", "discount": "eight"}}
			},
			errType: apperrors.TypeDataInconsistency,
		},
		{
			name:    "result sink down",
			setup:   func(f *fixture) { f.sink.Err = errors.New("crm unavailable") },
			errType: apperrors.TypeRemote,
			status:  Message(StatusPushFailed),
		},
		{
			name: "guard blocks a deep discount",
			setup: func(f *fixture) {
				f.settings.Guards = []domain.GuardConfig{{
					ID:           "max-15",
					Logic:        map[string]any{">": []any{map[string]any{"var": "line.discount_rate"}, 15}},
					ErrorMessage: "discount above 15%",
				}}
			},
			errType: apperrors.TypeGuardViolation,
			status:  Message(StatusGuardBlocked, "max-15"),
		},
		{
			name:    "invalid settings",
			setup:   func(f *fixture) { f.settings.Partner.DiscountField = "" },
			errType: apperrors.TypeConfigurationMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			req := tt.req
			if req == (interfaces.CalculationRequest{}) {
				req = interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID}
			}

			res, err := f.calculator().Calculate(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)

			_, pushed := f.sink.Pushed(req.OrderID)
			assert.False(t, pushed, "nothing is pushed after a failure")

			sent := f.notifier.Sent()
			require.Len(t, sent, 1, "exactly one notification per run")
			if tt.status != "" {
				assert.Equal(t, tt.status, sent[0].Status)
			}
			assert.Equal(t, string(tt.errType), sent[0].Result["type"])
		})
	}
}

func TestCalculationService_BrokenReferenceListSkipsGroups(t *testing.T) {
	f := newFixture(t)
	f.settings.ReferenceListID = 4

	res, err := f.calculator().Calculate(context.Background(), interfaces.CalculationRequest{OrderID: orderID, CompanyID: companyID})
	require.NoError(t, err)
	// only the partner program, which ignores activity, discounts anything
	assert.Equal(t, domain.DiscountMap{groupA: 5}, res.Discounts)
}
