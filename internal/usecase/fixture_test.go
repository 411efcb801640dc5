package usecase

import (
	"testing"

	"github.com/shopspring/decimal"

	"service-discounts/internal/domain"
	"service-discounts/internal/infrastructure/diff"
	"service-discounts/internal/infrastructure/jsonlogic"
	"service-discounts/internal/infrastructure/memory"
	"service-discounts/internal/infrastructure/notify"
	"service-discounts/internal/infrastructure/snapshot"
	"service-discounts/internal/interfaces"
)

const (
	orderID   int64 = 100
	companyID int64 = 7

	groupA domain.GroupID = 10
	groupB domain.GroupID = 20
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture is an order with two classified groups, A = 1200.00 and B = 300.00, and one unclassified line.
type fixture struct {
	settings domain.Settings
	snap     *snapshot.Snapshot
	sink     *memory.ResultSink
	volumes  *memory.VolumeStore
	notifier *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := domain.DefaultSettings()
	s.ReferenceListID = 3
	s.Partner.ProgramID = 31
	s.Invoice.ProgramID = 32
	s.Accumulative.ProgramID = 33
	s.Product.ProgramID = 34

	group := func(id string) domain.Properties {
		return domain.Properties{s.GroupField: map[string]any{"value": id}}
	}
	snap := &snapshot.Snapshot{
		Orders: map[int64][]domain.LineItem{orderID: {
			{ID: 1, ProductID: 501, UnitPrice: dec("1000.00"), Quantity: dec("1")},
			{ID: 2, ProductID: 502, UnitPrice: dec("200.00"), Quantity: dec("1")},
			{ID: 3, ProductID: 503, UnitPrice: dec("150.00"), Quantity: dec("2")},
			{ID: 4, ProductID: 504, UnitPrice: dec("50.00"), Quantity: dec("1")},
		}},
		Catalog: map[domain.ProductID]domain.Properties{
			501: group("10"),
			502: group("10"),
			503: group("20"),
			504: {s.GroupField: nil},
		},
		Companies: map[int64]domain.Company{companyID: {ID: companyID, Type: "DEALER"}},
		Programs: map[int64][]domain.ProgramRecord{
			31: {{"id": "1", "company_type": "DEALER", "nomenclature_group": "10", "discount": "5"}},
			32: {{"id": "2", "opportunity": "1000", "discount": "8"}},
			33: {{
				"id": "3", "nomenclature_group": "20",
				"first_limit": "0", "first_discount": "5",
				"second_limit": "1000", "second_discount": "10",
				"third_limit": "5000", "third_discount": "15",
			}},
			34: {
				{"id": "900", "companyId": "7", "discount": "20"},
				{"id": "901", "companyId": "7", "discount": "5"},
				{"id": "902", "companyId": "8", "discount": "50"},
			},
		},
		ReferenceLists: map[int64]map[domain.GroupID]domain.Properties{3: {
			groupA: {s.Invoice.Activity.Field: "Y", s.Accumulative.Activity.Field: "N"},
			groupB: {s.Invoice.Activity.Field: "N", s.Accumulative.Activity.Field: map[string]any{"77": "Y"}},
		}},
		ProductRows: map[int64][]domain.ProductRow{
			900: {{ProductID: 502}},
			901: {{ProductID: 501}},
			902: {{ProductID: 503}},
		},
	}
	return &fixture{
		settings: s,
		snap:     snap,
		sink:     memory.NewResultSink(),
		volumes: memory.NewVolumeStore(domain.VolumeEntry{
			VolumeKey: domain.VolumeKey{PortalID: 1, CompanyID: companyID, GroupID: groupB},
			Volume:    dec("6000"),
		}),
		notifier: &notify.Recorder{},
	}
}

func (f *fixture) collaborators() interfaces.Collaborators {
	src := memory.NewSource(f.snap)
	return interfaces.Collaborators{
		Orders:    src,
		Catalog:   src,
		Companies: src,
		Programs:  src,
		Lists:     src,
		Rows:      src,
		Volumes:   f.volumes,
		Sink:      f.sink,
		Notifier:  f.notifier,
		Guards:    jsonlogic.NewGuardExecutor(),
		Differ:    &diff.Differ{},
	}
}

func (f *fixture) calculator() interfaces.CalculationFacade {
	return NewCalculationService(f.settings, f.collaborators())
}

func (f *fixture) volumeService() interfaces.VolumeFacade {
	return NewVolumeService(f.settings, f.collaborators())
}
