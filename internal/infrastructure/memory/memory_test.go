package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/infrastructure/snapshot"
)

func TestSource(t *testing.T) {
	ctx := context.Background()
	src := NewSource(&snapshot.Snapshot{
		Orders:         map[int64][]domain.LineItem{1: {{ID: 1, ProductID: 5}}},
		Catalog:        map[domain.ProductID]domain.Properties{5: {"g": "10"}},
		Companies:      map[int64]domain.Company{7: {Type: "PARTNER"}},
		Programs:       map[int64][]domain.ProgramRecord{31: {{"discount": 5}}},
		ReferenceLists: map[int64]map[domain.GroupID]domain.Properties{3: {10: {"active": "Y"}}},
	})

	lines, err := src.FetchOrderLines(ctx, 1)
	require.NoError(t, err)
	lines[0].DiscountRate = 50
	again, _ := src.FetchOrderLines(ctx, 1)
	assert.Zero(t, again[0].DiscountRate, "lines are copied")

	_, err = src.FetchOrderLines(ctx, 2)
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	_, err = src.FetchCatalogProperties(ctx, 6)
	assert.True(t, apperrors.IsType(err, apperrors.TypeNotFound))

	company, err := src.FetchCompany(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), company.ID)

	_, err = src.FetchProgramRecords(ctx, 99)
	assert.Error(t, err)

	elem, found, err := src.FetchReferenceListElement(ctx, 3, 10)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Y", elem["active"])

	_, found, err = src.FetchReferenceListElement(ctx, 3, 11)
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = src.FetchReferenceListElement(ctx, 4, 10)
	assert.Error(t, err)

	rows, err := src.FetchProductRows(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestVolumeStore_AddIsAtomic(t *testing.T) {
	ctx := context.Background()
	key := domain.VolumeKey{PortalID: 1, CompanyID: 7, GroupID: 10}
	store := NewVolumeStore()

	_, found, err := store.ReadVolume(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AddVolume(ctx, key, decimal.RequireFromString("1.10"))
		}()
	}
	wg.Wait()

	v, found, err := store.ReadVolume(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "55", v.String())
	assert.Len(t, store.Entries(), 1)
}

func TestVolumeStore_AddVolumes(t *testing.T) {
	ctx := context.Background()
	a := domain.VolumeKey{PortalID: 1, CompanyID: 7, GroupID: 10}
	b := domain.VolumeKey{PortalID: 1, CompanyID: 7, GroupID: 20}
	store := NewVolumeStore(domain.VolumeEntry{VolumeKey: a, Volume: decimal.RequireFromString("5")})

	require.NoError(t, store.AddVolumes(ctx, []domain.VolumeEntry{
		{VolumeKey: a, Volume: decimal.RequireFromString("10")},
		{VolumeKey: b, Volume: decimal.RequireFromString("20")},
	}))

	v, _, _ := store.ReadVolume(ctx, a)
	assert.Equal(t, "15", v.String())
	v, _, _ = store.ReadVolume(ctx, b)
	assert.Equal(t, "20", v.String())
}

func TestSeededVolumes(t *testing.T) {
	ctx := context.Background()
	seeded := domain.VolumeKey{PortalID: 1, CompanyID: 7, GroupID: 20}
	stored := domain.VolumeKey{PortalID: 1, CompanyID: 7, GroupID: 10}
	base := NewVolumeStore(
		domain.VolumeEntry{VolumeKey: seeded, Volume: decimal.RequireFromString("100")},
		domain.VolumeEntry{VolumeKey: stored, Volume: decimal.RequireFromString("300")},
	)
	store := NewSeededVolumes(base, []domain.VolumeEntry{{VolumeKey: seeded, Volume: decimal.RequireFromString("6000")}})

	v, found, err := store.ReadVolume(ctx, seeded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "6000", v.String(), "the seed wins over the store")

	v, found, err = store.ReadVolume(ctx, stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "300", v.String())

	require.NoError(t, store.AddVolume(ctx, seeded, decimal.RequireFromString("1")))
	require.NoError(t, store.AddVolumes(ctx, []domain.VolumeEntry{{VolumeKey: stored, Volume: decimal.RequireFromString("1")}}))
	v, _, _ = base.ReadVolume(ctx, seeded)
	assert.Equal(t, "101", v.String(), "writes reach the store")
	v, _, _ = base.ReadVolume(ctx, stored)
	assert.Equal(t, "301", v.String())
}

func TestResultSink(t *testing.T) {
	sink := NewResultSink()
	require.NoError(t, sink.PushResults(context.Background(), 1, []domain.LineItem{{ID: 1}}))
	lines, ok := sink.Pushed(1)
	assert.True(t, ok)
	assert.Len(t, lines, 1)

	sink.Err = errors.New("crm down")
	assert.Error(t, sink.PushResults(context.Background(), 2, nil))
	_, ok = sink.Pushed(2)
	assert.False(t, ok)
}
