package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-discounts/internal/infrastructure/memory"
	"service-discounts/internal/infrastructure/notify"
	"service-discounts/pkg/engine"
)

const snapshotJSON = `{
  "orders": {"100": [
    {"id": 1, "product_id": 501, "unit_price": "1000.00", "quantity": "1"},
    {"id": 2, "product_id": 503, "unit_price": "150.00", "quantity": "2"}
  ]},
  "catalog": {
    "501": {"PROPERTY_NOMENCLATURE_GROUP": {"value": "10"}},
    "503": {"PROPERTY_NOMENCLATURE_GROUP": {"value": "20"}}
  },
  "companies": {"7": {"type": "DEALER"}},
  "programs": {
    "31": [{"company_type": "DEALER", "nomenclature_group": 10, "discount": 5}],
    "32": [{"opportunity": "1000", "discount": 8}]
  },
  "reference_lists": {"3": {"10": {"PROPERTY_INVOICE_ACTIVE": "Y"}}}
}`

func testServer() http.Handler {
	s := engine.DefaultSettings()
	s.ReferenceListID = 3
	s.Partner.ProgramID = 31
	s.Invoice.ProgramID = 32
	s.Accumulative.Enabled = false
	s.Product.Enabled = false
	svc := engine.NewService(s, engine.WithVolumeStore(memory.NewVolumeStore()), engine.WithNotifier(&notify.Recorder{}))
	return newServer(svc)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestCalculateEndpoint(t *testing.T) {
	h := testServer()

	t.Run("prices the order", func(t *testing.T) {
		rec, out := do(t, h, http.MethodPost, "/calculations",
			`{"order_id": 100, "company_id": 7, "snapshot": `+snapshotJSON+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, map[string]any{"10": 8.0}, out["discounts"])
		assert.Equal(t, true, out["changed"])
	})

	t.Run("patch changes the snapshot first", func(t *testing.T) {
		rec, out := do(t, h, http.MethodPatch, "/calculations",
			`{"order_id": 100, "company_id": 7, "snapshot": `+snapshotJSON+`,
			  "patch": [{"op": "replace", "path": "/programs/31/0/discount", "value": 20}]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, map[string]any{"10": 20.0}, out["discounts"])
	})

	t.Run("bad patch", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPatch, "/calculations",
			`{"order_id": 100, "company_id": 7, "snapshot": `+snapshotJSON+`, "patch": [{"op": "remove", "path": "/nope"}]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		rec, out := do(t, h, http.MethodPost, "/calculations",
			`{"order_id": 5, "company_id": 7, "snapshot": `+snapshotJSON+`}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", out["type"])
	})

	t.Run("invalid ids", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/calculations", `{"order_id": 0, "company_id": 0, "snapshot": {}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVolumeEndpoints(t *testing.T) {
	h := testServer()

	rec, out := do(t, h, http.MethodGet, "/volumes?company_id=7&group_id=10", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", out["type"])

	rec, out = do(t, h, http.MethodPost, "/volumes", `{"order_id": 100, "company_id": 7, "snapshot": `+snapshotJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, out["volumes"], 2)

	rec, out = do(t, h, http.MethodGet, "/volumes?company_id=7&group_id=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000.00", out["volume"])

	rec, out = do(t, h, http.MethodPost, "/volumes/import", "company_id,portal_id,volume,nomenclature_group_id\n7,1,5,10\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, out["imported"])

	rec, _ = do(t, h, http.MethodGet, "/volumes?company_id=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const accumulativeSnapshotJSON = `{
  "orders": {"100": [
    {"id": 1, "product_id": 501, "unit_price": "1000.00", "quantity": "1"},
    {"id": 2, "product_id": 503, "unit_price": "150.00", "quantity": "2"}
  ]},
  "catalog": {
    "501": {"PROPERTY_NOMENCLATURE_GROUP": {"value": "10"}},
    "503": {"PROPERTY_NOMENCLATURE_GROUP": {"value": "20"}}
  },
  "companies": {"7": {"type": "DEALER"}},
  "programs": {
    "33": [{"id": "3", "nomenclature_group": "20",
            "first_limit": "0", "first_discount": "5",
            "second_limit": "1000", "second_discount": "10",
            "third_limit": "5000", "third_discount": "15"}]
  },
  "reference_lists": {"3": {"20": {"PROPERTY_ACCUMULATIVE_ACTIVE": "Y"}}},
  "volumes": [{"portal_id": 1, "company_id": 7, "nomenclature_group_id": 20, "volume": "6000"}]
}`

func TestCalculateEndpoint_SnapshotVolumes(t *testing.T) {
	s := engine.DefaultSettings()
	s.ReferenceListID = 3
	s.Partner.Enabled = false
	s.Invoice.Enabled = false
	s.Accumulative.ProgramID = 33
	s.Product.Enabled = false
	store := memory.NewVolumeStore()
	h := newServer(engine.NewService(s, engine.WithVolumeStore(store), engine.WithNotifier(&notify.Recorder{})))

	rec, out := do(t, h, http.MethodPost, "/calculations",
		`{"order_id": 100, "company_id": 7, "snapshot": `+accumulativeSnapshotJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"20": 15.0}, out["discounts"])

	lines := out["lines"].([]any)
	assert.Equal(t, 0.0, lines[0].(map[string]any)["discount_rate"])
	assert.Equal(t, 15.0, lines[1].(map[string]any)["discount_rate"])
	assert.Empty(t, store.Entries(), "snapshot volumes are not written to the store")
}

func TestHealth(t *testing.T) {
	rec, out := do(t, testServer(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}
