package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/logging"
	"service-discounts/pkg/engine"
)

// CalculationRequest carries the order to price and the CRM data it reads.
type CalculationRequest struct {
	OrderID   int64           `json:"order_id"`
	CompanyID int64           `json:"company_id"`
	Snapshot  json.RawMessage `json:"snapshot"`
	// Patch holds RFC 6902 operations applied to Snapshot before the calculation.
	Patch json.RawMessage `json:"patch,omitempty"`
}

type handlers struct {
	svc *engine.Service
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) calculate(c echo.Context) error {
	var req CalculationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	snap, err := engine.ParseSnapshot(req.Snapshot)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	res, err := h.svc.Calculate(c.Request().Context(), snap, engine.Request{OrderID: req.OrderID, CompanyID: req.CompanyID})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handlers) patchAndCalculate(c echo.Context) error {
	var req CalculationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid patch request"})
	}
	snap, err := engine.PatchSnapshot(req.Snapshot, req.Patch)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	res, err := h.svc.Calculate(c.Request().Context(), snap, engine.Request{OrderID: req.OrderID, CompanyID: req.CompanyID})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handlers) recordVolume(c echo.Context) error {
	var req CalculationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	snap, err := engine.ParseSnapshot(req.Snapshot)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	entries, err := h.svc.RecordVolume(c.Request().Context(), snap, engine.Request{OrderID: req.OrderID, CompanyID: req.CompanyID})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"volumes": entries})
}

func (h *handlers) readVolume(c echo.Context) error {
	companyID, err := strconv.ParseInt(c.QueryParam("company_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "company_id must be an integer"})
	}
	var group int64
	if g := c.QueryParam("group_id"); g != "" {
		if group, err = strconv.ParseInt(g, 10, 64); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "group_id must be an integer"})
		}
	}
	v, err := h.svc.ReadVolume(c.Request().Context(), companyID, domain.GroupID(group))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"company_id": companyID,
		"group_id":   group,
		"volume":     v.StringFixed(domain.MoneyPlaces),
	})
}

func (h *handlers) importVolumes(c echo.Context) error {
	n, err := h.svc.ImportVolumes(c.Request().Context(), c.Request().Body)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": n})
}

var statusByType = map[apperrors.Type]int{
	apperrors.TypeInput:                http.StatusBadRequest,
	apperrors.TypeNotFound:             http.StatusNotFound,
	apperrors.TypeGuardViolation:       http.StatusForbidden,
	apperrors.TypeDataInconsistency:    http.StatusUnprocessableEntity,
	apperrors.TypeLookupFailure:        http.StatusBadGateway,
	apperrors.TypeRemote:               http.StatusBadGateway,
	apperrors.TypeConfigurationMissing: http.StatusInternalServerError,
}

func errorJSON(c echo.Context, err error) error {
	t := apperrors.TypeOf(err)
	status, ok := statusByType[t]
	if !ok {
		status = http.StatusInternalServerError
	}
	body := map[string]any{"error": err.Error(), "type": t}
	if v, ok := apperrors.ContextValue(err, "violations"); ok {
		body["guards"] = v
	}
	if status >= http.StatusInternalServerError {
		logging.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, body)
}
