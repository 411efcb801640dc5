package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"service-discounts/internal/domain"
	"service-discounts/internal/domain/engine"
	apperrors "service-discounts/internal/errors"
	"service-discounts/internal/interfaces"
	"service-discounts/internal/logging"
)

// CalculationService prices one order per call. A run is sequential and fail-fast: the first
// fatal error aborts it, nothing is pushed, and the caller is notified exactly once.
type CalculationService struct {
	settings domain.Settings
	deps     interfaces.Collaborators
}

func NewCalculationService(settings domain.Settings, deps interfaces.Collaborators) interfaces.CalculationFacade {
	return &CalculationService{settings: settings, deps: deps}
}

// failure is the status reported when a run stops early.
type failure struct {
	status Status
	args   []any
}

func (s *CalculationService) Calculate(ctx context.Context, req interfaces.CalculationRequest) (*domain.CalculationResult, error) {
	runID := uuid.NewString()
	log := logging.With(zap.String("run_id", runID), zap.Int64("order_id", req.OrderID), zap.Int64("company_id", req.CompanyID))
	start := time.Now()
	log.Info("calculation started")

	res, fail, err := s.run(ctx, runID, req, log)
	if err != nil {
		log.Error("calculation failed", zap.String("type", string(apperrors.TypeOf(err))), zap.Error(err))
		s.notify(ctx, failureMessage(fail.status, err, fail.args...), map[string]any{
			"run_id":   runID,
			"order_id": req.OrderID,
			"type":     string(apperrors.TypeOf(err)),
			"error":    err.Error(),
		})
		return nil, err
	}

	log.Info("calculation finished", zap.Duration("took", time.Since(start)), zap.Bool("changed", res.Changed))
	s.notify(ctx, Message(StatusCalculationOK), map[string]any{
		"run_id":            runID,
		"order_id":          res.OrderID,
		"discounts":         res.Discounts,
		"product_discounts": res.ProductDiscounts,
		"lines":             res.Lines,
	})
	return res, nil
}

func (s *CalculationService) run(ctx context.Context, runID string, req interfaces.CalculationRequest, log *zap.Logger) (*domain.CalculationResult, failure, error) {
	if req.OrderID <= 0 || req.CompanyID <= 0 {
		return nil, failure{status: StatusInputError},
			apperrors.Input(fmt.Sprintf("invalid order id %d or company id %d", req.OrderID, req.CompanyID))
	}
	if err := s.settings.Validate(); err != nil {
		return nil, failure{status: StatusMainError}, err
	}

	lines, lf, err := fetchLines(ctx, s.deps.Orders, s.deps.Catalog, s.settings.GroupField, req.OrderID)
	if err != nil {
		return nil, failure{status: lf.status, args: productArgs(lf)}, err
	}
	input := copyLines(lines)

	totals := engine.Aggregate(lines)
	log.Info("group totals", zap.Any("totals", totals), zap.Int("lines", len(lines)))
	steps := []domain.ExecutionStep{{
		Phase:   engine.PhaseAggregate,
		RuleID:  "lines",
		Action:  "aggregate",
		Message: fmt.Sprintf("%d lines in %d groups", len(lines), len(totals)),
	}}

	company, err := s.deps.Companies.FetchCompany(ctx, req.CompanyID)
	if err != nil {
		return nil, failure{status: StatusNoCompany}, apperrors.Lookup("company", err).WithContext("company_id", req.CompanyID)
	}

	evaluators, err := engine.BuildEvaluators(s.settings, engine.Deps{Volumes: s.deps.Volumes, Rows: s.deps.Rows})
	if err != nil {
		return nil, failure{status: StatusMainError}, apperrors.Internal("cannot build evaluators", err)
	}
	eng := &engine.Engine{
		Settings:   s.settings,
		Evaluators: evaluators,
		Programs:   s.deps.Programs,
		Lists:      s.deps.Lists,
	}
	outcome, err := eng.Run(ctx, company, totals)
	if err != nil {
		return nil, failure{status: engineStatus(err)}, err
	}
	steps = append(steps, outcome.Log...)

	steps = append(steps, engine.ApplyPrices(lines, outcome.Discounts, outcome.Products, s.settings.ProductOverride)...)
	for _, line := range lines {
		log.Debug("line priced",
			zap.Int64("product_id", int64(line.ProductID)),
			zap.Int("discount_rate", line.DiscountRate),
			zap.String("price", line.Price.StringFixed(domain.MoneyPlaces)))
	}

	if err := s.checkGuards(ctx, lines, company); err != nil {
		return nil, failure{status: StatusGuardBlocked, args: []any{guardID(err)}}, err
	}

	res := &domain.CalculationResult{
		RunID:            runID,
		OrderID:          req.OrderID,
		CompanyID:        req.CompanyID,
		Lines:            lines,
		Totals:           totals,
		Discounts:        outcome.Discounts,
		ProductDiscounts: outcome.Products,
		ExecutionLog:     steps,
	}
	if s.deps.Differ != nil {
		delta, err := s.deps.Differ.Diff(input, lines)
		if err != nil {
			return nil, failure{status: StatusMainError}, apperrors.Internal("cannot diff lines", err)
		}
		res.Delta = delta
		res.Changed = len(delta) > 2
	}

	if err := s.deps.Sink.PushResults(ctx, req.OrderID, lines); err != nil {
		return nil, failure{status: StatusPushFailed}, apperrors.Remote("cannot push results", err).WithContext("order_id", req.OrderID)
	}
	return res, failure{}, nil
}

// checkGuards aborts the run when any guard blocks a priced line.
func (s *CalculationService) checkGuards(ctx context.Context, lines []domain.LineItem, company domain.Company) error {
	if len(s.settings.Guards) == 0 {
		return nil
	}
	if s.deps.Guards == nil {
		return apperrors.ConfigurationMissing("guard executor")
	}
	hits, err := engine.CheckGuards(ctx, s.deps.Guards, s.settings.Guards, lines, company)
	if err != nil {
		return apperrors.Internal("cannot evaluate guards", err)
	}
	if len(hits) == 0 {
		return nil
	}
	return apperrors.Newf(apperrors.TypeGuardViolation, "%d guard violations: %s", len(hits), hits[0].Context).
		WithContext("violations", hits).
		WithContext("rule_id", hits[0].RuleID)
}

func (s *CalculationService) notify(ctx context.Context, status string, result map[string]any) {
	if s.deps.Notifier == nil {
		logging.Debug("no notifier configured", zap.String("status", status))
		return
	}
	s.deps.Notifier.Notify(ctx, status, result)
}

func productArgs(lf *lineFailure) []any {
	if lf == nil || lf.status != StatusNoProductProps {
		return nil
	}
	return []any{lf.productID}
}

func guardID(err error) string {
	id, _ := apperrors.ContextValue(err, "rule_id")
	s, _ := id.(string)
	return s
}
