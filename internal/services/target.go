package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type SetTargetInput struct {
	MetricID   uuid.UUID `json:"metric_id"`
	PeriodType string    `json:"period_type"`
	Value      float64   `json:"value"`
}

// TargetService manages goal values per metric and period. Setting a target
// upserts by (metric, period).
type TargetService interface {
	Set(ctx context.Context, input *SetTargetInput) (*types.Target, error)
	List(ctx context.Context) ([]*types.Target, error)
	Deactivate(ctx context.Context, targetID uuid.UUID) error
}

type targetService struct {
	db         *gorm.DB
	targetRepo metricrepos.TargetRepo
	metricRepo metricrepos.MetricRepo
	log        *logger.Logger
}

func NewTargetService(
	db *gorm.DB,
	targetRepo metricrepos.TargetRepo,
	metricRepo metricrepos.MetricRepo,
	baseLog *logger.Logger,
) TargetService {
	svcLog := baseLog.With("service", "TargetService")
	return &targetService{db: db, targetRepo: targetRepo, metricRepo: metricRepo, log: svcLog}
}

func validPeriodType(periodType string) bool {
	switch periodType {
	case types.TargetPeriodDaily, types.TargetPeriodWeekly, types.TargetPeriodMonthly:
		return true
	}
	return false
}

func (ts *targetService) Set(ctx context.Context, input *SetTargetInput) (*types.Target, error) {
	rd, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}
	periodType := defaultString(input.PeriodType, types.TargetPeriodDaily)
	if !validPeriodType(periodType) {
		return nil, fmt.Errorf("Invalid period type %q.", periodType)
	}

	var result *types.Target
	err = ts.db.Transaction(func(tx *gorm.DB) error {
		metric, merr := ts.metricRepo.GetByID(ctx, tx, rd.CompanyID, input.MetricID)
		if merr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(merr))
		}
		if metric == nil {
			return pkgerrors.ErrNotFound
		}

		existing, gerr := ts.targetRepo.GetByMetricAndPeriod(ctx, tx, rd.CompanyID, input.MetricID, periodType)
		if gerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(gerr))
		}
		if existing != nil {
			if uerr := ts.targetRepo.UpdateFields(ctx, tx, rd.CompanyID, existing.ID, map[string]any{
				"value":     input.Value,
				"is_active": true,
			}); uerr != nil {
				return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(uerr))
			}
			existing.Value = input.Value
			existing.IsActive = true
			result = existing
			return nil
		}

		t := &types.Target{
			CompanyID:    rd.CompanyID,
			DepartmentID: metric.DepartmentID,
			MetricID:     input.MetricID,
			PeriodType:   periodType,
			Value:        input.Value,
			IsActive:     true,
		}
		if _, cerr := ts.targetRepo.Create(ctx, tx, t); cerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ts *targetService) List(ctx context.Context) ([]*types.Target, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	results, err := ts.targetRepo.ListByCompany(ctx, nil, rd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return results, nil
}

func (ts *targetService) Deactivate(ctx context.Context, targetID uuid.UUID) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}
	if err := ts.targetRepo.UpdateFields(ctx, nil, rd.CompanyID, targetID, map[string]any{
		"is_active": false,
	}); err != nil {
		ts.log.Warn("target deactivate failed",
			"target_id", targetID,
			"error", pkgerrors.FormatDatabaseError(err),
		)
	}
	return nil
}
