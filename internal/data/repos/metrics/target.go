package metrics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type TargetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, t *types.Target) (*types.Target, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID, targetID uuid.UUID) (*types.Target, error)
	GetByMetricAndPeriod(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, periodType string) (*types.Target, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Target, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, companyID, targetID uuid.UUID, fields map[string]any) error
	// DeactivateByMetric flips every target for the metric inactive. Invoked
	// as a side effect of metric deletion.
	DeactivateByMetric(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) error
}

type targetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTargetRepo(db *gorm.DB, baseLog *logger.Logger) TargetRepo {
	repoLog := baseLog.With("repo", "TargetRepo")
	return &targetRepo{db: db, log: repoLog}
}

func (tr *targetRepo) Create(ctx context.Context, tx *gorm.DB, t *types.Target) (*types.Target, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if err := transaction.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (tr *targetRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, targetID uuid.UUID) (*types.Target, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var result types.Target
	if err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", targetID, companyID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *targetRepo) GetByMetricAndPeriod(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, periodType string) (*types.Target, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var result types.Target
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND metric_id = ? AND period_type = ?", companyID, metricID, periodType).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *targetRepo) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Target, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.Target
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *targetRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID, targetID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Target{}).
		Where("id = ? AND company_id = ?", targetID, companyID).
		Updates(fields).Error
}

func (tr *targetRepo) DeactivateByMetric(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Target{}).
		Where("company_id = ? AND metric_id = ?", companyID, metricID).
		Update("is_active", false).Error
}
