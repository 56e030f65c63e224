package metrics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type MetricRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *types.Metric) (*types.Metric, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) (*types.Metric, error)
	// ListByCompany returns every non-deleted metric for the company,
	// regardless of active state.
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Metric, error)
	ListActiveByIDs(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, metricIDs []uuid.UUID, excludeMetricID uuid.UUID) ([]*types.Metric, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, fields map[string]any) error
	SetActive(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, active bool) error
	SoftDelete(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) error
}

type metricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricRepo(db *gorm.DB, baseLog *logger.Logger) MetricRepo {
	repoLog := baseLog.With("repo", "MetricRepo")
	return &metricRepo{db: db, log: repoLog}
}

func (mr *metricRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Metric) (*types.Metric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (mr *metricRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) (*types.Metric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Metric
	if err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", metricID, companyID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *metricRepo) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Metric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Metric
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *metricRepo) ListActiveByIDs(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, metricIDs []uuid.UUID, excludeMetricID uuid.UUID) ([]*types.Metric, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Metric
	if len(metricIDs) == 0 {
		return results, nil
	}
	query := transaction.WithContext(ctx).
		Where("company_id = ? AND id IN ? AND is_active = ?", companyID, metricIDs, true)
	if excludeMetricID != uuid.Nil {
		query = query.Where("id <> ?", excludeMetricID)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *metricRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Metric{}).
		Where("id = ? AND company_id = ?", metricID, companyID).
		Updates(fields).Error
}

func (mr *metricRepo) SetActive(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, active bool) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Metric{}).
		Where("id = ? AND company_id = ?", metricID, companyID).
		Update("is_active", active).Error
}

func (mr *metricRepo) SoftDelete(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Metric{}).
		Where("id = ? AND company_id = ?", metricID, companyID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", metricID, companyID).
		Delete(&types.Metric{}).Error
}
