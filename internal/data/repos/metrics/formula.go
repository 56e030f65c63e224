package metrics

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type MetricFormulaRepo interface {
	// GetCurrent returns the single current version for the metric, or nil
	// when the metric has none (manual metrics, or never saved).
	GetCurrent(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) (*types.MetricFormula, error)
	Insert(ctx context.Context, tx *gorm.DB, f *types.MetricFormula) (*types.MetricFormula, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, formulaID uuid.UUID, fields map[string]any) error
	// CloseCurrent marks every current version for the metric non-current.
	// Used when a metric transitions from calculated to manual; history rows
	// are never deleted.
	CloseCurrent(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) error
	ListByMetric(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) ([]*types.MetricFormula, error)
}

type metricFormulaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricFormulaRepo(db *gorm.DB, baseLog *logger.Logger) MetricFormulaRepo {
	repoLog := baseLog.With("repo", "MetricFormulaRepo")
	return &metricFormulaRepo{db: db, log: repoLog}
}

func (fr *metricFormulaRepo) GetCurrent(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) (*types.MetricFormula, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.MetricFormula
	if err := transaction.WithContext(ctx).
		Where("metric_id = ? AND is_current = ?", metricID, true).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (fr *metricFormulaRepo) Insert(ctx context.Context, tx *gorm.DB, f *types.MetricFormula) (*types.MetricFormula, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (fr *metricFormulaRepo) UpdateFields(ctx context.Context, tx *gorm.DB, formulaID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.MetricFormula{}).
		Where("id = ?", formulaID).
		Updates(fields).Error
}

func (fr *metricFormulaRepo) CloseCurrent(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.MetricFormula{}).
		Where("metric_id = ? AND is_current = ?", metricID, true).
		Update("is_current", false).Error
}

func (fr *metricFormulaRepo) ListByMetric(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) ([]*types.MetricFormula, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.MetricFormula
	if err := transaction.WithContext(ctx).
		Where("metric_id = ?", metricID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
