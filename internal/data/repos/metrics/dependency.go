package metrics

import (
	"context"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type MetricDependencyRepo interface {
	// DeleteByMetric removes every outgoing edge for the metric. Edges are
	// hard-deleted; the formula version history carries the audit trail.
	DeleteByMetric(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) error
	Create(ctx context.Context, tx *gorm.DB, edges []*types.MetricFormulaDependency) error
	ListByMetricIDs(ctx context.Context, tx *gorm.DB, metricIDs []uuid.UUID) ([]*types.MetricFormulaDependency, error)
	// ListDependents returns the edges pointing at the given metric
	// (reverse lookup, used for deletion-safety checks).
	ListDependents(ctx context.Context, tx *gorm.DB, dependsOnMetricID uuid.UUID) ([]*types.MetricFormulaDependency, error)
}

type metricDependencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricDependencyRepo(db *gorm.DB, baseLog *logger.Logger) MetricDependencyRepo {
	repoLog := baseLog.With("repo", "MetricDependencyRepo")
	return &metricDependencyRepo{db: db, log: repoLog}
}

func (dr *metricDependencyRepo) DeleteByMetric(ctx context.Context, tx *gorm.DB, metricID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	return transaction.WithContext(ctx).
		Where("metric_id = ?", metricID).
		Delete(&types.MetricFormulaDependency{}).Error
}

func (dr *metricDependencyRepo) Create(ctx context.Context, tx *gorm.DB, edges []*types.MetricFormulaDependency) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if len(edges) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&edges).Error
}

func (dr *metricDependencyRepo) ListByMetricIDs(ctx context.Context, tx *gorm.DB, metricIDs []uuid.UUID) ([]*types.MetricFormulaDependency, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.MetricFormulaDependency
	if len(metricIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("metric_id IN ?", metricIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *metricDependencyRepo) ListDependents(ctx context.Context, tx *gorm.DB, dependsOnMetricID uuid.UUID) ([]*types.MetricFormulaDependency, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.MetricFormulaDependency
	if err := transaction.WithContext(ctx).
		Where("depends_on_metric_id = ?", dependsOnMetricID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
