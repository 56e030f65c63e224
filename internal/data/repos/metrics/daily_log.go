package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type DailyLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *types.DailyLogEntry) (*types.DailyLogEntry, error)
	GetByProfileAndDate(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, logDate time.Time) (*types.DailyLogEntry, error)
	ListByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, limit int) ([]*types.DailyLogEntry, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, fields map[string]any) error
}

type dailyLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyLogRepo(db *gorm.DB, baseLog *logger.Logger) DailyLogRepo {
	repoLog := baseLog.With("repo", "DailyLogRepo")
	return &dailyLogRepo{db: db, log: repoLog}
}

func (lr *dailyLogRepo) Create(ctx context.Context, tx *gorm.DB, e *types.DailyLogEntry) (*types.DailyLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if err := transaction.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (lr *dailyLogRepo) GetByProfileAndDate(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, logDate time.Time) (*types.DailyLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var result types.DailyLogEntry
	if err := transaction.WithContext(ctx).
		Where("profile_id = ? AND log_date = ?", profileID, logDate.Format("2006-01-02")).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (lr *dailyLogRepo) ListByProfile(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, limit int) ([]*types.DailyLogEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var results []*types.DailyLogEntry
	query := transaction.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("log_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *dailyLogRepo) UpdateFields(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.DailyLogEntry{}).
		Where("id = ?", entryID).
		Updates(fields).Error
}
