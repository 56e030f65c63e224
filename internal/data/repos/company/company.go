package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type CompanyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.Company) (*types.Company, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.Company, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, fields map[string]any) error
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	repoLog := baseLog.With("repo", "CompanyRepo")
	return &companyRepo{db: db, log: repoLog}
}

func (cr *companyRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Company) (*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (cr *companyRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Company
	if err := transaction.WithContext(ctx).
		Where("id = ?", companyID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (cr *companyRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Company{}).
		Where("id = ?", companyID).
		Updates(fields).Error
}
