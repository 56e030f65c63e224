package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type DepartmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, d *types.Department) (*types.Department, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) (*types.Department, error)
	GetActiveByID(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) (*types.Department, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Department, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID, fields map[string]any) error
	SoftDelete(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) error
}

type departmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDepartmentRepo(db *gorm.DB, baseLog *logger.Logger) DepartmentRepo {
	repoLog := baseLog.With("repo", "DepartmentRepo")
	return &departmentRepo{db: db, log: repoLog}
}

func (dr *departmentRepo) Create(ctx context.Context, tx *gorm.DB, d *types.Department) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if err := transaction.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (dr *departmentRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.Department
	if err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *departmentRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.Department
	if err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ? AND is_active = ?", departmentID, companyID, true).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *departmentRepo) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.Department
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *departmentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Department{}).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Updates(fields).Error
}

func (dr *departmentRepo) SoftDelete(ctx context.Context, tx *gorm.DB, companyID, departmentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Department{}).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Delete(&types.Department{}).Error
}
