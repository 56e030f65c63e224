package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// defaultDepartmentMetricCode is seeded into every new department so members
// have at least one loggable metric from day one.
const defaultDepartmentMetricCode = "follow_ups_completed"

type DepartmentService interface {
	Create(ctx context.Context, name string) (*types.Department, error)
	List(ctx context.Context) ([]*types.Department, error)
	Rename(ctx context.Context, departmentID uuid.UUID, name string) error
	// Delete is fire-and-forget like metric deletion.
	Delete(ctx context.Context, departmentID uuid.UUID) error
}

type departmentService struct {
	db             *gorm.DB
	departmentRepo companyrepos.DepartmentRepo
	metricRepo     metricrepos.MetricRepo
	log            *logger.Logger
}

func NewDepartmentService(
	db *gorm.DB,
	departmentRepo companyrepos.DepartmentRepo,
	metricRepo metricrepos.MetricRepo,
	baseLog *logger.Logger,
) DepartmentService {
	svcLog := baseLog.With("service", "DepartmentService")
	return &departmentService{
		db:             db,
		departmentRepo: departmentRepo,
		metricRepo:     metricRepo,
		log:            svcLog,
	}
}

func (ds *departmentService) Create(ctx context.Context, name string) (*types.Department, error) {
	rd, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("Department name is required.")
	}

	var created *types.Department
	err = ds.db.Transaction(func(tx *gorm.DB) error {
		d := &types.Department{
			CompanyID: rd.CompanyID,
			Name:      strings.TrimSpace(name),
			IsActive:  true,
		}
		if _, cerr := ds.departmentRepo.Create(ctx, tx, d); cerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
		}

		seed := &types.Metric{
			CompanyID:    rd.CompanyID,
			DepartmentID: d.ID,
			Name:         "Follow-ups Completed",
			Code:         defaultDepartmentMetricCode,
			DataType:     types.DataTypeBoolean,
			Unit:         "done",
			Direction:    types.DirectionHigherIsBetter,
			InputMode:    types.InputModeManual,
			IsActive:     true,
		}
		if _, merr := ds.metricRepo.Create(ctx, tx, seed); merr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(merr))
		}

		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (ds *departmentService) List(ctx context.Context) ([]*types.Department, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	results, err := ds.departmentRepo.ListByCompany(ctx, nil, rd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return results, nil
}

func (ds *departmentService) Rename(ctx context.Context, departmentID uuid.UUID, name string) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("Department name is required.")
	}
	existing, err := ds.departmentRepo.GetByID(ctx, nil, rd.CompanyID, departmentID)
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if existing == nil {
		return pkgerrors.ErrNotFound
	}
	if err := ds.departmentRepo.UpdateFields(ctx, nil, rd.CompanyID, departmentID, map[string]any{
		"name": strings.TrimSpace(name),
	}); err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return nil
}

func (ds *departmentService) Delete(ctx context.Context, departmentID uuid.UUID) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}
	if err := ds.departmentRepo.SoftDelete(ctx, nil, rd.CompanyID, departmentID); err != nil {
		ds.log.Warn("department delete failed",
			"department_id", departmentID,
			"error", pkgerrors.FormatDatabaseError(err),
		)
	}
	return nil
}
