package services

import (
	"context"
	"fmt"
	"strings"

	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"github.com/pulseboard/pulseboard-backend/internal/rbac"
	"gorm.io/gorm"
)

type UpdateCompanyInput struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

type CompanyService interface {
	Get(ctx context.Context) (*types.Company, error)
	Update(ctx context.Context, input *UpdateCompanyInput) (*types.Company, error)
}

type companyService struct {
	db          *gorm.DB
	companyRepo companyrepos.CompanyRepo
	log         *logger.Logger
}

func NewCompanyService(db *gorm.DB, companyRepo companyrepos.CompanyRepo, baseLog *logger.Logger) CompanyService {
	svcLog := baseLog.With("service", "CompanyService")
	return &companyService{db: db, companyRepo: companyRepo, log: svcLog}
}

func (cs *companyService) Get(ctx context.Context) (*types.Company, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	company, err := cs.companyRepo.GetByID(ctx, nil, rd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if company == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return company, nil
}

func (cs *companyService) Update(ctx context.Context, input *UpdateCompanyInput) (*types.Company, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	if err := rbac.Require(rd.Role, types.RoleOwner); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Timezone != nil && strings.TrimSpace(*input.Timezone) != "" {
		fields["timezone"] = strings.TrimSpace(*input.Timezone)
	}
	if len(fields) > 0 {
		if err := cs.companyRepo.UpdateFields(ctx, nil, rd.CompanyID, fields); err != nil {
			return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
		}
	}
	return cs.Get(ctx)
}
