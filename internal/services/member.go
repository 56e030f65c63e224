package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"github.com/pulseboard/pulseboard-backend/internal/rbac"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AddMemberInput struct {
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

type UpdateMemberInput struct {
	FullName     *string    `json:"full_name"`
	Role         *string    `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
	IsActive     *bool      `json:"is_active"`
}

// MemberService manages profiles inside the acting member's company.
type MemberService interface {
	Me(ctx context.Context) (*types.Profile, error)
	Add(ctx context.Context, input *AddMemberInput) (*types.Profile, error)
	List(ctx context.Context) ([]*types.Profile, error)
	Update(ctx context.Context, profileID uuid.UUID, input *UpdateMemberInput) error
}

type memberService struct {
	db             *gorm.DB
	profileRepo    companyrepos.ProfileRepo
	departmentRepo companyrepos.DepartmentRepo
	log            *logger.Logger
}

func NewMemberService(
	db *gorm.DB,
	profileRepo companyrepos.ProfileRepo,
	departmentRepo companyrepos.DepartmentRepo,
	baseLog *logger.Logger,
) MemberService {
	svcLog := baseLog.With("service", "MemberService")
	return &memberService{
		db:             db,
		profileRepo:    profileRepo,
		departmentRepo: departmentRepo,
		log:            svcLog,
	}
}

func validRole(role string) bool {
	switch role {
	case types.RoleOwner, types.RoleManager, types.RoleMember:
		return true
	}
	return false
}

// Me returns the acting member's own profile.
func (s *memberService) Me(ctx context.Context) (*types.Profile, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	profile, err := s.profileRepo.GetByID(ctx, nil, rd.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if profile == nil || profile.CompanyID != rd.CompanyID {
		return nil, pkgerrors.ErrNotFound
	}
	return profile, nil
}

func (s *memberService) Add(ctx context.Context, input *AddMemberInput) (*types.Profile, error) {
	rd, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("Email and password are required.")
	}
	role := defaultString(input.Role, types.RoleMember)
	if !validRole(role) {
		return nil, fmt.Errorf("Invalid role %q.", role)
	}
	// A manager may not grant a role above their own.
	if !rbac.HasPermission(rd.Role, role) {
		return nil, pkgerrors.ErrForbidden
	}

	exists, err := s.profileRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if exists {
		return nil, fmt.Errorf("An account with this email already exists.")
	}

	if input.DepartmentID != nil {
		dept, derr := s.departmentRepo.GetActiveByID(ctx, nil, rd.CompanyID, *input.DepartmentID)
		if derr != nil {
			return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(derr))
		}
		if dept == nil {
			return nil, pkgerrors.ErrNotFound
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &types.Profile{
		CompanyID:    rd.CompanyID,
		DepartmentID: input.DepartmentID,
		Email:        email,
		Password:     string(hashed),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsActive:     true,
	}
	if _, err := s.profileRepo.Create(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return p, nil
}

func (s *memberService) List(ctx context.Context) ([]*types.Profile, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	results, err := s.profileRepo.ListByCompany(ctx, nil, rd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return results, nil
}

func (s *memberService) Update(ctx context.Context, profileID uuid.UUID, input *UpdateMemberInput) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}

	target, err := s.profileRepo.GetByID(ctx, nil, profileID)
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if target == nil || target.CompanyID != rd.CompanyID {
		return pkgerrors.ErrNotFound
	}
	// Only an owner may touch an owner's profile.
	if target.Role == types.RoleOwner && rd.Role != types.RoleOwner {
		return pkgerrors.ErrForbidden
	}

	fields := map[string]any{}
	if input.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !validRole(*input.Role) {
			return fmt.Errorf("Invalid role %q.", *input.Role)
		}
		if !rbac.HasPermission(rd.Role, *input.Role) {
			return pkgerrors.ErrForbidden
		}
		fields["role"] = *input.Role
	}
	if input.DepartmentID != nil {
		dept, derr := s.departmentRepo.GetActiveByID(ctx, nil, rd.CompanyID, *input.DepartmentID)
		if derr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(derr))
		}
		if dept == nil {
			return pkgerrors.ErrNotFound
		}
		fields["department_id"] = *input.DepartmentID
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.profileRepo.UpdateFields(ctx, nil, rd.CompanyID, profileID, fields); err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return nil
}
