package services

import (
	"context"
	"errors"
	"testing"

	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	"github.com/pulseboard/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/pointers"
	"gorm.io/gorm"
)

func newMemberService(tb testing.TB, tx *gorm.DB) (MemberService, companyrepos.ProfileRepo) {
	tb.Helper()
	log := testutil.Logger(tb)
	profileRepo := companyrepos.NewProfileRepo(tx, log)
	departmentRepo := companyrepos.NewDepartmentRepo(tx, log)
	return NewMemberService(tx, profileRepo, departmentRepo, log), profileRepo
}

func profileCtx(p *types.Profile) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		ProfileID: p.ID,
		CompanyID: p.CompanyID,
		Role:      p.Role,
	})
}

func TestMeReturnsActingProfile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	profile := testutil.SeedProfile(t, tx, company.ID, types.RoleMember)

	svc, _ := newMemberService(t, tx)

	me, err := svc.Me(profileCtx(profile))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != profile.ID || me.Email != profile.Email {
		t.Fatalf("got %+v, want profile %s", me, profile.ID)
	}
}

func TestMeRejectsMissingIdentity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, _ := newMemberService(t, tx)
	if _, err := svc.Me(context.Background()); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestManagerCannotEditOwnerProfile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	owner := testutil.SeedProfile(t, tx, company.ID, types.RoleOwner)
	manager := testutil.SeedProfile(t, tx, company.ID, types.RoleManager)

	svc, profileRepo := newMemberService(t, tx)
	ctx := profileCtx(manager)

	err := svc.Update(ctx, owner.ID, &UpdateMemberInput{
		Role: pointers.String(types.RoleMember),
	})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("demote owner: got %v, want ErrForbidden", err)
	}

	err = svc.Update(ctx, owner.ID, &UpdateMemberInput{
		IsActive: pointers.Ptr(false),
	})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("deactivate owner: got %v, want ErrForbidden", err)
	}

	refreshed, err := profileRepo.GetByID(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("get owner: %v", err)
	}
	if refreshed.Role != types.RoleOwner || !refreshed.IsActive {
		t.Fatalf("owner profile was modified: %+v", refreshed)
	}
}

func TestManagerCannotGrantOwnerRole(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	manager := testutil.SeedProfile(t, tx, company.ID, types.RoleManager)
	member := testutil.SeedProfile(t, tx, company.ID, types.RoleMember)

	svc, _ := newMemberService(t, tx)

	err := svc.Update(profileCtx(manager), member.ID, &UpdateMemberInput{
		Role: pointers.String(types.RoleOwner),
	})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestOwnerCanDemoteOwner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	owner := testutil.SeedProfile(t, tx, company.ID, types.RoleOwner)
	other := testutil.SeedProfile(t, tx, company.ID, types.RoleOwner)

	svc, profileRepo := newMemberService(t, tx)

	if err := svc.Update(profileCtx(owner), other.ID, &UpdateMemberInput{
		Role: pointers.String(types.RoleManager),
	}); err != nil {
		t.Fatalf("owner demoting owner: %v", err)
	}
	refreshed, err := profileRepo.GetByID(context.Background(), tx, other.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if refreshed.Role != types.RoleManager {
		t.Fatalf("role = %q, want manager", refreshed.Role)
	}
}

func TestUpdateRejectsCrossCompanyProfile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	companyA := testutil.SeedCompany(t, tx)
	companyB := testutil.SeedCompany(t, tx)
	manager := testutil.SeedProfile(t, tx, companyA.ID, types.RoleManager)
	outsider := testutil.SeedProfile(t, tx, companyB.ID, types.RoleMember)

	svc, _ := newMemberService(t, tx)

	err := svc.Update(profileCtx(manager), outsider.ID, &UpdateMemberInput{
		FullName: pointers.String("Renamed"),
	})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
