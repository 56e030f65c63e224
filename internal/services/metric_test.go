package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	"github.com/pulseboard/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/pointers"
	"gorm.io/gorm"
)

type metricServiceEnv struct {
	svc         MetricService
	formulaRepo metricrepos.MetricFormulaRepo
	depRepo     metricrepos.MetricDependencyRepo
	metricRepo  metricrepos.MetricRepo
	targetRepo  metricrepos.TargetRepo
}

func newMetricService(tb testing.TB, tx *gorm.DB) *metricServiceEnv {
	tb.Helper()
	log := testutil.Logger(tb)
	metricRepo := metricrepos.NewMetricRepo(tx, log)
	formulaRepo := metricrepos.NewMetricFormulaRepo(tx, log)
	depRepo := metricrepos.NewMetricDependencyRepo(tx, log)
	targetRepo := metricrepos.NewTargetRepo(tx, log)
	formulaSvc := NewFormulaService(tx, metricRepo, formulaRepo, depRepo, log)
	svc := NewMetricService(tx, metricRepo, depRepo, formulaRepo, targetRepo, formulaSvc, log)
	return &metricServiceEnv{
		svc:         svc,
		formulaRepo: formulaRepo,
		depRepo:     depRepo,
		metricRepo:  metricRepo,
		targetRepo:  targetRepo,
	}
}

func managerCtx(companyID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		ProfileID: uuid.New(),
		CompanyID: companyID,
		Role:      types.RoleManager,
	})
}

func TestCreateCalculatedMetricPersistsFormulaAndEdges(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	calls := testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")
	deals := testutil.SeedMetric(t, tx, company.ID, dept.ID, "deals")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	created, err := env.svc.Create(ctx, &CreateMetricInput{
		DepartmentID:      dept.ID,
		Name:              "Close Rate",
		DataType:          types.DataTypePercent,
		InputMode:         types.InputModeCalculated,
		FormulaExpression: "deals / calls * 100",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Code != "close_rate" {
		t.Fatalf("derived code = %q", created.Code)
	}

	current, err := env.formulaRepo.GetCurrent(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current == nil || current.Version != 1 || current.Expression != "deals / calls * 100" {
		t.Fatalf("current formula = %+v", current)
	}

	edges, err := env.depRepo.ListByMetricIDs(ctx, tx, []uuid.UUID{created.ID})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	seen := map[uuid.UUID]bool{}
	for _, e := range edges {
		seen[e.DependsOnMetricID] = true
	}
	if !seen[calls.ID] || !seen[deals.ID] {
		t.Fatalf("edge targets: %+v", seen)
	}
}

func TestCreateCalculatedMetricRejectsBadFormula(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	_, err := env.svc.Create(ctx, &CreateMetricInput{
		DepartmentID:      dept.ID,
		Name:              "Broken",
		InputMode:         types.InputModeCalculated,
		FormulaExpression: "ghost + 1",
	})
	if err == nil || err.Error() != `Unknown metric code "ghost" in formula.` {
		t.Fatalf("got %v", err)
	}

	// The failed save must not leave a metric row behind.
	all, lerr := env.metricRepo.ListByCompany(ctx, tx, company.ID)
	if lerr != nil {
		t.Fatalf("list: %v", lerr)
	}
	for _, m := range all {
		if m.Name == "Broken" {
			t.Fatal("metric row leaked from rolled-back create")
		}
	}
}

func TestCreateRequiresManagerRole(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")

	env := newMetricService(t, tx)
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		ProfileID: uuid.New(),
		CompanyID: company.ID,
		Role:      types.RoleMember,
	})

	_, err := env.svc.Create(ctx, &CreateMetricInput{DepartmentID: dept.ID, Name: "Calls"})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestUpdateSwitchToManualDisconnectsGraph(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	created, err := env.svc.Create(ctx, &CreateMetricInput{
		DepartmentID:      dept.ID,
		Name:              "Weighted Calls",
		InputMode:         types.InputModeCalculated,
		FormulaExpression: "calls * 2",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.svc.Update(ctx, created.ID, &UpdateMetricInput{
		InputMode: pointers.String(types.InputModeManual),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	current, err := env.formulaRepo.GetCurrent(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current != nil {
		t.Fatalf("current formula should be closed, got %+v", current)
	}
	// History survives the transition.
	versions, err := env.formulaRepo.ListByMetric(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	edges, err := env.depRepo.ListByMetricIDs(ctx, tx, []uuid.UUID{created.ID})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("edges should be cleared, got %+v", edges)
	}
}

func TestUpdateManualMetricClosesStaleCurrentFormula(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	calls := testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	// A current row left behind on a manual metric (e.g. by an interrupted
	// mode switch) must be closed by the next manual save.
	if _, err := env.formulaRepo.Insert(ctx, tx, &types.MetricFormula{
		MetricID:   calls.ID,
		Expression: "orphaned + 1",
		Version:    1,
		IsCurrent:  true,
	}); err != nil {
		t.Fatalf("seed stale formula: %v", err)
	}

	if _, err := env.svc.Update(ctx, calls.ID, &UpdateMetricInput{
		Name: pointers.String("Calls Made"),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	current, err := env.formulaRepo.GetCurrent(ctx, tx, calls.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current != nil {
		t.Fatalf("stale current row should be closed, got %+v", current)
	}
	versions, err := env.formulaRepo.ListByMetric(ctx, tx, calls.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("history should survive, got %d rows", len(versions))
	}
}

func TestUpdateFormulaCatchesSelfReference(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	created, err := env.svc.Create(ctx, &CreateMetricInput{
		DepartmentID:      dept.ID,
		Name:              "Rate",
		Code:              "rate",
		InputMode:         types.InputModeCalculated,
		FormulaExpression: "calls * 2",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.svc.Update(ctx, created.ID, &UpdateMetricInput{
		FormulaExpression: pointers.String("rate + 1"),
	})
	if err == nil || err.Error() != "A metric cannot reference itself in its own formula." {
		t.Fatalf("got %v", err)
	}
}

func TestDeleteRefusedWhileActiveDependentsExist(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	calls := testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	if _, err := env.svc.Create(ctx, &CreateMetricInput{
		DepartmentID:      dept.ID,
		Name:              "Weighted",
		InputMode:         types.InputModeCalculated,
		FormulaExpression: "calls * 2",
	}); err != nil {
		t.Fatalf("create dependent: %v", err)
	}

	// Fire-and-forget: no error, but the metric must survive.
	if err := env.svc.Delete(ctx, calls.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	still, err := env.metricRepo.GetByID(ctx, tx, company.ID, calls.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if still == nil {
		t.Fatal("metric with active dependents was deleted")
	}
}

func TestDeleteDeactivatesTargets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	calls := testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	target := &types.Target{
		CompanyID:    company.ID,
		DepartmentID: dept.ID,
		MetricID:     calls.ID,
		PeriodType:   types.TargetPeriodDaily,
		Value:        50,
		IsActive:     true,
	}
	if _, err := env.targetRepo.Create(ctx, tx, target); err != nil {
		t.Fatalf("seed target: %v", err)
	}

	if err := env.svc.Delete(ctx, calls.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	gone, err := env.metricRepo.GetByID(ctx, tx, company.ID, calls.ID)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	if gone != nil {
		t.Fatalf("metric should be soft-deleted, got %+v", gone)
	}
	refreshed, err := env.targetRepo.GetByID(ctx, tx, company.ID, target.ID)
	if err != nil {
		t.Fatalf("get target: %v", err)
	}
	if refreshed == nil || refreshed.IsActive {
		t.Fatalf("target should be deactivated, got %+v", refreshed)
	}
}

func TestToggleActiveFlipsFlag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	calls := testutil.SeedMetric(t, tx, company.ID, dept.ID, "calls")

	env := newMetricService(t, tx)
	ctx := managerCtx(company.ID)

	if err := env.svc.ToggleActive(ctx, calls.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	refreshed, err := env.metricRepo.GetByID(ctx, tx, company.ID, calls.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if refreshed.IsActive {
		t.Fatal("metric should be inactive after toggle")
	}
}
