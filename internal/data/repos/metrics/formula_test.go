package metrics_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	"github.com/pulseboard/pulseboard-backend/internal/data/repos/testutil"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
)

func TestFormulaRepoCurrentLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	metric := testutil.SeedMetric(t, tx, company.ID, dept.ID, "score", testutil.Calculated)

	repo := metricrepos.NewMetricFormulaRepo(tx, testutil.Logger(t))

	current, err := repo.GetCurrent(ctx, tx, metric.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current != nil {
		t.Fatalf("expected no current formula, got %+v", current)
	}

	v1, err := repo.Insert(ctx, tx, &types.MetricFormula{
		MetricID:   metric.ID,
		Expression: "a + b",
		Version:    1,
		IsCurrent:  true,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	current, err = repo.GetCurrent(ctx, tx, metric.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current == nil || current.ID != v1.ID {
		t.Fatalf("current = %+v, want id %s", current, v1.ID)
	}

	if err := repo.CloseCurrent(ctx, tx, metric.ID); err != nil {
		t.Fatalf("close current: %v", err)
	}
	current, err = repo.GetCurrent(ctx, tx, metric.ID)
	if err != nil {
		t.Fatalf("get current after close: %v", err)
	}
	if current != nil {
		t.Fatalf("current should be closed, got %+v", current)
	}

	// The row itself survives the close.
	versions, err := repo.ListByMetric(ctx, tx, metric.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(versions) != 1 || versions[0].IsCurrent {
		t.Fatalf("versions after close: %+v", versions)
	}
}

func TestDependencyRepoReplaceAndReverseLookup(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, tx)
	dept := testutil.SeedDepartment(t, tx, company.ID, "Sales")
	total := testutil.SeedMetric(t, tx, company.ID, dept.ID, "total", testutil.Calculated)
	a := testutil.SeedMetric(t, tx, company.ID, dept.ID, "a")
	b := testutil.SeedMetric(t, tx, company.ID, dept.ID, "b")

	repo := metricrepos.NewMetricDependencyRepo(tx, testutil.Logger(t))

	if err := repo.Create(ctx, tx, []*types.MetricFormulaDependency{
		{MetricID: total.ID, DependsOnMetricID: a.ID},
		{MetricID: total.ID, DependsOnMetricID: b.ID},
	}); err != nil {
		t.Fatalf("create edges: %v", err)
	}

	dependents, err := repo.ListDependents(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("list dependents: %v", err)
	}
	if len(dependents) != 1 || dependents[0].MetricID != total.ID {
		t.Fatalf("dependents of a: %+v", dependents)
	}

	if err := repo.DeleteByMetric(ctx, tx, total.ID); err != nil {
		t.Fatalf("delete by metric: %v", err)
	}
	edges, err := repo.ListByMetricIDs(ctx, tx, []uuid.UUID{total.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("edges should be gone, got %+v", edges)
	}
}
