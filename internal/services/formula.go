package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/formula"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// ErrCircularDependency is surfaced whenever saving a formula would make the
// company's dependency graph cyclic.
var ErrCircularDependency = errors.New("Circular dependency detected between calculated metrics.")

// ResolvedFormula is the outcome of resolving a formula expression against a
// company's metric catalog.
type ResolvedFormula struct {
	NormalizedExpression string
	DependencyIDs        []uuid.UUID
}

// FormulaService owns formula dependency resolution and the append-only
// formula version history. Its mutating methods expect to run inside a caller
// transaction so that the edge swap and the version upsert commit atomically
// with the metric row change.
type FormulaService interface {
	ResolveDependencies(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, expression string, currentMetricID uuid.UUID) (*ResolvedFormula, error)
	ReplaceDependencies(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, dependencyIDs []uuid.UUID) error
	UpsertCurrentFormula(ctx context.Context, tx *gorm.DB, metricID uuid.UUID, expression string) error
	ListVersions(ctx context.Context, companyID, metricID uuid.UUID) ([]*types.MetricFormula, error)
}

type formulaService struct {
	db          *gorm.DB
	metricRepo  metricrepos.MetricRepo
	formulaRepo metricrepos.MetricFormulaRepo
	depRepo     metricrepos.MetricDependencyRepo
	log         *logger.Logger
}

func NewFormulaService(
	db *gorm.DB,
	metricRepo metricrepos.MetricRepo,
	formulaRepo metricrepos.MetricFormulaRepo,
	depRepo metricrepos.MetricDependencyRepo,
	baseLog *logger.Logger,
) FormulaService {
	svcLog := baseLog.With("service", "FormulaService")
	return &formulaService{
		db:          db,
		metricRepo:  metricRepo,
		formulaRepo: formulaRepo,
		depRepo:     depRepo,
		log:         svcLog,
	}
}

// codeIndexes maps a company's metric codes to identifiers. Built fresh for
// every resolution so a save always sees the current catalog.
type codeIndexes struct {
	// activeCodeToMetricID resolves a code to the single active metric that
	// carries it. Codes claimed by more than one active metric go to
	// duplicateActiveCodes instead.
	activeCodeToMetricID map[string]uuid.UUID
	duplicateActiveCodes map[string]struct{}
	// allCodes holds every code regardless of active state, so resolution can
	// tell "inactive" apart from "unknown".
	allCodes map[string]struct{}
}

func (fs *formulaService) buildCodeIndexes(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*codeIndexes, error) {
	all, err := fs.metricRepo.ListByCompany(ctx, tx, companyID)
	if err != nil {
		return nil, err
	}

	idx := &codeIndexes{
		activeCodeToMetricID: make(map[string]uuid.UUID),
		duplicateActiveCodes: make(map[string]struct{}),
		allCodes:             make(map[string]struct{}),
	}
	for _, m := range all {
		code := strings.ToLower(strings.TrimSpace(m.Code))
		if code == "" {
			continue
		}
		idx.allCodes[code] = struct{}{}
		if !m.IsActive {
			continue
		}
		if _, taken := idx.activeCodeToMetricID[code]; taken {
			idx.duplicateActiveCodes[code] = struct{}{}
			continue
		}
		idx.activeCodeToMetricID[code] = m.ID
	}
	return idx, nil
}

// ResolveDependencies parses the expression and maps each referenced code to
// a concrete metric ID. Resolution is first-error-wins: it stops at the first
// invalid code rather than aggregating. Pass currentMetricID as uuid.Nil on
// create, when the metric does not exist yet and self-reference is impossible.
func (fs *formulaService) ResolveDependencies(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, expression string, currentMetricID uuid.UUID) (*ResolvedFormula, error) {
	validated, err := formula.Validate(expression, formula.ValidateOptions{})
	if err != nil {
		return nil, err
	}

	idx, err := fs.buildCodeIndexes(ctx, tx, companyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}

	dependencyIDs := make([]uuid.UUID, 0, len(validated.MetricCodes))
	for _, code := range validated.MetricCodes {
		if _, dup := idx.duplicateActiveCodes[code]; dup {
			return nil, fmt.Errorf("Metric code %q is duplicated across active departments. Use a unique code.", code)
		}
		id, active := idx.activeCodeToMetricID[code]
		if !active {
			if _, exists := idx.allCodes[code]; exists {
				return nil, fmt.Errorf("Metric code %q is inactive and cannot be used in formulas.", code)
			}
			return nil, fmt.Errorf("Unknown metric code %q in formula.", code)
		}
		if currentMetricID != uuid.Nil && id == currentMetricID {
			return nil, errors.New("A metric cannot reference itself in its own formula.")
		}
		dependencyIDs = append(dependencyIDs, id)
	}

	return &ResolvedFormula{
		NormalizedExpression: validated.NormalizedExpression,
		DependencyIDs:        dependencyIDs,
	}, nil
}

// ReplaceDependencies swaps the metric's outgoing edge set wholesale: the
// proposed edges are first checked against the rest of the company graph for
// cycles, then the old edges are deleted and the new ones inserted. Runs
// inside the caller's transaction so a cycle rejection rolls everything back.
func (fs *formulaService) ReplaceDependencies(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, dependencyIDs []uuid.UUID) error {
	if err := fs.checkAcyclic(ctx, tx, companyID, metricID, dependencyIDs); err != nil {
		return err
	}

	if err := fs.depRepo.DeleteByMetric(ctx, tx, metricID); err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if len(dependencyIDs) == 0 {
		return nil
	}

	edges := make([]*types.MetricFormulaDependency, 0, len(dependencyIDs))
	for _, depID := range dependencyIDs {
		edges = append(edges, &types.MetricFormulaDependency{
			MetricID:          metricID,
			DependsOnMetricID: depID,
		})
	}
	if err := fs.depRepo.Create(ctx, tx, edges); err != nil {
		if pkgerrors.IsCircularDependency(err) {
			return ErrCircularDependency
		}
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return nil
}

// checkAcyclic runs Kahn's algorithm over the company's dependency edges with
// the proposed edges substituted for the metric's existing ones. If the
// topological order cannot cover every node, a cycle exists.
func (fs *formulaService) checkAcyclic(ctx context.Context, tx *gorm.DB, companyID, metricID uuid.UUID, proposed []uuid.UUID) error {
	all, err := fs.metricRepo.ListByCompany(ctx, tx, companyID)
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	metricIDs := make([]uuid.UUID, 0, len(all))
	for _, m := range all {
		metricIDs = append(metricIDs, m.ID)
	}

	existing, err := fs.depRepo.ListByMetricIDs(ctx, tx, metricIDs)
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}

	adjacency := make(map[uuid.UUID][]uuid.UUID)
	inDegree := make(map[uuid.UUID]int)
	for _, id := range metricIDs {
		inDegree[id] = 0
	}
	// Edges whose endpoints fall outside the live metric set (soft-deleted
	// rows) are ignored, otherwise they would inflate in-degrees of nodes the
	// traversal can never reach.
	addEdge := func(from, to uuid.UUID) {
		if _, known := inDegree[from]; !known {
			return
		}
		if _, known := inDegree[to]; !known {
			return
		}
		adjacency[from] = append(adjacency[from], to)
		inDegree[to]++
	}
	for _, e := range existing {
		if e.MetricID == metricID {
			continue
		}
		addEdge(e.MetricID, e.DependsOnMetricID)
	}
	for _, depID := range proposed {
		addEdge(metricID, depID)
	}

	queue := make([]uuid.UUID, 0, len(inDegree))
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adjacency[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited < len(inDegree) {
		return ErrCircularDependency
	}
	return nil
}

// UpsertCurrentFormula appends a version row for the expression:
//   - no history yet: insert version 1 as current;
//   - identical trimmed text to the current version: no-op;
//   - text differs: insert next version non-current, close the old current
//     with superseded_by pointing at the new row, then activate the new row.
//
// The three-step handover keeps history append-only and leaves exactly one
// current row once the surrounding transaction commits.
func (fs *formulaService) UpsertCurrentFormula(ctx context.Context, tx *gorm.DB, metricID uuid.UUID, expression string) error {
	trimmed := strings.TrimSpace(expression)

	current, err := fs.formulaRepo.GetCurrent(ctx, tx, metricID)
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}

	if current == nil {
		_, err := fs.formulaRepo.Insert(ctx, tx, &types.MetricFormula{
			MetricID:   metricID,
			Expression: trimmed,
			Version:    1,
			IsCurrent:  true,
		})
		if err != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
		}
		return nil
	}

	if strings.TrimSpace(current.Expression) == trimmed {
		return nil
	}

	next, err := fs.formulaRepo.Insert(ctx, tx, &types.MetricFormula{
		MetricID:   metricID,
		Expression: trimmed,
		Version:    current.Version + 1,
		IsCurrent:  false,
	})
	if err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if err := fs.formulaRepo.UpdateFields(ctx, tx, current.ID, map[string]any{
		"is_current":    false,
		"superseded_by": next.ID,
	}); err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if err := fs.formulaRepo.UpdateFields(ctx, tx, next.ID, map[string]any{
		"is_current": true,
	}); err != nil {
		return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}

	fs.log.Info("formula version advanced",
		"metric_id", metricID,
		"version", next.Version,
	)
	return nil
}

func (fs *formulaService) ListVersions(ctx context.Context, companyID, metricID uuid.UUID) ([]*types.MetricFormula, error) {
	metric, err := fs.metricRepo.GetByID(ctx, nil, companyID, metricID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if metric == nil {
		return nil, pkgerrors.ErrNotFound
	}
	versions, err := fs.formulaRepo.ListByMetric(ctx, nil, metricID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return versions, nil
}
