package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"github.com/pulseboard/pulseboard-backend/internal/rbac"
	"gorm.io/gorm"
)

type CreateMetricInput struct {
	DepartmentID      uuid.UUID `json:"department_id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Description       string    `json:"description"`
	DataType          string    `json:"data_type"`
	Unit              string    `json:"unit"`
	Direction         string    `json:"direction"`
	InputMode         string    `json:"input_mode"`
	PrecisionScale    int       `json:"precision_scale"`
	FormulaExpression string    `json:"formula_expression"`
}

type UpdateMetricInput struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	DataType          *string `json:"data_type"`
	Unit              *string `json:"unit"`
	Direction         *string `json:"direction"`
	InputMode         *string `json:"input_mode"`
	PrecisionScale    *int    `json:"precision_scale"`
	FormulaExpression *string `json:"formula_expression"`
}

// MetricService orchestrates the metric catalog: CRUD on metric rows plus the
// formula resolution, edge replacement, and version upsert that a calculated
// metric's save implies. Every mutation runs in one transaction.
type MetricService interface {
	Create(ctx context.Context, input *CreateMetricInput) (*types.Metric, error)
	Update(ctx context.Context, metricID uuid.UUID, input *UpdateMetricInput) (*types.Metric, error)
	Get(ctx context.Context, metricID uuid.UUID) (*types.Metric, *types.MetricFormula, error)
	List(ctx context.Context) ([]*types.Metric, error)
	// ToggleActive and Delete are fire-and-forget: validation and storage
	// failures are logged, not surfaced.
	ToggleActive(ctx context.Context, metricID uuid.UUID) error
	Delete(ctx context.Context, metricID uuid.UUID) error
}

type metricService struct {
	db          *gorm.DB
	metricRepo  metricrepos.MetricRepo
	depRepo     metricrepos.MetricDependencyRepo
	formulaRepo metricrepos.MetricFormulaRepo
	targetRepo  metricrepos.TargetRepo
	formulaSvc  FormulaService
	log         *logger.Logger
}

func NewMetricService(
	db *gorm.DB,
	metricRepo metricrepos.MetricRepo,
	depRepo metricrepos.MetricDependencyRepo,
	formulaRepo metricrepos.MetricFormulaRepo,
	targetRepo metricrepos.TargetRepo,
	formulaSvc FormulaService,
	baseLog *logger.Logger,
) MetricService {
	svcLog := baseLog.With("service", "MetricService")
	return &metricService{
		db:          db,
		metricRepo:  metricRepo,
		depRepo:     depRepo,
		formulaRepo: formulaRepo,
		targetRepo:  targetRepo,
		formulaSvc:  formulaSvc,
		log:         svcLog,
	}
}

// CodeFromName derives a formula-safe code from a display name: lowercase,
// runs of non-alphanumerics collapsed to single underscores.
func CodeFromName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func requireManager(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	if err := rbac.Require(rd.Role, types.RoleManager); err != nil {
		return nil, err
	}
	return rd, nil
}

func (ms *metricService) Create(ctx context.Context, input *CreateMetricInput) (*types.Metric, error) {
	rd, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("Metric name is required.")
	}
	code := strings.ToLower(strings.TrimSpace(input.Code))
	if code == "" {
		code = CodeFromName(input.Name)
	}
	if code == "" {
		return nil, fmt.Errorf("Metric code is required.")
	}
	inputMode := input.InputMode
	if inputMode == "" {
		inputMode = types.InputModeManual
	}
	if inputMode != types.InputModeManual && inputMode != types.InputModeCalculated {
		return nil, fmt.Errorf("Invalid input mode %q.", inputMode)
	}

	var created *types.Metric
	err = ms.db.Transaction(func(tx *gorm.DB) error {
		var resolved *ResolvedFormula
		if inputMode == types.InputModeCalculated {
			// Self-reference is impossible on create; the metric has no id yet.
			var rerr error
			resolved, rerr = ms.formulaSvc.ResolveDependencies(ctx, tx, rd.CompanyID, input.FormulaExpression, uuid.Nil)
			if rerr != nil {
				return rerr
			}
		}

		m := &types.Metric{
			CompanyID:      rd.CompanyID,
			DepartmentID:   input.DepartmentID,
			Name:           strings.TrimSpace(input.Name),
			Code:           code,
			Description:    input.Description,
			DataType:       defaultString(input.DataType, types.DataTypeNumber),
			Unit:           input.Unit,
			Direction:      defaultString(input.Direction, types.DirectionHigherIsBetter),
			InputMode:      inputMode,
			PrecisionScale: input.PrecisionScale,
			IsActive:       true,
		}
		if _, cerr := ms.metricRepo.Create(ctx, tx, m); cerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
		}

		if resolved != nil {
			if rerr := ms.formulaSvc.ReplaceDependencies(ctx, tx, rd.CompanyID, m.ID, resolved.DependencyIDs); rerr != nil {
				return rerr
			}
			if uerr := ms.formulaSvc.UpsertCurrentFormula(ctx, tx, m.ID, resolved.NormalizedExpression); uerr != nil {
				return uerr
			}
		}

		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	ms.log.Info("metric created",
		"metric_id", created.ID,
		"code", created.Code,
		"input_mode", created.InputMode,
	)
	return created, nil
}

func (ms *metricService) Update(ctx context.Context, metricID uuid.UUID, input *UpdateMetricInput) (*types.Metric, error) {
	rd, err := requireManager(ctx)
	if err != nil {
		return nil, err
	}

	var updated *types.Metric
	err = ms.db.Transaction(func(tx *gorm.DB) error {
		metric, gerr := ms.metricRepo.GetByID(ctx, tx, rd.CompanyID, metricID)
		if gerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(gerr))
		}
		if metric == nil {
			return pkgerrors.ErrNotFound
		}

		fields := map[string]any{}
		if input.Name != nil {
			fields["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		if input.DataType != nil {
			fields["data_type"] = *input.DataType
		}
		if input.Unit != nil {
			fields["unit"] = *input.Unit
		}
		if input.Direction != nil {
			fields["direction"] = *input.Direction
		}
		if input.PrecisionScale != nil {
			fields["precision_scale"] = *input.PrecisionScale
		}

		targetMode := metric.InputMode
		if input.InputMode != nil {
			if *input.InputMode != types.InputModeManual && *input.InputMode != types.InputModeCalculated {
				return fmt.Errorf("Invalid input mode %q.", *input.InputMode)
			}
			targetMode = *input.InputMode
			fields["input_mode"] = targetMode
		}

		switch targetMode {
		case types.InputModeCalculated:
			expression := ""
			if input.FormulaExpression != nil {
				expression = *input.FormulaExpression
			} else {
				current, ferr := ms.formulaRepo.GetCurrent(ctx, tx, metricID)
				if ferr != nil {
					return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(ferr))
				}
				if current != nil {
					expression = current.Expression
				}
			}
			if strings.TrimSpace(expression) == "" {
				return fmt.Errorf("Calculated metrics require a formula expression.")
			}
			// The metric exists now, so pass its id to catch self-reference.
			resolved, rerr := ms.formulaSvc.ResolveDependencies(ctx, tx, rd.CompanyID, expression, metricID)
			if rerr != nil {
				return rerr
			}
			if len(fields) > 0 {
				if uerr := ms.metricRepo.UpdateFields(ctx, tx, rd.CompanyID, metricID, fields); uerr != nil {
					return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(uerr))
				}
			}
			if rerr := ms.formulaSvc.ReplaceDependencies(ctx, tx, rd.CompanyID, metricID, resolved.DependencyIDs); rerr != nil {
				return rerr
			}
			if uerr := ms.formulaSvc.UpsertCurrentFormula(ctx, tx, metricID, resolved.NormalizedExpression); uerr != nil {
				return uerr
			}
		case types.InputModeManual:
			if len(fields) > 0 {
				if uerr := ms.metricRepo.UpdateFields(ctx, tx, rd.CompanyID, metricID, fields); uerr != nil {
					return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(uerr))
				}
			}
			// A manual save disconnects the metric from the graph but keeps
			// version history. Runs unconditionally so a stale current row
			// left by an interrupted save is also closed.
			if cerr := ms.formulaRepo.CloseCurrent(ctx, tx, metricID); cerr != nil {
				return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
			}
			if rerr := ms.formulaSvc.ReplaceDependencies(ctx, tx, rd.CompanyID, metricID, nil); rerr != nil {
				return rerr
			}
		}

		refreshed, gerr := ms.metricRepo.GetByID(ctx, tx, rd.CompanyID, metricID)
		if gerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(gerr))
		}
		updated = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (ms *metricService) Get(ctx context.Context, metricID uuid.UUID) (*types.Metric, *types.MetricFormula, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, nil, pkgerrors.ErrUnauthorized
	}
	metric, err := ms.metricRepo.GetByID(ctx, nil, rd.CompanyID, metricID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if metric == nil {
		return nil, nil, pkgerrors.ErrNotFound
	}
	var current *types.MetricFormula
	if metric.InputMode == types.InputModeCalculated {
		current, err = ms.formulaRepo.GetCurrent(ctx, nil, metricID)
		if err != nil {
			return nil, nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
		}
	}
	return metric, current, nil
}

func (ms *metricService) List(ctx context.Context) ([]*types.Metric, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	results, err := ms.metricRepo.ListByCompany(ctx, nil, rd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return results, nil
}

// ToggleActive flips the metric's active flag. Failures are swallowed and
// logged; the caller treats the toggle as fire-and-forget.
func (ms *metricService) ToggleActive(ctx context.Context, metricID uuid.UUID) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}

	metric, err := ms.metricRepo.GetByID(ctx, nil, rd.CompanyID, metricID)
	if err != nil || metric == nil {
		ms.log.Warn("toggle skipped: metric lookup failed",
			"metric_id", metricID,
			"error", err,
		)
		return nil
	}
	if err := ms.metricRepo.SetActive(ctx, nil, rd.CompanyID, metricID, !metric.IsActive); err != nil {
		ms.log.Warn("toggle failed",
			"metric_id", metricID,
			"error", pkgerrors.FormatDatabaseError(err),
		)
	}
	return nil
}

// Delete soft-deletes the metric unless another active metric still depends
// on it, in which case the delete is silently refused. Targets referencing
// the metric are deactivated as a side effect.
func (ms *metricService) Delete(ctx context.Context, metricID uuid.UUID) error {
	rd, err := requireManager(ctx)
	if err != nil {
		return err
	}

	err = ms.db.Transaction(func(tx *gorm.DB) error {
		metric, gerr := ms.metricRepo.GetByID(ctx, tx, rd.CompanyID, metricID)
		if gerr != nil {
			return gerr
		}
		if metric == nil {
			return pkgerrors.ErrNotFound
		}

		edges, derr := ms.depRepo.ListDependents(ctx, tx, metricID)
		if derr != nil {
			return derr
		}
		dependentIDs := make([]uuid.UUID, 0, len(edges))
		for _, e := range edges {
			if e.MetricID != metricID {
				dependentIDs = append(dependentIDs, e.MetricID)
			}
		}
		activeDependents, aerr := ms.metricRepo.ListActiveByIDs(ctx, tx, rd.CompanyID, dependentIDs, metricID)
		if aerr != nil {
			return aerr
		}
		if len(activeDependents) > 0 {
			ms.log.Warn("delete refused: active dependents remain",
				"metric_id", metricID,
				"dependent_count", len(activeDependents),
			)
			return nil
		}

		if serr := ms.metricRepo.SoftDelete(ctx, tx, rd.CompanyID, metricID); serr != nil {
			return serr
		}
		if derr := ms.depRepo.DeleteByMetric(ctx, tx, metricID); derr != nil {
			return derr
		}
		return ms.targetRepo.DeactivateByMetric(ctx, tx, rd.CompanyID, metricID)
	})
	if err != nil {
		ms.log.Warn("delete failed",
			"metric_id", metricID,
			"error", pkgerrors.FormatDatabaseError(err),
		)
	}
	return nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
