package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	"github.com/pulseboard/pulseboard-backend/internal/dailylog"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmitDailyLogInput struct {
	LogDate string            `json:"log_date"`
	Values  map[string]string `json:"values"`
	Status  string            `json:"status"`
}

// DailyLogService records a member's manually entered metric values for one
// day. Raw string inputs are coerced per the metric's data type before
// storage; calculated metrics are rejected.
type DailyLogService interface {
	Submit(ctx context.Context, input *SubmitDailyLogInput) (*types.DailyLogEntry, error)
	ListMine(ctx context.Context, limit int) ([]*types.DailyLogEntry, error)
}

type dailyLogService struct {
	db           *gorm.DB
	dailyLogRepo metricrepos.DailyLogRepo
	metricRepo   metricrepos.MetricRepo
	profileRepo  companyrepos.ProfileRepo
	log          *logger.Logger
}

func NewDailyLogService(
	db *gorm.DB,
	dailyLogRepo metricrepos.DailyLogRepo,
	metricRepo metricrepos.MetricRepo,
	profileRepo companyrepos.ProfileRepo,
	baseLog *logger.Logger,
) DailyLogService {
	svcLog := baseLog.With("service", "DailyLogService")
	return &dailyLogService{
		db:           db,
		dailyLogRepo: dailyLogRepo,
		metricRepo:   metricRepo,
		profileRepo:  profileRepo,
		log:          svcLog,
	}
}

// coerceValue converts a raw input string into the canonical stored value for
// the metric's data type: numbers and currency/percent as float64, booleans
// as bool, durations as whole seconds.
func coerceValue(metric *types.Metric, raw string) (any, error) {
	switch metric.DataType {
	case types.DataTypeBoolean:
		parsed := dailylog.ParseBooleanInput(raw)
		if parsed == nil {
			return nil, nil
		}
		return *parsed, nil
	case types.DataTypeDuration:
		seconds, err := dailylog.ParseDurationToSeconds(raw)
		if err != nil {
			return nil, err
		}
		if seconds == nil {
			return nil, nil
		}
		return *seconds, nil
	default:
		value, err := dailylog.ParseNumericInput(raw)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return *value, nil
	}
}

func (s *dailyLogService) Submit(ctx context.Context, input *SubmitDailyLogInput) (*types.DailyLogEntry, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	logDate, err := time.Parse("2006-01-02", input.LogDate)
	if err != nil {
		return nil, fmt.Errorf("Log date must be in YYYY-MM-DD format.")
	}
	status := defaultString(input.Status, types.DailyLogStatusDraft)
	if status != types.DailyLogStatusDraft && status != types.DailyLogStatusSubmitted {
		return nil, fmt.Errorf("Invalid log status %q.", status)
	}

	profile, err := s.profileRepo.GetByID(ctx, nil, rd.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	if profile == nil || profile.DepartmentID == nil {
		return nil, fmt.Errorf("You must belong to a department to log daily values.")
	}

	stored := make(map[string]any, len(input.Values))
	for rawID, rawValue := range input.Values {
		metricID, perr := uuid.Parse(rawID)
		if perr != nil {
			return nil, fmt.Errorf("Invalid metric id %q.", rawID)
		}
		metric, merr := s.metricRepo.GetByID(ctx, nil, rd.CompanyID, metricID)
		if merr != nil {
			return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(merr))
		}
		if metric == nil || !metric.IsActive {
			return nil, fmt.Errorf("Metric %q is not available for logging.", rawID)
		}
		if metric.InputMode == types.InputModeCalculated {
			return nil, fmt.Errorf("Calculated metrics cannot be logged manually.")
		}
		value, verr := coerceValue(metric, rawValue)
		if verr != nil {
			return nil, verr
		}
		if value == nil {
			continue
		}
		stored[metric.ID.String()] = value
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	var result *types.DailyLogEntry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, gerr := s.dailyLogRepo.GetByProfileAndDate(ctx, tx, rd.ProfileID, logDate)
		if gerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(gerr))
		}
		if existing != nil {
			if uerr := s.dailyLogRepo.UpdateFields(ctx, tx, existing.ID, map[string]any{
				"values": datatypes.JSON(payload),
				"status": status,
			}); uerr != nil {
				return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(uerr))
			}
			existing.Values = datatypes.JSON(payload)
			existing.Status = status
			result = existing
			return nil
		}

		entry := &types.DailyLogEntry{
			CompanyID:    rd.CompanyID,
			DepartmentID: *profile.DepartmentID,
			ProfileID:    rd.ProfileID,
			LogDate:      logDate,
			Values:       datatypes.JSON(payload),
			Status:       status,
		}
		if _, cerr := s.dailyLogRepo.Create(ctx, tx, entry); cerr != nil {
			return fmt.Errorf("%s", pkgerrors.FormatDatabaseError(cerr))
		}
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *dailyLogService) ListMine(ctx context.Context, limit int) ([]*types.DailyLogEntry, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	if limit <= 0 || limit > 90 {
		limit = 30
	}
	results, err := s.dailyLogRepo.ListByProfile(ctx, nil, rd.ProfileID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s", pkgerrors.FormatDatabaseError(err))
	}
	return results, nil
}
