package domain

import (
	"github.com/pulseboard/pulseboard-backend/internal/domain/company"
	"github.com/pulseboard/pulseboard-backend/internal/domain/metrics"
)

const (
	RoleOwner   = company.RoleOwner
	RoleManager = company.RoleManager
	RoleMember  = company.RoleMember

	InputModeManual     = metrics.InputModeManual
	InputModeCalculated = metrics.InputModeCalculated

	DataTypeNumber   = metrics.DataTypeNumber
	DataTypeCurrency = metrics.DataTypeCurrency
	DataTypePercent  = metrics.DataTypePercent
	DataTypeBoolean  = metrics.DataTypeBoolean
	DataTypeDuration = metrics.DataTypeDuration

	DirectionHigherIsBetter = metrics.DirectionHigherIsBetter
	DirectionLowerIsBetter  = metrics.DirectionLowerIsBetter

	TargetPeriodDaily   = metrics.TargetPeriodDaily
	TargetPeriodWeekly  = metrics.TargetPeriodWeekly
	TargetPeriodMonthly = metrics.TargetPeriodMonthly

	DailyLogStatusDraft     = metrics.DailyLogStatusDraft
	DailyLogStatusSubmitted = metrics.DailyLogStatusSubmitted
)

type Company = company.Company
type Department = company.Department
type Profile = company.Profile

type Metric = metrics.Metric
type MetricFormula = metrics.MetricFormula
type MetricFormulaDependency = metrics.MetricFormulaDependency
type Target = metrics.Target
type DailyLogEntry = metrics.DailyLogEntry
