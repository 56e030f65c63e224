package db

import (
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Tenancy + membership
		&types.Company{},
		&types.Department{},
		&types.Profile{},

		// Metric catalog + formula engine
		&types.Metric{},
		&types.MetricFormula{},
		&types.MetricFormulaDependency{},

		// Goals + daily entry
		&types.Target{},
		&types.DailyLogEntry{},
	)
}
