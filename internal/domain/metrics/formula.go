package metrics

import (
	"time"

	"github.com/google/uuid"
)

// MetricFormula is one version of a calculated metric's expression. Versions
// are append-only: superseded rows are kept for audit and record which row
// replaced them. At most one row per metric is current at any time.
type MetricFormula struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MetricID     uuid.UUID  `gorm:"type:uuid;not null;index;column:metric_id" json:"metric_id"`
	Expression   string     `gorm:"not null;column:expression" json:"expression"`
	Version      int        `gorm:"not null;column:version" json:"version"`
	IsCurrent    bool       `gorm:"not null;default:false;column:is_current" json:"is_current"`
	SupersededBy *uuid.UUID `gorm:"type:uuid;column:superseded_by" json:"superseded_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MetricFormula) TableName() string { return "metric_formulas" }

// MetricFormulaDependency is a directed edge: MetricID's current formula
// references DependsOnMetricID. The edge set for a metric is always replaced
// wholesale when its formula changes, never patched.
type MetricFormulaDependency struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MetricID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_formula_dep_edge;column:metric_id" json:"metric_id"`
	DependsOnMetricID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_formula_dep_edge;index;column:depends_on_metric_id" json:"depends_on_metric_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MetricFormulaDependency) TableName() string { return "metric_formula_dependencies" }
