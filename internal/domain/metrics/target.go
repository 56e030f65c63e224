package metrics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetPeriodDaily   = "daily"
	TargetPeriodWeekly  = "weekly"
	TargetPeriodMonthly = "monthly"
)

type Target struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;index;column:department_id" json:"department_id"`
	MetricID     uuid.UUID `gorm:"type:uuid;not null;index;column:metric_id" json:"metric_id"`
	PeriodType   string    `gorm:"not null;default:'daily';column:period_type" json:"period_type"`
	Value        float64   `gorm:"not null;column:value" json:"value"`
	IsActive     bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Target) TableName() string { return "targets" }
