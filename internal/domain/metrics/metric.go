package metrics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InputModeManual     = "manual"
	InputModeCalculated = "calculated"
)

const (
	DataTypeNumber   = "number"
	DataTypeCurrency = "currency"
	DataTypePercent  = "percent"
	DataTypeBoolean  = "boolean"
	DataTypeDuration = "duration"
)

const (
	DirectionHigherIsBetter = "higher_is_better"
	DirectionLowerIsBetter  = "lower_is_better"
)

// Metric is a KPI owned by one department. Its code is the lowercase
// identifier used inside formulas; the code is only expected to be unique
// among active metrics within a company, so inactive metrics may share a code
// transiently.
type Metric struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	DepartmentID   uuid.UUID `gorm:"type:uuid;not null;index;column:department_id" json:"department_id"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	Code           string    `gorm:"not null;index;column:code" json:"code"`
	Description    string    `gorm:"column:description" json:"description"`
	DataType       string    `gorm:"not null;default:'number';column:data_type" json:"data_type"`
	Unit           string    `gorm:"not null;column:unit" json:"unit"`
	Direction      string    `gorm:"not null;default:'higher_is_better';column:direction" json:"direction"`
	InputMode      string    `gorm:"not null;default:'manual';column:input_mode" json:"input_mode"`
	PrecisionScale int       `gorm:"not null;default:0;column:precision_scale" json:"precision_scale"`
	IsActive       bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Metric) TableName() string { return "metrics" }
