package metrics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DailyLogStatusDraft     = "draft"
	DailyLogStatusSubmitted = "submitted"
)

// DailyLogEntry holds one member's manually entered values for one day,
// keyed by metric id. Calculated metrics never appear here.
type DailyLogEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	DepartmentID uuid.UUID      `gorm:"type:uuid;not null;index;column:department_id" json:"department_id"`
	ProfileID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_daily_log_profile_date;column:profile_id" json:"profile_id"`
	LogDate      time.Time      `gorm:"type:date;not null;uniqueIndex:idx_daily_log_profile_date;column:log_date" json:"log_date"`
	Values       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}';column:values" json:"values"`
	Status       string         `gorm:"not null;default:'draft';column:status" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DailyLogEntry) TableName() string { return "daily_log_entries" }
