package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values form a total order: owner >= manager >= member.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Profile is a company member. Authentication lives on the profile directly;
// there is no separate identity table.
type Profile struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index;column:company_id" json:"company_id"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index;column:department_id" json:"department_id,omitempty"`
	Email        string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password     string     `gorm:"not null;column:password" json:"-"`
	FullName     string     `gorm:"not null;column:full_name" json:"full_name"`
	Role         string     `gorm:"not null;default:'member';column:role" json:"role"`
	IsActive     bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Profile) TableName() string { return "profiles" }
