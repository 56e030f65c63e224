package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	types "github.com/pulseboard/pulseboard-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedCompany(tb testing.TB, tx *gorm.DB) *types.Company {
	tb.Helper()
	c := &types.Company{Name: "Acme " + uuid.NewString()[:8], Timezone: "UTC"}
	if err := tx.Create(c).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedDepartment(tb testing.TB, tx *gorm.DB, companyID uuid.UUID, name string) *types.Department {
	tb.Helper()
	d := &types.Department{CompanyID: companyID, Name: name, IsActive: true}
	if err := tx.Create(d).Error; err != nil {
		tb.Fatalf("seed department: %v", err)
	}
	return d
}

func SeedProfile(tb testing.TB, tx *gorm.DB, companyID uuid.UUID, role string) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		CompanyID: companyID,
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:  "x",
		FullName:  "Test User",
		Role:      role,
		IsActive:  true,
	}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedMetric(tb testing.TB, tx *gorm.DB, companyID, departmentID uuid.UUID, code string, opts ...func(*types.Metric)) *types.Metric {
	tb.Helper()
	m := &types.Metric{
		CompanyID:    companyID,
		DepartmentID: departmentID,
		Name:         code,
		Code:         code,
		DataType:     types.DataTypeNumber,
		Unit:         "count",
		Direction:    types.DirectionHigherIsBetter,
		InputMode:    types.InputModeManual,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := tx.Create(m).Error; err != nil {
		tb.Fatalf("seed metric: %v", err)
	}
	return m
}

func Calculated(m *types.Metric) { m.InputMode = types.InputModeCalculated }

func Inactive(m *types.Metric) { m.IsActive = false }
