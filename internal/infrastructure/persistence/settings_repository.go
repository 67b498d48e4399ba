package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
)

// OrgSettingsModel is the stored per-organization workflow configuration
type OrgSettingsModel struct {
	OrgID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	RequireApproval   bool             `gorm:"not null;default:false"`
	ApprovalThreshold *decimal.Decimal `gorm:"type:decimal(15,2)"`
	// ApprovalRoles is a comma-separated role list; empty means defaults
	ApprovalRoles string    `gorm:"size:255"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the database table name
func (OrgSettingsModel) TableName() string {
	return "org_settings"
}

// ToDomain converts the stored row into workflow settings. Stored role
// strings are normalized; unknown roles are dropped rather than silently
// granted approval rights.
func (m *OrgSettingsModel) ToDomain() *planning.PlanningSettings {
	settings := &planning.PlanningSettings{
		RequireApproval:   m.RequireApproval,
		ApprovalThreshold: m.ApprovalThreshold,
	}
	if m.ApprovalRoles != "" {
		for _, raw := range strings.Split(m.ApprovalRoles, ",") {
			if role := planning.ParseRole(raw); role != planning.RoleUnknown {
				settings.ApprovalRoles = append(settings.ApprovalRoles, role)
			}
		}
	}
	return settings
}

// GormSettingsRepository implements SettingsProvider using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetPlanningSettings loads the organization's workflow settings. An
// organization without a settings row gets the defaults: approval disabled.
func (r *GormSettingsRepository) GetPlanningSettings(ctx context.Context, orgID uuid.UUID) (*planning.PlanningSettings, error) {
	var model OrgSettingsModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &planning.PlanningSettings{}, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ planning.SettingsProvider = (*GormSettingsRepository)(nil)
