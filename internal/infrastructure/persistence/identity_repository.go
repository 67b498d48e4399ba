package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// OrgMemberModel is the stored organization membership record
type OrgMemberModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user"`
	Name      string    `gorm:"size:255"`
	Role      string    `gorm:"size:50;not null"`
	// no default tag: gorm skips zero-valued fields that carry one on
	// insert, which would silently store a deactivated member as active
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name
func (OrgMemberModel) TableName() string {
	return "org_members"
}

// GormIdentityRepository implements IdentityProvider using GORM
type GormIdentityRepository struct {
	db *gorm.DB
}

// NewGormIdentityRepository creates a new GormIdentityRepository
func NewGormIdentityRepository(db *gorm.DB) *GormIdentityRepository {
	return &GormIdentityRepository{db: db}
}

// ResolveUser returns the active member record for a user within an
// organization
func (r *GormIdentityRepository) ResolveUser(ctx context.Context, orgID, userID uuid.UUID) (*planning.OrgUser, error) {
	var member OrgMemberModel
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ? AND is_active = ?", orgID, userID, true).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_A_MEMBER", "User is not a member of this organization")
		}
		return nil, err
	}
	return &planning.OrgUser{
		ID:   member.UserID,
		Name: member.Name,
		Role: planning.ParseRole(member.Role),
	}, nil
}

// FindUserIDsByRoles returns the ids of all active members holding any of
// the given roles
func (r *GormIdentityRepository) FindUserIDsByRoles(ctx context.Context, orgID uuid.UUID, roles []planning.Role) ([]uuid.UUID, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	roleStrings := make([]string, 0, len(roles))
	for _, role := range roles {
		roleStrings = append(roleStrings, string(role))
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrgMemberModel{}).
		Where("org_id = ? AND role IN ? AND is_active = ?", orgID, roleStrings, true).
		Pluck("user_id", &ids).Error
	return ids, err
}

var _ planning.IdentityProvider = (*GormIdentityRepository)(nil)
