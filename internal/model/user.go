package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleOperator    = "operator"
	RoleDoctor      = "doctor"
	RolePartner     = "partner"
	RoleDistributor = "distributor"
)

// ValidRole reports whether role is one of the known role names
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleOperator, RoleDoctor, RolePartner, RoleDistributor:
		return true
	}
	return false
}

// User represents the central user entity for logic and database structure
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role     string    `gorm:"type:varchar(50);not null;index" json:"role"`

	// UnitID is set for admin/operator users; super_admin has none.
	UnitID *uuid.UUID `gorm:"type:uuid;index" json:"unit_id"`
	Unit   *Unit      `gorm:"foreignKey:UnitID" json:"-"`

	// StakeholderID/StakeholderType link doctor, partner, and distributor
	// users to the stakeholder record their visibility is scoped to.
	StakeholderID   *uuid.UUID `gorm:"type:uuid;index" json:"stakeholder_id"`
	StakeholderType string     `gorm:"type:varchar(30)" json:"stakeholder_type,omitempty"`

	IsActive bool              `gorm:"default:true" json:"is_active"`
	Grants   []PermissionGrant `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"grants"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
