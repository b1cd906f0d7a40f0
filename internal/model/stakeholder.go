package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StakeholderType enum constants
const (
	StakeholderDoctor          = "doctor"
	StakeholderBusinessPartner = "business_partner"
	StakeholderEmployee        = "employee"
	StakeholderDistributor     = "distributor"
	StakeholderPatient         = "patient"
)

// ValidStakeholderType reports whether t is one of the five stakeholder types
func ValidStakeholderType(t string) bool {
	switch t {
	case StakeholderDoctor, StakeholderBusinessPartner, StakeholderEmployee,
		StakeholderDistributor, StakeholderPatient:
		return true
	}
	return false
}

// Stakeholder represents an external party a transaction may reference
type Stakeholder struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type      string         `gorm:"type:varchar(30);not null;index" json:"type"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
