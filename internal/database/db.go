package database

import (
	"log"

	"pharmaledger/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Unit{},
		&model.Stakeholder{},
		&model.User{},
		&model.PermissionGrant{},
		&model.RefreshToken{},
		&model.Transaction{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// SeedSuperAdmin creates the bootstrap super_admin account when the users
// table is empty, so a fresh deployment can log in and provision the rest.
func SeedSuperAdmin(db *gorm.DB, email, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username: "superadmin",
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
		IsActive: true,
		Grants:   model.DefaultGrants(model.RoleSuperAdmin),
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded super_admin account %s", email)
	return nil
}
