package testutil

import (
	"clutchzone-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Registration{},
		&models.MatchResult{},
		&models.Notification{},
		&models.Payment{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SeedUser inserts a user with sane defaults, returning it with its id set.
func SeedUser(db *gorm.DB, username, email string, role models.UserRole) (*models.User, error) {
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Level:        1,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}
