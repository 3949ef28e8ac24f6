package database

import (
	"clutchzone-api/internal/logger"
	"clutchzone-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database at path and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required).
func InitDB(path string) error {
	var err error

	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Warn),
	})
	if err != nil {
		return err
	}

	// Auto-migrate the schema (it will create tables if they don't exist)
	err = DB.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Registration{},
		&models.MatchResult{},
		&models.Notification{},
		&models.Payment{},
	)
	if err != nil {
		return err
	}

	logger.Info("database connected and migrated")
	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
