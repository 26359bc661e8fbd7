package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/slate/internal/models"
)

// DatabaseFile is the name of the SQLite file inside the data directory
const DatabaseFile = "slate.db"

var DB *gorm.DB

// Initialize opens the database inside dataDir, runs migrations and stores
// the connection in DB
func Initialize(dataDir string) error {
	db, err := Open(filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the SQLite file at path and migrates the schema
func Open(path string) (*gorm.DB, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations creates/updates the database schema
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Entry{},
		&models.Preference{},
	)
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		DB = nil
		return sqlDB.Close()
	}
	return nil
}
