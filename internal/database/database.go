package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/reportdesk/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Initialize opens the database and migrates the schema. When dsn is
// non-empty it is treated as a postgres DSN; otherwise dbPath names a
// local sqlite file whose directory is created on demand.
func Initialize(dbPath, dsn string) error {
	var initErr error
	once.Do(func() {
		var dialector gorm.Dialector
		if dsn != "" {
			dialector = postgres.Open(dsn)
		} else {
			dir := filepath.Dir(dbPath)
			if err := os.MkdirAll(dir, 0755); err != nil {
				initErr = fmt.Errorf("failed to create database directory: %v", err)
				return
			}
			dialector = sqlite.Open(dbPath)
		}

		var err error
		// TranslateError turns driver-specific unique violations into
		// gorm.ErrDuplicatedKey on both backends.
		db, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to database: %v", err)
			return
		}

		if err := db.AutoMigrate(&models.Link{}); err != nil {
			initErr = fmt.Errorf("failed to migrate database: %v", err)
			return
		}

		log.Printf("Database initialized")
	})

	return initErr
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		panic("Database not initialized. Call Initialize() first")
	}
	return db
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %v", err)
	}

	return sqlDB.Close()
}
