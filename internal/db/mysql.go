package db

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormDB *gorm.DB

// InitMySQL initializes the MySQL connection
func InitMySQL(dsn string) error {
	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	gormDB = database
	log.Println("✓ MySQL connected successfully")
	return nil
}

// GetDB returns the shared gorm DB handle
func GetDB() *gorm.DB {
	return gormDB
}

// SetDB replaces the shared handle. Tests use this to point the package at
// an embedded store.
func SetDB(database *gorm.DB) {
	gormDB = database
}

// Close closes the underlying database connection
func Close() error {
	if gormDB == nil {
		return nil
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
