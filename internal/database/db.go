package database

import (
	"fmt"

	"defaultreset/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open connects to the database and migrates the tables this service uses
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A second connection to ":memory:" would see an empty database.
		db.DB().SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the option and catalog tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Option{},
		&models.Product{},
		&models.ProductAttribute{},
	).Error
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
