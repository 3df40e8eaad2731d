package database

import (
	"context"
	"errors"
	"fmt"

	"defaultreset/internal/models"

	"github.com/jinzhu/gorm"
)

// ErrOptionNotFound is returned when an option has never been written
var ErrOptionNotFound = errors.New("option not found")

// gorm drops a blank Key from the struct condition and matches any row
var errEmptyKey = errors.New("empty option key")

// OptionStore reads and writes rows of the options table
type OptionStore struct {
	db *gorm.DB
}

// NewOptionStore creates an option store on top of db
func NewOptionStore(db *gorm.DB) *OptionStore {
	return &OptionStore{db: db}
}

// Get returns the value stored under key or ErrOptionNotFound
func (s *OptionStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("get option: %w", errEmptyKey)
	}

	var opt models.Option
	err := s.db.Where(&models.Option{Key: key}).First(&opt).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", ErrOptionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get option %s: %w", key, err)
	}
	return opt.Value, nil
}

// Set creates or overwrites the value stored under key
func (s *OptionStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("set option: %w", errEmptyKey)
	}

	var opt models.Option
	err := s.db.Where(models.Option{Key: key}).
		Assign(map[string]interface{}{"value": value}).
		FirstOrCreate(&opt).Error
	if err != nil {
		return fmt.Errorf("set option %s: %w", key, err)
	}
	return nil
}
