package models

import "time"

// Option represents a persisted key/value setting shared with the storefront
type Option struct {
	Key       string `gorm:"primary_key;size:191"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName pins the table so the storefront and this service agree on it
func (Option) TableName() string {
	return "options"
}

// Option keys
const (
	OptionAutoResetQuantities = "auto_reset_quantities"
	OptionShouldRun           = "drq_should_run"
	OptionCompleted           = "drq_completed"
	OptionStoreStatus         = "store_status"
)
