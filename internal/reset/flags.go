package reset

import (
	"context"
	"errors"
	"fmt"

	"defaultreset/internal/database"
	"defaultreset/internal/models"
)

// FlagStore reads and writes persisted options.
// Get returns database.ErrOptionNotFound for a key that was never written.
type FlagStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Status is a snapshot of every option the trigger looks at
type Status struct {
	AutoReset    Flag   `json:"auto_reset_quantities"`
	ShouldRun    Flag   `json:"drq_should_run"`
	Completed    Flag   `json:"drq_completed"`
	StoreStatus  string `json:"store_status,omitempty"`
	StorePresent bool   `json:"store_status_present"`
}

// AutoReset returns the master switch; an unset or unrecognised value is No
func AutoReset(ctx context.Context, flags FlagStore) (Flag, error) {
	v, err := flags.Get(ctx, models.OptionAutoResetQuantities)
	if errors.Is(err, database.ErrOptionNotFound) {
		return No, nil
	}
	if err != nil {
		return No, err
	}
	if f, err := ParseFlag(v); err == nil {
		return f, nil
	}
	return No, nil
}

// SetAutoReset saves the master switch when it differs from the stored value.
// It reports whether a write happened.
func SetAutoReset(ctx context.Context, flags FlagStore, f Flag) (bool, error) {
	if _, err := ParseFlag(string(f)); err != nil {
		return false, err
	}
	cur, err := flags.Get(ctx, models.OptionAutoResetQuantities)
	if err != nil && !errors.Is(err, database.ErrOptionNotFound) {
		return false, err
	}
	if err == nil && cur == string(f) {
		return false, nil
	}
	if err := flags.Set(ctx, models.OptionAutoResetQuantities, string(f)); err != nil {
		return false, err
	}
	return true, nil
}

// ReadStatus reads all options without initialising missing ones
func ReadStatus(ctx context.Context, flags FlagStore) (Status, error) {
	var st Status
	var err error

	if st.AutoReset, err = AutoReset(ctx, flags); err != nil {
		return st, err
	}
	if st.ShouldRun, _, err = readFlag(ctx, flags, models.OptionShouldRun, No); err != nil {
		return st, err
	}
	if st.Completed, _, err = readFlag(ctx, flags, models.OptionCompleted, Yes); err != nil {
		return st, err
	}
	sig, err := readSignal(ctx, flags)
	if err != nil {
		return st, err
	}
	st.StoreStatus = string(sig.Status)
	st.StorePresent = sig.Present
	return st, nil
}

// readFlag returns No for a missing key and invalid for a value other than
// yes/no. ok is true only when a valid value is stored.
func readFlag(ctx context.Context, flags FlagStore, key string, invalid Flag) (f Flag, ok bool, err error) {
	v, err := flags.Get(ctx, key)
	if errors.Is(err, database.ErrOptionNotFound) {
		return No, false, nil
	}
	if err != nil {
		return No, false, err
	}
	if f, err := ParseFlag(v); err == nil {
		return f, true, nil
	}
	return invalid, false, nil
}

// loadFlag is readFlag that stores the value it returns when the key is
// missing or holds garbage
func loadFlag(ctx context.Context, flags FlagStore, key string, invalid Flag) (Flag, error) {
	f, ok, err := readFlag(ctx, flags, key, invalid)
	if err != nil {
		return No, err
	}
	if !ok {
		if err := flags.Set(ctx, key, string(f)); err != nil {
			return No, fmt.Errorf("initialise %s: %w", key, err)
		}
	}
	return f, nil
}

func readSignal(ctx context.Context, flags FlagStore) (Signal, error) {
	v, err := flags.Get(ctx, models.OptionStoreStatus)
	if errors.Is(err, database.ErrOptionNotFound) {
		return Signal{}, nil
	}
	if err != nil {
		return Signal{}, err
	}
	return Signal{Status: StoreStatus(v), Present: true}, nil
}
