package reset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"defaultreset/internal/models"
	"defaultreset/internal/monitoring"

	"go.uber.org/zap"
)

// TestQuantity is the stock written by the debug set operation
const TestQuantity = 100

// Trigger names what started a run
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
	TriggerDebug  Trigger = "debug"
)

// Catalog is the product storage a Resetter works against
type Catalog interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	ListResettable(ctx context.Context) ([]models.Product, error)
	AttributeValue(ctx context.Context, productID uint, name string) (string, bool, error)
	SetStock(ctx context.Context, productID uint, quantity int) error
}

// Report summarises one run
type Report struct {
	Trigger Trigger   `json:"trigger"`
	Custom  int       `json:"custom"`
	Zeroed  int       `json:"zeroed"`
	Fixed   int       `json:"fixed"`
	At      time.Time `json:"at"`
}

// Updated returns the number of products whose stock was written
func (r Report) Updated() int {
	return r.Custom + r.Zeroed + r.Fixed
}

func (r Report) counts() map[string]int {
	return map[string]int{
		"custom": r.Custom,
		"zeroed": r.Zeroed,
		"fixed":  r.Fixed,
	}
}

// Classify turns a default_reset_quantity attribute into the stock to write.
// A missing, non-numeric or non-positive value means "no custom quantity".
func Classify(value string, found bool) (quantity int, custom bool) {
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Resetter writes reset quantities to the catalog
type Resetter struct {
	catalog Catalog
	monitor *monitoring.Monitor
	logger  *zap.Logger
	now     func() time.Time
}

// NewResetter creates a resetter over catalog
func NewResetter(catalog Catalog, monitor *monitoring.Monitor, logger *zap.Logger) *Resetter {
	return &Resetter{
		catalog: catalog,
		monitor: monitor,
		logger:  logger,
		now:     time.Now,
	}
}

// ResetQuantities sets every product without the do-not-reset marker to
// its default reset quantity, or to zero when it has none
func (r *Resetter) ResetQuantities(ctx context.Context, trigger Trigger) (Report, error) {
	report := Report{Trigger: trigger}

	products, err := r.catalog.ListResettable(ctx)
	if err != nil {
		r.monitor.RecordFailure("reset")
		return report, fmt.Errorf("reset quantities: %w", err)
	}

	for _, p := range products {
		value, found, err := r.catalog.AttributeValue(ctx, p.ID, models.AttrDefaultResetQuantity)
		if err != nil {
			r.monitor.RecordFailure("reset")
			return report, fmt.Errorf("reset quantities: %w", err)
		}

		quantity, custom := Classify(value, found)
		if found && !custom {
			r.logger.Warn("ignoring unusable default reset quantity",
				zap.Uint("product_id", p.ID),
				zap.String("value", value))
		}

		if err := r.catalog.SetStock(ctx, p.ID, quantity); err != nil {
			r.monitor.RecordFailure("reset")
			return report, fmt.Errorf("reset quantities: %w", err)
		}
		if custom {
			report.Custom++
		} else {
			report.Zeroed++
		}
	}

	report.At = r.now()
	r.monitor.RecordReset(string(trigger), report.counts(), report.At)
	r.logger.Info("reset quantities",
		zap.String("trigger", string(trigger)),
		zap.Int("custom", report.Custom),
		zap.Int("zeroed", report.Zeroed))
	return report, nil
}

// SetQuantities sets every product to TestQuantity. Debug and testing only.
func (r *Resetter) SetQuantities(ctx context.Context) (Report, error) {
	report := Report{Trigger: TriggerDebug}

	products, err := r.catalog.ListAll(ctx)
	if err != nil {
		r.monitor.RecordFailure("set")
		return report, fmt.Errorf("set quantities: %w", err)
	}

	for _, p := range products {
		if err := r.catalog.SetStock(ctx, p.ID, TestQuantity); err != nil {
			r.monitor.RecordFailure("set")
			return report, fmt.Errorf("set quantities: %w", err)
		}
		report.Fixed++
	}

	report.At = r.now()
	r.monitor.RecordReset(string(TriggerDebug), report.counts(), report.At)
	r.logger.Warn("set all quantities to test value",
		zap.Int("quantity", TestQuantity),
		zap.Int("products", report.Fixed))
	return report, nil
}
