package main

import (
	"fmt"

	"defaultreset/internal/config"
	"defaultreset/internal/database"
	"defaultreset/internal/logging"
	"defaultreset/internal/monitoring"
	"defaultreset/internal/reset"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// app holds the components every command shares
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	options   *database.OptionStore
	catalog   *database.Catalog
	monitor   *monitoring.Monitor
	resetter  *reset.Resetter
	evaluator *reset.Evaluator
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		options: database.NewOptionStore(db),
		catalog: database.NewCatalog(db),
		monitor: monitoring.NewMonitor(),
	}
	a.resetter = reset.NewResetter(a.catalog, a.monitor, logger)
	a.evaluator = reset.NewEvaluator(a.options, a.resetter, a.monitor, logger)
	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", zap.Error(err))
	}
	a.logger.Sync()
}
