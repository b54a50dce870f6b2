package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amaumene/gosubfetch/internal/config"
	"github.com/amaumene/gosubfetch/internal/database"
	"github.com/amaumene/gosubfetch/internal/metrics"
	"github.com/amaumene/gosubfetch/internal/services"
	"github.com/amaumene/gosubfetch/pkg/logger"
)

var registerMetrics sync.Once

// app holds the long-lived components shared by the commands.
type app struct {
	config   *config.Config
	logger   logger.Logger
	db       database.Database
	services *services.Container
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{config: cfg}
	a.initializeLogger()
	if err := a.initializeDatabase(); err != nil {
		return nil, err
	}
	a.initializeServices()
	return a, nil
}

func (a *app) initializeLogger() {
	a.logger = logger.NewWithOptions(logger.Options{
		Level: a.config.LogLevel,
		File:  a.config.LogFile,
	})

	switch a.config.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		a.logger.Warnf("[App] unknown log level '%s', defaulting to info", a.config.LogLevel)
	}
}

func (a *app) initializeDatabase() error {
	db, err := database.NewBolt(a.config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.logger.Infof("[App] catalog store opened at %s", a.config.DatabasePath)
	return nil
}

func (a *app) initializeServices() {
	a.services = services.NewContainer(a.config, a.db, a.logger)
	registerMetrics.Do(func() { metrics.Register(prometheus.DefaultRegisterer) })
	a.logger.Infof("[App] services initialized successfully")
}

// startMaintenance runs the cleanup service until ctx is done.
func (a *app) startMaintenance(ctx context.Context) {
	a.services.Cleanup.Start(ctx)
}

func (a *app) close() {
	a.services.Cleanup.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.Errorf("[App] failed to close database: %v", err)
	}
}
