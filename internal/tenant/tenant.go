// Package tenant provides the per-channel database context. Every channel
// (tenant) lives in its own postgres schema; the registry opens one scoped
// connection pool per channel and hands out an explicit Context object that
// callers pass into services. The registry is owned by main and passed by
// reference, never through a package-level global.
package tenant

import (
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/datphandbplus/financial-be-sub001/internal/config"
	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
)

var channelIDPattern = regexp.MustCompile(`^[a-z0-9_]{1,40}$`)

// Context binds one channel to its schema-scoped gorm session.
type Context struct {
	Channel string
	DB      *gorm.DB
}

// Registry lazily builds and caches tenant contexts for the process lifetime.
type Registry struct {
	cfg config.DatabaseConfig
	log *zap.Logger

	mu       sync.RWMutex
	contexts map[string]*Context
}

func NewRegistry(cfg config.DatabaseConfig, log *zap.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		log:      log,
		contexts: make(map[string]*Context),
	}
}

// Get returns the context for a channel, creating schema, connection pool and
// table bindings on first use.
func (r *Registry) Get(channel string) (*Context, error) {
	if !channelIDPattern.MatchString(channel) {
		return nil, fmt.Errorf("invalid channel id %q", channel)
	}

	r.mu.RLock()
	tc, ok := r.contexts[channel]
	r.mu.RUnlock()
	if ok {
		return tc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tc, ok := r.contexts[channel]; ok {
		return tc, nil
	}

	tc, err := r.open(channel)
	if err != nil {
		return nil, err
	}
	r.contexts[channel] = tc
	return tc, nil
}

// Register injects a prebuilt context, replacing any cached one. Tests use it
// to bind a channel to an isolated schema.
func (r *Registry) Register(tc *Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[tc.Channel] = tc
}

func (r *Registry) open(channel string) (*Context, error) {
	schema := "ch_" + channel
	baseDSN := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		r.cfg.Host, r.cfg.Port, r.cfg.User, r.cfg.Password, r.cfg.DBName, r.cfg.SSLMode,
	)

	// Schema creation needs a connection without search_path.
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect for schema setup: %w", err)
	}
	if err := setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
		return nil, fmt.Errorf("create schema %s: %w", schema, err)
	}
	if sqlDB, err := setupDB.DB(); err == nil {
		sqlDB.Close()
	}

	// search_path in the DSN so every pooled connection is schema-scoped.
	dsn := fmt.Sprintf("%s search_path=%s", baseDSN, schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect channel %s: %w", channel, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(r.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(r.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(r.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(r.cfg.ConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate channel %s: %w", channel, err)
	}

	r.log.Info("Channel context initialized", zap.String("channel", channel), zap.String("schema", schema))
	return &Context{Channel: channel, DB: db}, nil
}

// Migrate creates or updates the channel's table bindings.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Client{},
		&entity.Vendor{},
		&entity.VendorCategory{},
		&entity.Project{},
		&entity.ProjectSheet{},
		&entity.ProjectLineItem{},
		&entity.ProjectCostItem{},
		&entity.ProjectCostModification{},
		&entity.ProjectPurchaseOrder{},
		&entity.PurchaseOrderApprover{},
		&entity.ProjectApprover{},
		&entity.ProjectVO{},
		&entity.VOApprover{},
		&entity.ProjectBillPlan{},
		&entity.ProjectPaymentPlan{},
		&entity.ProjectPaymentApprover{},
	)
}
