// Package migration applies the order store schema.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/shared/logger"
)

// Manager runs one migration strategy.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager uses gorm AutoMigrate when autoMigrate is set and the embedded
// goose scripts otherwise.
func NewManager(driver string, autoMigrate bool) *Manager {
	var strategy Strategy
	if autoMigrate {
		strategy = NewGormAutoMigrateStrategy()
	} else {
		strategy = NewGooseStrategy(driver)
	}
	return NewManagerWithStrategy(strategy)
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}
	return nil
}

func (m *Manager) Strategy() Strategy {
	return m.strategy
}
