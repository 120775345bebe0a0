package migration

import (
	"embed"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/infrastructure/persistence/models"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// goose keeps its dialect and base filesystem in package globals.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	Migrate(db *gorm.DB) error
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
type GooseStrategy struct {
	driver string
	logger logger.Interface
}

func NewGooseStrategy(driver string) *GooseStrategy {
	return &GooseStrategy{
		driver: driver,
		logger: logger.NewLogger().With("component", "migration.goose"),
	}
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) dir() string {
	if s.driver == "mysql" {
		return "scripts/mysql"
	}
	return "scripts/sqlite"
}

func (s *GooseStrategy) dialect() string {
	if s.driver == "mysql" {
		return "mysql"
	}
	return "sqlite3"
}

func (s *GooseStrategy) with(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scriptsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(s.dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(s.dir())
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.with(func(dir string) error {
		from, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		if err := goose.Up(sqlDB, dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		to, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}
		s.logger.Infow("migration completed", "from_version", from, "to_version", to)
		return nil
	})
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.with(func(dir string) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, dir); err != nil {
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed", "steps", steps)
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	var version int64
	err = s.with(func(string) error {
		v, err := goose.GetDBVersion(sqlDB)
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// Status prints the migration table through goose's standard logger.
func (s *GooseStrategy) Status(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return s.with(func(dir string) error {
		goose.SetLogger(log.New(os.Stdout, "", 0))
		return goose.Status(sqlDB, dir)
	})
}

// CreateScript writes a new empty SQL migration into dir on disk.
func CreateScript(dir, name string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(nil)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	return nil
}

// GormAutoMigrateStrategy derives the schema from the gorm models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	all := models.All()
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models", len(all))
	return nil
}
