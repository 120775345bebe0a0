// Package bootstrap loads configuration and opens the database for the CLI
// commands.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/infrastructure/config"
	"github.com/rolegate/rolegate/internal/infrastructure/database"
	"github.com/rolegate/rolegate/internal/infrastructure/migration"
	httpRouter "github.com/rolegate/rolegate/internal/interfaces/http"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// Options holds the flags every command shares.
type Options struct {
	Env        string
	ConfigPath string
}

func (o *Options) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.Env, "env", "e", "", "Environment (development, test, production); overrides server.mode")
	cmd.PersistentFlags().StringVarP(&o.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Runtime is an initialized process: config loaded, logger installed and
// database open.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Log    logger.Interface
}

func Init(opts *Options) (*Runtime, error) {
	env := opts.Env
	if envVar := os.Getenv("ENV"); envVar != "" && env == "" {
		env = envVar
	}

	cfg, err := config.Load(MapEnvToGinMode(env), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Runtime{Config: cfg, DB: db, Log: logger.NewLogger()}, nil
}

// Migrate applies the embedded goose scripts, or gorm AutoMigrate when auto
// is set.
func (r *Runtime) Migrate(auto bool) error {
	return migration.NewManager(r.Config.Database.Driver, auto).Migrate(r.DB)
}

// Container wires the application without starting background work.
func (r *Runtime) Container() (*httpRouter.Container, error) {
	return httpRouter.NewContainer(r.DB, r.Config, r.Log)
}

func (r *Runtime) Close() {
	if err := database.Close(r.DB); err != nil {
		r.Log.Warnw("failed to close database", "error", err)
	}
}

// MapEnvToGinMode turns an environment name into a gin mode. An empty name
// keeps the configured mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "":
		return ""
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
