package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/rolegate/rolegate/internal/shared/config"
)

const (
	PlatformYipay  = "yipay"
	PlatformEpusdt = "epusdt"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Admin        sharedConfig.AdminConfig        `mapstructure:"admin"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Discord      sharedConfig.DiscordConfig      `mapstructure:"discord"`
	Payment      sharedConfig.PaymentConfig      `mapstructure:"payment"`
	Plan         sharedConfig.PlanConfig         `mapstructure:"plan"`
	Subscription sharedConfig.SubscriptionConfig `mapstructure:"subscription"`
	Dispatch     sharedConfig.DispatchConfig     `mapstructure:"dispatch"`
	Metrics      sharedConfig.MetricsConfig      `mapstructure:"metrics"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configFile when given) and overlays
// ROLEGATE_* environment variables.
func Load(env, configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ROLEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func (c *Config) normalize() {
	c.Payment.Platform = strings.ToLower(strings.TrimSpace(c.Payment.Platform))
	c.Payment.Yipay.URL = withTrailingSlash(c.Payment.Yipay.URL)
	c.Payment.Epusdt.URL = withTrailingSlash(c.Payment.Epusdt.URL)
	c.Plan.DefaultCurrency = strings.ToUpper(c.Plan.DefaultCurrency)
	if len(c.Payment.Methods) == 0 {
		c.Payment.Methods = defaultMethods(c.Payment.Platform)
	}
	for i := range c.Payment.Methods {
		c.Payment.Methods[i].Currency = strings.ToUpper(c.Payment.Methods[i].Currency)
	}
	if !strings.HasPrefix(c.Server.NotifyPath, "/") {
		c.Server.NotifyPath = "/" + c.Server.NotifyPath
	}
}

// Validate checks values that would otherwise fail late at request time.
// An unknown payment platform is not an error: the server starts and the
// webhook answers 400.
func (c *Config) Validate() error {
	if c.Payment.ExchangeRate <= 0 {
		return fmt.Errorf("payment.exchange_rate must be positive, got %v", c.Payment.ExchangeRate)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("dispatch.workers must be positive, got %d", c.Dispatch.Workers)
	}
	for _, m := range c.Payment.Methods {
		if m.Name == "" || m.Code == "" {
			return fmt.Errorf("payment method entries need both name and code")
		}
		if m.Currency != "USDT" && m.Currency != "CNY" {
			return fmt.Errorf("payment method %q has unsupported currency %q", m.Name, m.Currency)
		}
	}
	return nil
}

// IsKnownPlatform reports whether payment.platform names a supported gateway.
func (c *Config) IsKnownPlatform() bool {
	return c.Payment.Platform == PlatformYipay || c.Payment.Platform == PlatformEpusdt
}

func defaultMethods(platform string) []sharedConfig.PaymentMethodConfig {
	if platform == PlatformYipay {
		return []sharedConfig.PaymentMethodConfig{
			{Name: "alipay", Code: "alipay", Currency: "CNY"},
			{Name: "wxpay", Code: "wxpay", Currency: "CNY"},
		}
	}
	return []sharedConfig.PaymentMethodConfig{
		{Name: "TRC20", Code: "usdt.trc20", Currency: "USDT"},
		{Name: "BEP20", Code: "usdt.bep20", Currency: "USDT"},
	}
}

func withTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.notify_path", "/notify")
	v.SetDefault("server.timezone", "UTC")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "rolegate.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.database", "rolegate")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Email defaults
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_name", "Rolegate")

	// Discord defaults
	v.SetDefault("discord.api_base_url", "https://discord.com/api/v10")
	v.SetDefault("discord.timeout", "10s")
	v.SetDefault("discord.max_retries", 3)

	// Payment defaults
	v.SetDefault("payment.platform", PlatformEpusdt)
	v.SetDefault("payment.timeout", "15s")
	v.SetDefault("payment.exchange_rate", 7.0)
	v.SetDefault("payment.exchange_rate_source", "static")
	v.SetDefault("payment.yipay.sitename", "Rolegate")

	// Plan defaults
	v.SetDefault("plan.default_currency", "USDT")

	v.SetDefault("subscription.sweep_interval", "24h")

	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.queue_size", 256)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
