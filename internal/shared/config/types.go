package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Mode       string `mapstructure:"mode"`
	NotifyPath string `mapstructure:"notify_path"`
	Timezone   string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AdminConfig protects the admin HTTP API. TokenHash is a bcrypt hash of the
// bearer token; an empty hash disables the admin API entirely.
type AdminConfig struct {
	TokenHash string `mapstructure:"token_hash"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	AdminAddress string `mapstructure:"admin_address"`
}

// IsConfigured reports whether failure notifications can be mailed.
func (e *EmailConfig) IsConfigured() bool {
	return e.SMTPHost != "" && e.AdminAddress != ""
}

type DiscordConfig struct {
	Token      string        `mapstructure:"token"`
	GuildID    string        `mapstructure:"guild_id"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type YipayConfig struct {
	URL      string `mapstructure:"url"`
	PID      string `mapstructure:"pid"`
	Key      string `mapstructure:"key"`
	Sitename string `mapstructure:"sitename"`
}

type EpusdtConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// PaymentMethodConfig maps a user-facing payment method name to the gateway
// type code and the currency the gateway charges in.
type PaymentMethodConfig struct {
	Name     string `mapstructure:"name"`
	Code     string `mapstructure:"code"`
	Currency string `mapstructure:"currency"`
}

type PaymentConfig struct {
	Platform           string                `mapstructure:"platform"`
	NotifyURL          string                `mapstructure:"notify_url"`
	ReturnURL          string                `mapstructure:"return_url"`
	Timeout            time.Duration         `mapstructure:"timeout"`
	Yipay              YipayConfig           `mapstructure:"yipay"`
	Epusdt             EpusdtConfig          `mapstructure:"epusdt"`
	Methods            []PaymentMethodConfig `mapstructure:"methods"`
	ExchangeRate       float64               `mapstructure:"exchange_rate"`
	ExchangeRateSource string                `mapstructure:"exchange_rate_source"`
}

type PlanConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	SeedFile        string `mapstructure:"seed_file"`
}

type SubscriptionConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DispatchConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
