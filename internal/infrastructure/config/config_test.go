package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/notify", cfg.Server.NotifyPath)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, PlatformEpusdt, cfg.Payment.Platform)
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Subscription.SweepInterval)
	assert.Equal(t, 7.0, cfg.Payment.ExchangeRate)
	assert.Equal(t, "USDT", cfg.Plan.DefaultCurrency)
	require.Len(t, cfg.Payment.Methods, 2)
	assert.Equal(t, "TRC20", cfg.Payment.Methods[0].Name)
	assert.True(t, cfg.IsKnownPlatform())
	assert.Same(t, cfg, Get())
}

func TestLoad_Normalizes(t *testing.T) {
	cfg, err := Load("release", writeConfig(t, `
server:
  notify_path: callback
payment:
  platform: " YiPay "
  yipay:
    url: https://pay.example.com
plan:
  default_currency: cny
`))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "/callback", cfg.Server.NotifyPath)
	assert.Equal(t, PlatformYipay, cfg.Payment.Platform)
	assert.Equal(t, "https://pay.example.com/", cfg.Payment.Yipay.URL)
	assert.Equal(t, "CNY", cfg.Plan.DefaultCurrency)
	require.Len(t, cfg.Payment.Methods, 2)
	assert.Equal(t, "alipay", cfg.Payment.Methods[0].Name)
	assert.Equal(t, "CNY", cfg.Payment.Methods[0].Currency)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROLEGATE_PAYMENT_EPUSDT_TOKEN", "from-env")
	t.Setenv("ROLEGATE_SERVER_PORT", "9100")

	cfg, err := Load("", writeConfig(t, "payment:\n  epusdt:\n    token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Payment.Epusdt.Token)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_UnknownPlatformIsNotFatal(t *testing.T) {
	cfg, err := Load("", writeConfig(t, "payment:\n  platform: paypal\n"))
	require.NoError(t, err)
	assert.False(t, cfg.IsKnownPlatform())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"exchange rate", "payment:\n  exchange_rate: 0\n", "exchange_rate must be positive"},
		{"driver", "database:\n  driver: postgres\n", "unsupported database driver"},
		{"workers", "dispatch:\n  workers: 0\n", "dispatch.workers must be positive"},
		{"method currency", "payment:\n  methods:\n    - name: x\n      code: y\n      currency: EUR\n", "unsupported currency"},
		{"method code", "payment:\n  methods:\n    - name: x\n      currency: USDT\n", "need both name and code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load("", writeConfig(t, "server: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
