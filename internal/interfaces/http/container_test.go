package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rolegate/rolegate/internal/infrastructure/config"
	"github.com/rolegate/rolegate/internal/infrastructure/database/dbtest"
	"github.com/rolegate/rolegate/internal/infrastructure/payment/epusdt"
	sharedConfig "github.com/rolegate/rolegate/internal/shared/config"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	testAdminToken = "admin-token"
	testEpusdtKey  = "epusdt-secret"
	testRoleID     = "222222222222222222"
	testUserID     = "111111111111111111"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	container *Container
	engine    *gin.Engine
	grants    *atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	var grants atomic.Int32
	discordSrv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method == nethttp.MethodPut {
			grants.Add(1)
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	t.Cleanup(discordSrv.Close)

	epusdtSrv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"message":     "success",
			"data": map[string]any{
				"trade_id":    "T1",
				"order_id":    req["order_id"],
				"payment_url": "https://pay.example/" + req["order_id"].(string),
			},
		})
	}))
	t.Cleanup(epusdtSrv.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{NotifyPath: "/notify"},
		Admin:  sharedConfig.AdminConfig{TokenHash: string(hash)},
		Discord: sharedConfig.DiscordConfig{
			Token:      "bot-token",
			GuildID:    "333",
			APIBaseURL: discordSrv.URL,
			Timeout:    2 * time.Second,
			MaxRetries: 1,
		},
		Payment: sharedConfig.PaymentConfig{
			Platform:  "epusdt",
			NotifyURL: "https://rolegate.example/notify",
			Timeout:   2 * time.Second,
			Epusdt:    sharedConfig.EpusdtConfig{URL: epusdtSrv.URL + "/", Token: testEpusdtKey},
			Methods: []sharedConfig.PaymentMethodConfig{
				{Name: "TRC20", Code: "usdt.trc20", Currency: "USDT"},
			},
			ExchangeRate:       7,
			ExchangeRateSource: "static",
		},
		Plan:         sharedConfig.PlanConfig{DefaultCurrency: "USDT"},
		Subscription: sharedConfig.SubscriptionConfig{SweepInterval: time.Hour},
		Dispatch:     sharedConfig.DispatchConfig{Workers: 2, QueueSize: 16},
		Metrics:      sharedConfig.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	c, err := NewContainer(dbtest.New(t), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, c.StartBackground())
	c.SetupRoutes()
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	return &testEnv{container: c, engine: c.GetEngine(), grants: &grants}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func signedCallback(orderID string) map[string]any {
	params := map[string]string{
		"trade_id":             "T1",
		"order_id":             orderID,
		"amount":               "10",
		"actual_amount":        "10",
		"token":                "TXwallet",
		"block_transaction_id": "0xabc",
		"status":               "2",
	}
	body := map[string]any{
		"trade_id":             "T1",
		"order_id":             orderID,
		"amount":               10,
		"actual_amount":        10,
		"token":                "TXwallet",
		"block_transaction_id": "0xabc",
		"status":               2,
		"signature":            epusdt.Sign(params, testEpusdtKey),
	}
	return body
}

func TestContainer_OrderLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodPut, "/api/plans/Month", map[string]any{
		"price": "10", "role_id": testRoleID, "duration_months": 1,
	}, true)
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, nethttp.MethodPost, "/api/orders", map[string]any{
		"user_id": testUserID, "plan": "Month", "method": "trc20",
	}, true)
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			OrderID  string `json:"order_id"`
			PayURL   string `json:"pay_url"`
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.OrderID
	require.NotEmpty(t, orderID)
	assert.LessOrEqual(t, len(orderID), 32)
	assert.Equal(t, "10.00", created.Data.Amount)
	assert.Equal(t, "USDT", created.Data.Currency)
	assert.Equal(t, "https://pay.example/"+orderID, created.Data.PayURL)

	w = env.do(t, nethttp.MethodPost, "/notify", signedCallback(orderID), false)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	require.Eventually(t, func() bool {
		w := env.do(t, nethttp.MethodGet, "/api/orders/"+orderID, nil, true)
		return strings.Contains(w.Body.String(), `"status":"paid"`)
	}, 5*time.Second, 20*time.Millisecond)

	// duplicate delivery
	w = env.do(t, nethttp.MethodPost, "/notify", signedCallback(orderID), false)
	require.Equal(t, nethttp.StatusOK, w.Code)

	require.NoError(t, env.container.Shutdown(context.Background()))
	assert.Equal(t, int32(1), env.grants.Load())

	w = env.do(t, nethttp.MethodGet, "/metrics", nil, false)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rolegate_orders_created_total{currency="USDT",platform="epusdt"} 1`)
	assert.Contains(t, w.Body.String(), `rolegate_orders_fulfillments_total{outcome="fulfilled"} 1`)
}

func TestContainer_RejectsTamperedNotification(t *testing.T) {
	env := newTestEnv(t)

	body := signedCallback("O1700000000_1_abcdef")
	body["amount"] = 0.01

	w := env.do(t, nethttp.MethodPost, "/notify", body, false)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)
	assert.Equal(t, "fail", w.Body.String())
}

func TestContainer_AdminAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, nethttp.MethodGet, "/api/plans", nil, false)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = env.do(t, nethttp.MethodGet, "/api/plans", nil, true)
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w = env.do(t, nethttp.MethodGet, "/health", nil, false)
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestContainer_UnknownPlatform(t *testing.T) {
	cfg := &config.Config{
		Server:       sharedConfig.ServerConfig{NotifyPath: "/notify"},
		Payment:      sharedConfig.PaymentConfig{Platform: "paypal", ExchangeRate: 7},
		Plan:         sharedConfig.PlanConfig{DefaultCurrency: "USDT"},
		Dispatch:     sharedConfig.DispatchConfig{Workers: 1, QueueSize: 1},
		Subscription: sharedConfig.SubscriptionConfig{SweepInterval: time.Hour},
	}

	c, err := NewContainer(dbtest.New(t), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, c.Gateway())
	c.SetupRoutes()

	w := httptest.NewRecorder()
	c.GetEngine().ServeHTTP(w, httptest.NewRequest(nethttp.MethodPost, "/notify", strings.NewReader("{}")))
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported platform", w.Body.String())
}

func TestContainer_MissingGatewayCredentials(t *testing.T) {
	cfg := &config.Config{
		Payment:  sharedConfig.PaymentConfig{Platform: "yipay", ExchangeRate: 7},
		Dispatch: sharedConfig.DispatchConfig{Workers: 1, QueueSize: 1},
	}

	_, err := NewContainer(dbtest.New(t), cfg, logger.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment.yipay requires url, pid and key")
}
