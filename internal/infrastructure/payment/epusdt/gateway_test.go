package epusdt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const testToken = "api-token"

func newTestGateway(baseURL string) *Gateway {
	return NewGateway(Config{
		BaseURL:   baseURL,
		Token:     testToken,
		NotifyURL: "https://example.com/notify",
		ReturnURL: "https://example.com/return",
		Timeout:   2 * time.Second,
	}, logger.NewNopLogger())
}

func TestCreateOrder_SignsNormalizedAmount(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/order/create-transaction", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"status_code":200,"message":"success","data":{"trade_id":"T1","order_id":"O1","payment_url":"https://pay.example/T1"}}`))
	}))
	defer srv.Close()

	link, err := newTestGateway(srv.URL).CreateOrder(context.Background(), paymentgateway.CreateOrderRequest{
		OrderID:    "O1",
		Amount:     decimal.RequireFromString("10.00"),
		MethodCode: "usdt.trc20",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/T1", link)
	assert.Equal(t, float64(10), body["amount"])

	want := Sign(map[string]string{
		"order_id":     "O1",
		"amount":       "10",
		"notify_url":   "https://example.com/notify",
		"redirect_url": "https://example.com/return",
	}, testToken)
	assert.Equal(t, want, body["signature"])
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"business rejection", http.StatusOK, `{"status_code":400,"message":"bad signature"}`},
		{"missing url", http.StatusOK, `{"status_code":200,"data":{"trade_id":"T1"}}`},
		{"missing data", http.StatusOK, `{"status_code":200}`},
		{"http error", http.StatusInternalServerError, `boom`},
		{"not json", http.StatusOK, `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestGateway(srv.URL).CreateOrder(context.Background(), paymentgateway.CreateOrderRequest{
				OrderID: "O1", Amount: decimal.NewFromInt(1),
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsGatewayError(err))
		})
	}
}

func TestCreateOrder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewGateway(Config{BaseURL: srv.URL, Token: testToken, Timeout: 50 * time.Millisecond}, logger.NewNopLogger())
	_, err := g.CreateOrder(context.Background(), paymentgateway.CreateOrderRequest{OrderID: "O1", Amount: decimal.NewFromInt(1)})
	assert.True(t, apperrors.IsGatewayError(err))
}

func callbackRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestCallback_RoundTrip(t *testing.T) {
	g := newTestGateway("http://unused/")

	fields := map[string]string{
		"trade_id":             "T1",
		"order_id":             "O1",
		"amount":               "10",
		"actual_amount":        "1.43",
		"token":                "TXaddr",
		"block_transaction_id": "0xabc",
		"status":               "2",
	}
	sig := Sign(fields, testToken)

	// amount arrives as 10.0 and status as a bare number
	body := `{"trade_id":"T1","order_id":"O1","amount":10.0,"actual_amount":1.43,"token":"TXaddr",` +
		`"block_transaction_id":"0xabc","status":2,"signature":"` + sig + `"}`

	params, err := g.ParseCallback(callbackRequest(t, body))
	require.NoError(t, err)
	assert.Equal(t, "10", params["amount"])

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	assert.Equal(t, "O1", result.OrderID)
	assert.Equal(t, "T1", result.TradeNo)
	assert.True(t, result.Succeeded)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(10)))
}

func TestCallback_NotPaidStatus(t *testing.T) {
	g := newTestGateway("http://unused/")
	params := map[string]string{"order_id": "O1", "status": "1"}
	params["signature"] = Sign(params, testToken)

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
}

func TestCallback_Tampered(t *testing.T) {
	g := newTestGateway("http://unused/")
	params := map[string]string{"order_id": "O1", "amount": "10", "status": "2"}
	params["signature"] = Sign(params, testToken)
	params["amount"] = "1"

	_, err := g.VerifyCallback(params)
	assert.True(t, apperrors.IsSignatureError(err))

	_, err = g.VerifyCallback(map[string]string{"order_id": "O1"})
	assert.True(t, apperrors.IsSignatureError(err))
}

func TestParseCallback_Malformed(t *testing.T) {
	g := newTestGateway("http://unused/")

	_, err := g.ParseCallback(callbackRequest(t, `not json`))
	assert.Error(t, err)

	_, err = g.ParseCallback(callbackRequest(t, `{}`))
	assert.Error(t, err)

	_, err = g.ParseCallback(callbackRequest(t, `{"nested":{"a":1}}`))
	assert.Error(t, err)
}

func TestAckToken(t *testing.T) {
	assert.Equal(t, "ok", newTestGateway("").AckToken())
}
