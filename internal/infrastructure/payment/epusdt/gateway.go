// Package epusdt adapts the USDT gateway that speaks JSON over
// api/v1/order/create-transaction.
package epusdt

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	ackToken        = "ok"
	statusPaid      = "2"
	maxResponseSize = 1 << 20
	defaultTimeout  = 15 * time.Second
)

type Config struct {
	BaseURL   string
	Token     string
	NotifyURL string
	ReturnURL string
	Timeout   time.Duration
}

type Gateway struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Interface
}

var _ paymentgateway.Gateway = (*Gateway)(nil)

func NewGateway(cfg Config, log logger.Interface) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseURL != "" && !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.Named("epusdt"),
	}
}

func (g *Gateway) Platform() paymentgateway.Platform {
	return paymentgateway.PlatformEpusdt
}

func (g *Gateway) AckToken() string {
	return ackToken
}

type createRequest struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	NotifyURL   string  `json:"notify_url"`
	RedirectURL string  `json:"redirect_url"`
	Signature   string  `json:"signature"`
}

type createResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       *struct {
		TradeID        string `json:"trade_id"`
		OrderID        string `json:"order_id"`
		ActualAmount   any    `json:"actual_amount"`
		Token          string `json:"token"`
		ExpirationTime int64  `json:"expiration_time"`
		PaymentURL     string `json:"payment_url"`
	} `json:"data"`
}

// CreateOrder ignores MethodCode: the platform picks the chain from the
// wallet configured on its side.
func (g *Gateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (string, error) {
	amount := req.Amount.Round(2).InexactFloat64()

	signed := map[string]string{
		"order_id":     req.OrderID,
		"amount":       FormatNumber(amount),
		"notify_url":   g.cfg.NotifyURL,
		"redirect_url": g.cfg.ReturnURL,
	}
	body, err := json.Marshal(createRequest{
		OrderID:     req.OrderID,
		Amount:      amount,
		NotifyURL:   g.cfg.NotifyURL,
		RedirectURL: g.cfg.ReturnURL,
		Signature:   Sign(signed, g.cfg.Token),
	})
	if err != nil {
		return "", g.gatewayErr("create", 0, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"api/v1/order/create-transaction", bytes.NewReader(body))
	if err != nil {
		return "", g.gatewayErr("create", 0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", g.gatewayErr("create", 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", g.gatewayErr("create", resp.StatusCode, "read body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", g.gatewayErr("create", resp.StatusCode, truncate(string(raw)), nil)
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", g.gatewayErr("create", resp.StatusCode, "unexpected response", err)
	}
	if out.StatusCode != http.StatusOK || out.Data == nil || out.Data.PaymentURL == "" {
		return "", g.gatewayErr("create", resp.StatusCode,
			fmt.Sprintf("rejected: status_code=%d message=%s", out.StatusCode, out.Message), nil)
	}

	g.logger.Infow("payment order created",
		"order_id", req.OrderID,
		"trade_id", out.Data.TradeID,
		"amount", FormatNumber(amount),
	)
	return out.Data.PaymentURL, nil
}

// ParseCallback decodes the JSON notification, keeping numbers in the exact
// form the platform signed them.
func (g *Gateway) ParseCallback(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxResponseSize))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode callback body: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty callback")
	}

	params := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := stringify(v)
		if err != nil {
			return nil, fmt.Errorf("callback field %s: %w", k, err)
		}
		params[k] = s
	}
	return params, nil
}

func (g *Gateway) VerifyCallback(params map[string]string) (*paymentgateway.CallbackResult, error) {
	given := params[signatureKey]
	if given == "" {
		return nil, &apperrors.SignatureError{Platform: string(g.Platform()), Reason: "missing signature"}
	}
	expected := Sign(params, g.cfg.Token)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(given)), []byte(expected)) != 1 {
		return nil, &apperrors.SignatureError{Platform: string(g.Platform()), Reason: "mismatch"}
	}

	result := &paymentgateway.CallbackResult{
		OrderID:   params["order_id"],
		Succeeded: params["status"] == statusPaid,
		TradeNo:   params["trade_id"],
		Params:    params,
	}
	if amount, err := decimal.NewFromString(params["amount"]); err == nil {
		result.Amount = amount
	}
	return result, nil
}

func (g *Gateway) gatewayErr(op string, status int, msg string, err error) error {
	return &apperrors.GatewayError{
		Platform:   string(g.Platform()),
		Op:         op,
		StatusCode: status,
		Message:    msg,
		Err:        err,
	}
}

func truncate(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
