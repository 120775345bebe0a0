// Package yipay adapts the CNY-denominated "epay" style gateway.
package yipay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	apperrors "github.com/rolegate/rolegate/internal/shared/errors"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	ackToken        = "success"
	tradeSuccess    = "TRADE_SUCCESS"
	maxResponseSize = 1 << 20
	defaultTimeout  = 15 * time.Second
)

// MaxAmount is the platform ceiling per order, in CNY.
var MaxAmount = decimal.NewFromInt(1000)

type Config struct {
	BaseURL   string
	PID       string
	Key       string
	Sitename  string
	NotifyURL string
	ReturnURL string
	Timeout   time.Duration
}

type Gateway struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Interface
}

var (
	_ paymentgateway.Gateway      = (*Gateway)(nil)
	_ paymentgateway.OrderQuerier = (*Gateway)(nil)
)

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
		logger:     log.Named("yipay"),
	}
}

func (g *Gateway) Platform() paymentgateway.Platform {
	return paymentgateway.PlatformYipay
}

func (g *Gateway) AckToken() string {
	return ackToken
}

// createResponse covers the fields the various epay forks return.
type createResponse struct {
	Code      json.Number `json:"code"`
	Msg       string      `json:"msg"`
	TradeNo   string      `json:"trade_no"`
	PayURL    string      `json:"payurl"`
	QRCode    string      `json:"qrcode"`
	URLScheme string      `json:"urlscheme"`
}

func (g *Gateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (string, error) {
	if req.Amount.GreaterThan(MaxAmount) {
		return "", g.gatewayErr("create", 0, fmt.Sprintf("amount %s exceeds platform limit %s", req.Amount.StringFixed(2), MaxAmount.String()), nil)
	}

	params := map[string]string{
		"pid":          g.cfg.PID,
		"type":         req.MethodCode,
		"out_trade_no": req.OrderID,
		"notify_url":   g.cfg.NotifyURL,
		"return_url":   g.cfg.ReturnURL,
		"name":         req.Description,
		"money":        req.Amount.StringFixed(2),
		"sitename":     g.cfg.Sitename,
	}
	params["sign"] = Sign(params, g.cfg.Key)
	params["sign_type"] = "MD5"

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"mapi.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", g.gatewayErr("create", 0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp createResponse
	if err := g.do(httpReq, "create", &resp); err != nil {
		return "", err
	}

	if resp.Code.String() != "1" {
		return "", g.gatewayErr("create", 0, fmt.Sprintf("rejected: code=%s msg=%s", resp.Code.String(), resp.Msg), nil)
	}
	for _, link := range []string{resp.PayURL, resp.QRCode, resp.URLScheme} {
		if link != "" {
			g.logger.Infow("payment order created",
				"order_id", req.OrderID,
				"trade_no", resp.TradeNo,
				"amount", req.Amount.StringFixed(2),
			)
			return link, nil
		}
	}
	return "", g.gatewayErr("create", 0, "response carries no payment link", nil)
}

// ParseCallback accepts both query-string (GET) and form (POST) delivery.
func (g *Gateway) ParseCallback(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse callback form: %w", err)
	}
	params := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("empty callback")
	}
	return params, nil
}

func (g *Gateway) VerifyCallback(params map[string]string) (*paymentgateway.CallbackResult, error) {
	given := params["sign"]
	if given == "" {
		return nil, &apperrors.SignatureError{Platform: string(g.Platform()), Reason: "missing sign"}
	}
	expected := Sign(params, g.cfg.Key)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(given)), []byte(expected)) != 1 {
		return nil, &apperrors.SignatureError{Platform: string(g.Platform()), Reason: "mismatch"}
	}

	result := &paymentgateway.CallbackResult{
		OrderID:   params["out_trade_no"],
		Succeeded: params["trade_status"] == tradeSuccess,
		TradeNo:   params["trade_no"],
		Params:    params,
	}
	if money, err := decimal.NewFromString(params["money"]); err == nil {
		result.Amount = money
	}
	return result, nil
}

type queryResponse struct {
	Code   json.Number `json:"code"`
	Msg    string      `json:"msg"`
	Status json.Number `json:"status"`
}

// QueryOrder asks api.php whether the order has been paid.
func (g *Gateway) QueryOrder(ctx context.Context, orderID string) (bool, error) {
	q := url.Values{}
	q.Set("act", "order")
	q.Set("pid", g.cfg.PID)
	q.Set("key", g.cfg.Key)
	q.Set("out_trade_no", orderID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"api.php?"+q.Encode(), nil)
	if err != nil {
		return false, g.gatewayErr("query", 0, "", err)
	}

	var resp queryResponse
	if err := g.do(httpReq, "query", &resp); err != nil {
		return false, err
	}
	return resp.Code.String() == "1" && resp.Status.String() == "1", nil
}

func (g *Gateway) do(req *http.Request, op string, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.gatewayErr(op, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return g.gatewayErr(op, resp.StatusCode, "read body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.gatewayErr(op, resp.StatusCode, truncate(string(body)), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return g.gatewayErr(op, resp.StatusCode, "unexpected response", err)
	}
	return nil
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
