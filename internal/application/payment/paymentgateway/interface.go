// Package paymentgateway defines the contract every payment platform adapter
// implements. Exactly one adapter is active per process.
package paymentgateway

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

type Platform string

const (
	PlatformYipay  Platform = "yipay"
	PlatformEpusdt Platform = "epusdt"
)

// Gateway creates payable orders on a platform and authenticates its
// asynchronous payment notifications.
type Gateway interface {
	Platform() Platform
	// CreateOrder returns the link the payer opens. Failures are
	// *errors.GatewayError.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error)
	// ParseCallback extracts the raw notification parameters, normalized to
	// the exact strings the platform signed.
	ParseCallback(r *http.Request) (map[string]string, error)
	// VerifyCallback checks the signature and reports the order and outcome.
	// A bad signature is *errors.SignatureError.
	VerifyCallback(params map[string]string) (*CallbackResult, error)
	// AckToken is the plain-text body the platform expects on acceptance.
	AckToken() string
}

// OrderQuerier is implemented by gateways that can report an order's status
// on demand.
type OrderQuerier interface {
	QueryOrder(ctx context.Context, orderID string) (paid bool, err error)
}

type CreateOrderRequest struct {
	OrderID     string
	Description string
	Amount      decimal.Decimal
	MethodCode  string
}

type CallbackResult struct {
	OrderID   string
	Succeeded bool
	TradeNo   string
	// Amount is what the platform reports as paid; zero when absent. It is
	// recorded for audit and never used to decide fulfillment.
	Amount decimal.Decimal
	Params map[string]string
}
