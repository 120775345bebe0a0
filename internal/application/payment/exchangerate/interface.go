// Package exchangerate defines the USDT/CNY rate source used for pricing.
package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateProvider reports how many CNY one USDT is worth.
type RateProvider interface {
	USDTToCNY(ctx context.Context) (decimal.Decimal, error)
}
