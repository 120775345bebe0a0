package exchangerate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/payment/exchangerate"
)

// StaticProvider returns the configured rate.
type StaticProvider struct {
	rate decimal.Decimal
}

var _ exchangerate.RateProvider = (*StaticProvider)(nil)

func NewStaticProvider(rate float64) (*StaticProvider, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("exchange rate must be positive, got %v", rate)
	}
	return &StaticProvider{rate: decimal.NewFromFloat(rate)}, nil
}

func (p *StaticProvider) USDTToCNY(_ context.Context) (decimal.Decimal, error) {
	return p.rate, nil
}
