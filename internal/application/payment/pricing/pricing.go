// Package pricing resolves payment methods and converts plan prices into the
// currency a method charges in.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/payment/exchangerate"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
)

// Method is a payment option offered to the payer.
type Method struct {
	Name     string
	Code     string
	Currency vo.Currency
}

// MethodTable looks methods up by name or gateway code, case-insensitively.
type MethodTable struct {
	methods []Method
}

func NewMethodTable(methods []Method) (*MethodTable, error) {
	seen := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if m.Name == "" || m.Code == "" {
			return nil, fmt.Errorf("payment method needs name and code")
		}
		if !m.Currency.IsValid() {
			return nil, fmt.Errorf("payment method %q: invalid currency %q", m.Name, m.Currency)
		}
		key := strings.ToLower(m.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate payment method %q", m.Name)
		}
		seen[key] = struct{}{}
	}
	return &MethodTable{methods: methods}, nil
}

func (t *MethodTable) Lookup(nameOrCode string) (Method, bool) {
	for _, m := range t.methods {
		if strings.EqualFold(m.Name, nameOrCode) || strings.EqualFold(m.Code, nameOrCode) {
			return m, true
		}
	}
	return Method{}, false
}

func (t *MethodTable) All() []Method {
	out := make([]Method, len(t.methods))
	copy(out, t.methods)
	return out
}

// Converter prices a plan in the currency of the chosen method.
type Converter struct {
	rates exchangerate.RateProvider
}

func NewConverter(rates exchangerate.RateProvider) *Converter {
	return &Converter{rates: rates}
}

// Convert returns price expressed in target, rounded to 2 places. The rate is
// only consulted when the currencies differ.
func (c *Converter) Convert(ctx context.Context, price decimal.Decimal, from, target vo.Currency) (decimal.Decimal, error) {
	if from == target {
		return price.Round(2), nil
	}

	rate, err := c.rates.USDTToCNY(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid exchange rate %s", rate)
	}

	switch {
	case from == vo.CurrencyUSDT && target == vo.CurrencyCNY:
		return price.Mul(rate).Round(2), nil
	case from == vo.CurrencyCNY && target == vo.CurrencyUSDT:
		return price.Div(rate).Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported conversion %s -> %s", from, target)
	}
}
