package valueobjects

import (
	"fmt"
	"strings"
)

type Currency string

const (
	CurrencyUSDT Currency = "USDT"
	CurrencyCNY  Currency = "CNY"
)

// ParseCurrency accepts either supported currency in any letter case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

func (c Currency) IsValid() bool {
	return c == CurrencyUSDT || c == CurrencyCNY
}

func (c Currency) String() string {
	return string(c)
}
