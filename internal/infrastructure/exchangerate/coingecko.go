package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rolegate/rolegate/internal/application/payment/exchangerate"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	coingeckoAPIURL = "https://api.coingecko.com/api/v3/simple/price?ids=tether&vs_currencies=cny"
	cacheDuration   = 5 * time.Minute
	requestTimeout  = 10 * time.Second
	maxResponseSize = 64 << 10
)

// USDT trades close to the CNY/USD rate; anything outside is a bad feed.
var (
	minReasonableRate = decimal.NewFromInt(5)
	maxReasonableRate = decimal.NewFromInt(10)
)

type coingeckoResponse struct {
	Tether struct {
		CNY json.Number `json:"cny"`
	} `json:"tether"`
}

// CoinGeckoProvider fetches the live USDT/CNY price and falls back to a
// static provider when the feed is unavailable.
type CoinGeckoProvider struct {
	url        string
	httpClient *http.Client
	fallback   exchangerate.RateProvider
	clock      biztime.Clock
	logger     logger.Interface
	group      singleflight.Group

	mu         sync.RWMutex
	cachedRate decimal.Decimal
	cachedAt   time.Time
}

var _ exchangerate.RateProvider = (*CoinGeckoProvider)(nil)

func NewCoinGeckoProvider(fallback exchangerate.RateProvider, log logger.Interface) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		url:        coingeckoAPIURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		fallback:   fallback,
		clock:      biztime.SystemClock(),
		logger:     log.Named("exchangerate"),
	}
}

func (p *CoinGeckoProvider) USDTToCNY(ctx context.Context) (decimal.Decimal, error) {
	now := p.clock.Now()

	p.mu.RLock()
	if p.cachedRate.IsPositive() && now.Sub(p.cachedAt) < cacheDuration {
		rate := p.cachedRate
		p.mu.RUnlock()
		return rate, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.group.Do("usdt-cny", func() (any, error) {
		return p.fetchRate(ctx)
	})
	if err != nil {
		p.logger.Warnw("failed to fetch exchange rate, using fallback", "error", err)
		return p.fallback.USDTToCNY(ctx)
	}

	rate := v.(decimal.Decimal)
	p.mu.Lock()
	p.cachedRate = rate
	p.cachedAt = now
	p.mu.Unlock()
	return rate, nil
}

func (p *CoinGeckoProvider) fetchRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data coingeckoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}

	rate, err := decimal.NewFromString(data.Tether.CNY.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate from API: %q", data.Tether.CNY.String())
	}
	if rate.LessThan(minReasonableRate) || rate.GreaterThan(maxReasonableRate) {
		return decimal.Zero, fmt.Errorf("rate %s outside reasonable range [%s, %s]", rate, minReasonableRate, maxReasonableRate)
	}

	p.logger.Infow("fetched USDT exchange rate", "rate", rate.String())
	return rate, nil
}
