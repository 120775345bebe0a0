// Package payment selects the payment gateway adapter for the configured
// platform.
package payment

import (
	"fmt"

	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/infrastructure/payment/epusdt"
	"github.com/rolegate/rolegate/internal/infrastructure/payment/yipay"
	sharedConfig "github.com/rolegate/rolegate/internal/shared/config"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

// ErrUnknownPlatform is returned for a platform outside the supported set.
type ErrUnknownPlatform struct {
	Platform string
}

func (e *ErrUnknownPlatform) Error() string {
	return fmt.Sprintf("unsupported payment platform %q", e.Platform)
}

// NewGateway builds the adapter named by cfg.Platform.
func NewGateway(cfg sharedConfig.PaymentConfig, log logger.Interface) (paymentgateway.Gateway, error) {
	switch paymentgateway.Platform(cfg.Platform) {
	case paymentgateway.PlatformYipay:
		if cfg.Yipay.URL == "" || cfg.Yipay.PID == "" || cfg.Yipay.Key == "" {
			return nil, fmt.Errorf("payment.yipay requires url, pid and key")
		}
		return yipay.NewGateway(yipay.Config{
			BaseURL:   cfg.Yipay.URL,
			PID:       cfg.Yipay.PID,
			Key:       cfg.Yipay.Key,
			Sitename:  cfg.Yipay.Sitename,
			NotifyURL: cfg.NotifyURL,
			ReturnURL: cfg.ReturnURL,
			Timeout:   cfg.Timeout,
		}, log), nil
	case paymentgateway.PlatformEpusdt:
		if cfg.Epusdt.URL == "" || cfg.Epusdt.Token == "" {
			return nil, fmt.Errorf("payment.epusdt requires url and token")
		}
		return epusdt.NewGateway(epusdt.Config{
			BaseURL:   cfg.Epusdt.URL,
			Token:     cfg.Epusdt.Token,
			NotifyURL: cfg.NotifyURL,
			ReturnURL: cfg.ReturnURL,
			Timeout:   cfg.Timeout,
		}, log), nil
	default:
		return nil, &ErrUnknownPlatform{Platform: cfg.Platform}
	}
}
