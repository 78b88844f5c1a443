package payment

import (
	"fmt"

	"github.com/beswib/beswib/internal/config"
)

// NewProvider builds the Provider selected by configuration.  Unknown
// names are a startup error, not a fallback: silently charging
// through the wrong processor is worse than failing to boot.
func NewProvider(cfg config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case "stub":
		return NewStub(), nil
	case "paypal":
		if cfg.PayPalClientID == "" || cfg.PayPalSecret == "" {
			return nil, fmt.Errorf("paypal provider selected but PAYPAL_CLIENT_ID/PAYPAL_SECRET missing")
		}
		return NewPayPal(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret), nil
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe provider selected but STRIPE_SECRET_KEY missing")
		}
		return NewStripe(cfg.StripeBaseURL, cfg.StripeSecretKey), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}
